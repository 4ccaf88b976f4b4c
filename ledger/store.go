package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/hidenkeys/frontdesk/config"
	"github.com/hidenkeys/frontdesk/occupancy"
	"github.com/hidenkeys/frontdesk/reservation"
	"github.com/sirupsen/logrus"
)

// Store owns the reservation set. The slice and the records in it are never
// modified after they are published; writers build replacements inside Update.
type Store struct {
	mu      sync.RWMutex
	writeMu sync.Mutex

	reservations []*reservation.Reservation
	nextID       int64
	dirty        map[int64]*reservation.Reservation
	removed      map[int64]string

	clock func() time.Time
	log   *logrus.Logger
}

type Option func(*Store)

func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

func WithLogger(log *logrus.Logger) Option {
	return func(s *Store) { s.log = log }
}

func New(opts ...Option) *Store {
	s := &Store{
		nextID:  1,
		dirty:   map[int64]*reservation.Reservation{},
		removed: map[int64]string{},
		clock:   time.Now,
		log:     config.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Now() time.Time {
	return s.clock()
}

// All returns the current snapshot. Callers must not modify the records.
func (s *Store) All() []*reservation.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reservations
}

func (s *Store) Get(id int64) (*reservation.Reservation, bool) {
	for _, r := range s.All() {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

func (s *Store) GetByRef(ref string) (*reservation.Reservation, bool) {
	for _, r := range s.All() {
		if r.BookingRef == ref {
			return r, true
		}
	}
	return nil, false
}

// Index builds an occupancy index over the current snapshot.
func (s *Store) Index() *occupancy.Index {
	return occupancy.Build(s.All())
}

// Update runs fn against a staged view and publishes the result when fn
// succeeds and every touched record still satisfies the structural and
// occupancy invariants. Any error leaves the store untouched.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	base, nextID := s.reservations, s.nextID
	s.mu.RUnlock()

	tx := newTx(base, nextID, s.clock())
	if err := fn(tx); err != nil {
		return err
	}
	if tx.empty() {
		return nil
	}

	for id, r := range tx.staged {
		if _, gone := tx.removed[id]; gone {
			continue
		}
		final := r.Clone()
		final.Normalize()
		final.SyncRoomMirror()
		if final.CreatedAt.IsZero() {
			final.CreatedAt = tx.now
		}
		final.UpdatedAt = tx.now
		if err := reservation.Validate(final); err != nil {
			return err
		}
		tx.staged[id] = final
	}

	view := tx.Reservations()
	if err := checkOccupancy(tx, view); err != nil {
		return err
	}

	s.mu.Lock()
	s.reservations = view
	s.nextID = tx.nextID
	for id, r := range tx.staged {
		if _, gone := tx.removed[id]; gone {
			continue
		}
		s.dirty[id] = r
		delete(s.removed, id)
	}
	for id, ref := range tx.removed {
		delete(s.dirty, id)
		if _, existed := tx.pos[id]; existed {
			s.removed[id] = ref
		}
	}
	s.mu.Unlock()
	return nil
}

// checkOccupancy rejects a commit in which a stay whose room or dates changed
// now overlaps another active stay in the same room.
func checkOccupancy(tx *Tx, view []*reservation.Reservation) error {
	var ix *occupancy.Index
	for id, r := range tx.staged {
		if _, gone := tx.removed[id]; gone {
			continue
		}
		if i, ok := tx.pos[id]; ok && sameFootprint(tx.base[i], r) {
			continue
		}
		if r.Status.ReleasesCapacity() {
			continue
		}
		if ix == nil {
			ix = occupancy.Build(view)
		}
		for i, stay := range r.Rooms {
			if stay.Status.ReleasesCapacity() {
				continue
			}
			self := occupancy.StayRef{ReservationID: r.ID, RoomNumber: stay.RoomNumber, StayIndex: i}
			if hits := ix.Conflicts(stay.RoomNumber, stay.Checkin, stay.Checkout, self); len(hits) > 0 {
				return &reservation.ConflictError{
					Room:          stay.RoomNumber,
					ReservationID: hits[0].ReservationID,
					BookingRef:    hits[0].BookingRef,
					From:          hits[0].Stay.Checkin,
					To:            hits[0].Stay.Checkout,
				}
			}
		}
	}
	return nil
}

func sameFootprint(a, b *reservation.Reservation) bool {
	if a.Status.ReleasesCapacity() != b.Status.ReleasesCapacity() || len(a.Rooms) != len(b.Rooms) {
		return false
	}
	for i := range a.Rooms {
		x, y := a.Rooms[i], b.Rooms[i]
		if x.RoomNumber != y.RoomNumber ||
			!x.Checkin.Equal(y.Checkin) ||
			!x.Checkout.Equal(y.Checkout) ||
			x.Status.ReleasesCapacity() != y.Status.ReleasesCapacity() {
			return false
		}
	}
	return true
}

// LoadReport tells the caller how many records made it in and which were dropped.
type LoadReport struct {
	Loaded  int      `json:"loaded"`
	Skipped []string `json:"skipped"`
}

// Load replaces the reservation set. Structurally corrupt records are
// skipped with a warning; loading never fails as a whole.
func (s *Store) Load(records []*reservation.Reservation) LoadReport {
	report := LoadReport{Skipped: []string{}}
	seen := map[int64]bool{}
	kept := make([]*reservation.Reservation, 0, len(records))
	var maxID int64
	for i, r := range records {
		if reason := corrupt(r); reason != "" {
			s.skip(&report, i, r, reason)
			continue
		}
		if seen[r.ID] {
			s.skip(&report, i, r, "duplicate id")
			continue
		}
		clean := r.Clone()
		clean.Normalize()
		if err := reservation.Validate(clean); err != nil {
			s.skip(&report, i, r, err.Error())
			continue
		}
		seen[r.ID] = true
		kept = append(kept, clean)
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].ID < kept[j].ID })

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	s.reservations = kept
	s.nextID = maxID + 1
	s.dirty = map[int64]*reservation.Reservation{}
	s.removed = map[int64]string{}
	s.mu.Unlock()

	report.Loaded = len(kept)
	s.log.WithFields(logrus.Fields{
		"module":  "ledger",
		"loaded":  report.Loaded,
		"skipped": len(report.Skipped),
	}).Info("reservations loaded")
	return report
}

// LoadRaw decodes persisted payloads, dropping the ones that do not decode.
func (s *Store) LoadRaw(payloads []json.RawMessage) LoadReport {
	records := make([]*reservation.Reservation, 0, len(payloads))
	var undecodable []string
	for i, raw := range payloads {
		var r reservation.Reservation
		if err := json.Unmarshal(raw, &r); err != nil {
			s.log.WithFields(logrus.Fields{
				"module":   "ledger",
				"position": i,
			}).Warn("skipping undecodable reservation: " + err.Error())
			undecodable = append(undecodable, "#"+itoa(i)+": "+err.Error())
			continue
		}
		records = append(records, &r)
	}
	report := s.Load(records)
	report.Skipped = append(undecodable, report.Skipped...)
	return report
}

func corrupt(r *reservation.Reservation) string {
	switch {
	case r == nil:
		return "empty record"
	case r.ID <= 0:
		return "missing id"
	case r.BookingRef == "":
		return "missing bookingRef"
	case len(r.Rooms) == 0:
		return "no rooms"
	}
	return ""
}

func (s *Store) skip(report *LoadReport, pos int, r *reservation.Reservation, reason string) {
	label := "#" + itoa(pos)
	if r != nil && r.BookingRef != "" {
		label = r.BookingRef
	}
	report.Skipped = append(report.Skipped, label+": "+reason)
	s.log.WithFields(logrus.Fields{
		"module": "ledger",
		"record": label,
	}).Warn("skipping corrupt reservation: " + reason)
}

// Dirty lists records changed since the last successful flush, by id.
func (s *Store) Dirty() []*reservation.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*reservation.Reservation, 0, len(s.dirty))
	for _, r := range s.dirty {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Flush pushes dirty records and removals to sink. A record stays dirty when
// the sink fails or when it changed again while the flush was running.
func (s *Store) Flush(ctx context.Context, sink Sink) error {
	s.mu.RLock()
	dirty := make(map[int64]*reservation.Reservation, len(s.dirty))
	for id, r := range s.dirty {
		dirty[id] = r
	}
	removed := make(map[int64]string, len(s.removed))
	for id, ref := range s.removed {
		removed[id] = ref
	}
	s.mu.RUnlock()

	var errs []error
	for id, r := range dirty {
		if err := sink.UpsertReservation(ctx, r); err != nil {
			config.LogError(s.log, "ledger", "Flush", "upsert reservation", r.BookingRef, err)
			errs = append(errs, err)
			continue
		}
		s.mu.Lock()
		if s.dirty[id] == r {
			delete(s.dirty, id)
		}
		s.mu.Unlock()
	}
	for id, ref := range removed {
		if err := sink.DeleteReservation(ctx, ref); err != nil {
			config.LogError(s.log, "ledger", "Flush", "delete reservation", ref, err)
			errs = append(errs, err)
			continue
		}
		s.mu.Lock()
		if s.removed[id] == ref {
			delete(s.removed, id)
		}
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}
