package ledger

import (
	"time"

	"github.com/hidenkeys/frontdesk/occupancy"
	"github.com/hidenkeys/frontdesk/reservation"
)

// Tx is a staged view over the store. Values returned by Get and
// Reservations are shared with readers and must not be modified; clone them,
// change the clone, then Put it back.
type Tx struct {
	base     []*reservation.Reservation
	pos      map[int64]int
	staged   map[int64]*reservation.Reservation
	inserted []int64
	removed  map[int64]string
	nextID   int64
	now      time.Time
}

func newTx(base []*reservation.Reservation, nextID int64, now time.Time) *Tx {
	pos := make(map[int64]int, len(base))
	for i, r := range base {
		pos[r.ID] = i
	}
	return &Tx{
		base:    base,
		pos:     pos,
		staged:  map[int64]*reservation.Reservation{},
		removed: map[int64]string{},
		nextID:  nextID,
		now:     now,
	}
}

func (tx *Tx) Now() time.Time {
	return tx.now
}

func (tx *Tx) Get(id int64) (*reservation.Reservation, bool) {
	if _, gone := tx.removed[id]; gone {
		return nil, false
	}
	if r, ok := tx.staged[id]; ok {
		return r, true
	}
	if i, ok := tx.pos[id]; ok {
		return tx.base[i], true
	}
	return nil, false
}

// GetByRef looks a reservation up by its booking reference.
func (tx *Tx) GetByRef(ref string) (*reservation.Reservation, bool) {
	for _, r := range tx.Reservations() {
		if r.BookingRef == ref {
			return r, true
		}
	}
	return nil, false
}

// Reservations returns the view as it would look after commit, in storage order.
func (tx *Tx) Reservations() []*reservation.Reservation {
	out := make([]*reservation.Reservation, 0, len(tx.base)+len(tx.inserted))
	for _, r := range tx.base {
		if _, gone := tx.removed[r.ID]; gone {
			continue
		}
		if staged, ok := tx.staged[r.ID]; ok {
			out = append(out, staged)
			continue
		}
		out = append(out, r)
	}
	for _, id := range tx.inserted {
		if _, gone := tx.removed[id]; gone {
			continue
		}
		out = append(out, tx.staged[id])
	}
	return out
}

// Put stages r as the new value for r.ID, inserting it when the id is new.
func (tx *Tx) Put(r *reservation.Reservation) {
	_, existing := tx.pos[r.ID]
	_, alreadyStaged := tx.staged[r.ID]
	if !existing && !alreadyStaged {
		tx.inserted = append(tx.inserted, r.ID)
	}
	delete(tx.removed, r.ID)
	tx.staged[r.ID] = r
}

func (tx *Tx) Remove(id int64) bool {
	r, ok := tx.Get(id)
	if !ok {
		return false
	}
	tx.removed[id] = r.BookingRef
	return true
}

// NextID hands out the next reservation id. Ids are never reused.
func (tx *Tx) NextID() int64 {
	id := tx.nextID
	tx.nextID++
	return id
}

// Index builds an occupancy index over the current view.
func (tx *Tx) Index() *occupancy.Index {
	return occupancy.Build(tx.Reservations())
}

func (tx *Tx) empty() bool {
	return len(tx.staged) == 0 && len(tx.removed) == 0
}
