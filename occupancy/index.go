package occupancy

import (
	"sort"
	"time"

	"github.com/hidenkeys/frontdesk/reservation"
)

// Preference decides which stay represents a room on a same-day turnover.
type Preference int

const (
	PreferArrival Preference = iota
	PreferDeparture
)

// Entry is one active stay as seen by the index.
type Entry struct {
	ReservationID int64
	BookingRef    string
	StayIndex     int
	Stay          reservation.RoomStay
}

// StayRef identifies a stay to leave out of a check. It matches on the
// reservation id and the room number together, a reservation id alone is
// ambiguous for multi-room bookings.
type StayRef struct {
	ReservationID int64
	RoomNumber    string
	StayIndex     int
}

func (e Entry) Ref() StayRef {
	return StayRef{ReservationID: e.ReservationID, RoomNumber: e.Stay.RoomNumber, StayIndex: e.StayIndex}
}

func (e Entry) matches(ref StayRef) bool {
	return e.ReservationID == ref.ReservationID &&
		e.Stay.RoomNumber == ref.RoomNumber &&
		e.StayIndex == ref.StayIndex
}

type Index struct {
	byRoom map[string][]Entry
}

// Build indexes every stay that holds capacity: neither the stay nor its
// reservation is cancelled or a no-show. Blocked stays occupy their room.
func Build(reservations []*reservation.Reservation) *Index {
	ix := &Index{byRoom: map[string][]Entry{}}
	for _, r := range reservations {
		if r == nil || r.Status.ReleasesCapacity() {
			continue
		}
		for i, stay := range r.Rooms {
			if stay.Status.ReleasesCapacity() {
				continue
			}
			ix.byRoom[stay.RoomNumber] = append(ix.byRoom[stay.RoomNumber], Entry{
				ReservationID: r.ID,
				BookingRef:    r.BookingRef,
				StayIndex:     i,
				Stay:          stay,
			})
		}
	}
	for room := range ix.byRoom {
		entries := ix.byRoom[room]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Stay.Checkin.Before(entries[j].Stay.Checkin)
		})
	}
	return ix
}

// IsRoomFree reports whether no active stay in room overlaps [from, to).
func (ix *Index) IsRoomFree(room string, from, to time.Time, exclude ...StayRef) bool {
	return len(ix.Conflicts(room, from, to, exclude...)) == 0
}

// Conflicts lists the active stays in room that overlap [from, to).
func (ix *Index) Conflicts(room string, from, to time.Time, exclude ...StayRef) []Entry {
	var out []Entry
	for _, e := range ix.byRoom[room] {
		if excluded(e, exclude) {
			continue
		}
		if e.Stay.Overlaps(from, to) {
			out = append(out, e)
		}
	}
	return out
}

// OccupantOf returns the stay representing room on day. Stays with
// checkin <= day < checkout are in-house or arriving; a stay whose checkout
// is day is departing. PreferArrival never returns a departing stay;
// PreferDeparture returns one when present and falls back to the in-house stay.
func (ix *Index) OccupantOf(room string, day time.Time, pref Preference) (Entry, bool) {
	var staying, departing *Entry
	d := reservation.DateOnly(day)
	entries := ix.byRoom[room]
	for i := range entries {
		e := &entries[i]
		switch {
		case e.Stay.Contains(d):
			if staying == nil {
				staying = e
			}
		case reservation.DateOnly(e.Stay.Checkout).Equal(d):
			if departing == nil {
				departing = e
			}
		}
	}
	if pref == PreferDeparture && departing != nil {
		return *departing, true
	}
	if staying != nil {
		return *staying, true
	}
	return Entry{}, false
}

// Occupants returns every stay touching room on day, departing ones included.
func (ix *Index) Occupants(room string, day time.Time) []Entry {
	d := reservation.DateOnly(day)
	var out []Entry
	for _, e := range ix.byRoom[room] {
		if e.Stay.Contains(d) || reservation.DateOnly(e.Stay.Checkout).Equal(d) {
			out = append(out, e)
		}
	}
	return out
}

// Rooms lists the rooms that currently hold at least one active stay.
func (ix *Index) Rooms() []string {
	rooms := make([]string, 0, len(ix.byRoom))
	for room := range ix.byRoom {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return rooms
}

func excluded(e Entry, exclude []StayRef) bool {
	for _, ref := range exclude {
		if e.matches(ref) {
			return true
		}
	}
	return false
}
