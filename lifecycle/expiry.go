package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/hidenkeys/frontdesk/reservation"
)

func expired(expiry *time.Time, now time.Time) bool {
	return expiry != nil && !now.Before(*expiry)
}

// ExpireOptions retires lapsed option holds on one reservation. The
// reservation rule runs first, then the room rule for every stay, then the
// escalation check on the post-expiry stay statuses. It returns r itself and
// false when nothing applies, so a second run with the same now is a no-op.
func ExpireOptions(r *reservation.Reservation, now time.Time) (*reservation.Reservation, bool) {
	next := r.Clone()
	changed := false

	if next.Status == reservation.StatusOption && expired(next.OptionExpiry, now) {
		deadline := next.OptionExpiry.Format(time.DateTime)
		next.Status = reservation.StatusCancelled
		next.OptionExpiry = nil
		for i := range next.Rooms {
			next.Rooms[i].Status = reservation.StatusCancelled
			next.Rooms[i].OptionExpiry = nil
		}
		next.Log(now, ActionOptionExpired, "option expired at "+deadline+", reservation cancelled")
		changed = true
	}

	var rooms []string
	for i := range next.Rooms {
		stay := &next.Rooms[i]
		if stay.Status == reservation.StatusOption && expired(stay.OptionExpiry, now) {
			stay.Status = reservation.StatusCancelled
			stay.OptionExpiry = nil
			rooms = append(rooms, stay.RoomNumber)
		}
	}
	if len(rooms) > 0 {
		changed = true
	}

	escalate := next.Status != reservation.StatusCancelled && allCancelled(next.Rooms)
	if len(rooms) > 0 && !escalate {
		next.Log(now, ActionRoomOptionExpired, fmt.Sprintf("option expired on room %s", strings.Join(rooms, ", ")))
	}
	if escalate {
		next.Status = reservation.StatusCancelled
		next.OptionExpiry = nil
		next.Log(now, ActionAllRoomsExpired, "all rooms cancelled, reservation cancelled")
		changed = true
	}

	if !changed {
		return r, false
	}
	return next, true
}

// ExpireAll runs ExpireOptions over the set and returns only the changed
// reservations, as new values.
func ExpireAll(reservations []*reservation.Reservation, now time.Time) []*reservation.Reservation {
	var changed []*reservation.Reservation
	for _, r := range reservations {
		if next, ok := ExpireOptions(r, now); ok {
			changed = append(changed, next)
		}
	}
	return changed
}

func allCancelled(stays []reservation.RoomStay) bool {
	if len(stays) == 0 {
		return false
	}
	for _, s := range stays {
		if s.Status != reservation.StatusCancelled {
			return false
		}
	}
	return true
}
