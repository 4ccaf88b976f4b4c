package lifecycle

import (
	"fmt"
	"time"

	"github.com/hidenkeys/frontdesk/reservation"
)

const (
	ActionStayStatus           = "room.status"
	ActionOptionExpired        = "option.expired"
	ActionRoomOptionExpired    = "option.room_expired"
	ActionAllRoomsExpired      = "option.all_rooms_expired"
	ActionReminderAdded        = "reminder.added"
	ActionReminderFired        = "reminder.fired"
	ActionReminderAcknowledged = "reminder.acknowledged"
)

// DeriveStatus computes the reservation status from its stays. A single stay
// or unanimous stays decide it; mixed stays keep current.
func DeriveStatus(current reservation.Status, stays []reservation.RoomStay) reservation.Status {
	if len(stays) == 0 {
		return current
	}
	first := stays[0].Status
	for _, s := range stays[1:] {
		if s.Status != first {
			return current
		}
	}
	return first
}

var transitions = map[reservation.Status][]reservation.Status{
	reservation.StatusOption:    {reservation.StatusConfirmed, reservation.StatusCheckedIn, reservation.StatusCancelled, reservation.StatusNoShow},
	reservation.StatusConfirmed: {reservation.StatusCheckedIn, reservation.StatusCancelled, reservation.StatusNoShow},
	reservation.StatusCheckedIn: {reservation.StatusCheckedOut},
	reservation.StatusBlocked:   {reservation.StatusCancelled},
}

func allowed(from, to reservation.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SetStayStatus moves one stay to status and re-derives the reservation
// status. It returns r itself when nothing changes.
func SetStayStatus(r *reservation.Reservation, index int, status reservation.Status, now time.Time) (*reservation.Reservation, error) {
	if index < 0 || index >= len(r.Rooms) {
		return nil, reservation.ErrStayIndex
	}
	if !status.Valid() {
		return nil, reservation.NewValidationError(fmt.Sprintf("unknown status %q", status))
	}
	current := r.Rooms[index]
	if current.Status == status {
		return r, nil
	}
	if !allowed(current.Status, status) {
		return nil, reservation.NewValidationError(fmt.Sprintf("room %s cannot go from %s to %s",
			current.RoomNumber, current.Status, status))
	}

	next := r.Clone()
	stay := &next.Rooms[index]
	stay.Status = status
	if status != reservation.StatusOption {
		stay.OptionExpiry = nil
	}
	if status == reservation.StatusCheckedOut {
		stay.Housekeeping = reservation.HousekeepingDirty
	}
	next.Status = DeriveStatus(r.Status, next.Rooms)
	if next.Status != reservation.StatusOption {
		next.OptionExpiry = nil
	}
	next.Log(now, ActionStayStatus, fmt.Sprintf("room %s: %s -> %s", stay.RoomNumber, current.Status, status))
	return next, nil
}
