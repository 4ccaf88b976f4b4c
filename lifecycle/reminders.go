package lifecycle

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hidenkeys/frontdesk/reservation"
)

var ErrReminderNotFound = errors.New("reminder not found")

// Notification is what the front desk surfaces when a reminder falls due.
type Notification struct {
	ReservationID int64     `json:"reservationId"`
	BookingRef    string    `json:"bookingRef"`
	ReminderID    string    `json:"reminderId"`
	Message       string    `json:"message"`
	DueDate       time.Time `json:"dueDate"`
}

// FireReminders surfaces every due reminder that was neither acknowledged
// nor shown yet. Each one is shown exactly once.
func FireReminders(r *reservation.Reservation, now time.Time) (*reservation.Reservation, []Notification, bool) {
	var next *reservation.Reservation
	var out []Notification
	for i, rem := range r.Reminders {
		if rem.Fired || rem.ToastShown || rem.DueDate.After(now) {
			continue
		}
		if next == nil {
			next = r.Clone()
		}
		next.Reminders[i].ToastShown = true
		next.Log(now, ActionReminderFired, rem.Message)
		out = append(out, Notification{
			ReservationID: r.ID,
			BookingRef:    r.BookingRef,
			ReminderID:    rem.ID,
			Message:       rem.Message,
			DueDate:       rem.DueDate,
		})
	}
	if next == nil {
		return r, nil, false
	}
	return next, out, true
}

// FireAll runs FireReminders over the set.
func FireAll(reservations []*reservation.Reservation, now time.Time) ([]*reservation.Reservation, []Notification) {
	var changed []*reservation.Reservation
	var notes []Notification
	for _, r := range reservations {
		if next, fired, ok := FireReminders(r, now); ok {
			changed = append(changed, next)
			notes = append(notes, fired...)
		}
	}
	return changed, notes
}

// AddReminder schedules a reminder on the reservation.
func AddReminder(r *reservation.Reservation, due time.Time, message string, now time.Time) (*reservation.Reservation, reservation.Reminder, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, reservation.Reminder{}, reservation.NewValidationError("reminder message is required")
	}
	if due.IsZero() {
		return nil, reservation.Reminder{}, reservation.NewValidationError("reminder dueDate is required")
	}
	rem := reservation.Reminder{ID: uuid.NewString(), DueDate: due, Message: message}
	next := r.Clone()
	next.Reminders = append(next.Reminders, rem)
	next.Log(now, ActionReminderAdded, message)
	return next, rem, nil
}

// AcknowledgeReminder is the user-driven fired transition.
func AcknowledgeReminder(r *reservation.Reservation, reminderID string, now time.Time) (*reservation.Reservation, error) {
	for i, rem := range r.Reminders {
		if rem.ID != reminderID {
			continue
		}
		if rem.Fired {
			return r, nil
		}
		next := r.Clone()
		next.Reminders[i].Fired = true
		next.Reminders[i].ToastShown = true
		next.Log(now, ActionReminderAcknowledged, rem.Message)
		return next, nil
	}
	return nil, ErrReminderNotFound
}
