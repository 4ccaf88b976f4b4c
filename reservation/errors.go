package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound  = errors.New("reservation not found")
	ErrStayIndex = errors.New("room stay index out of range")
)

// ValidationError reports structural invariant failures (rooms, dates, identity).
type ValidationError struct {
	BookingRef string
	Problems   []string
}

func (e *ValidationError) Error() string {
	if e.BookingRef != "" {
		return fmt.Sprintf("invalid reservation %s: %s", e.BookingRef, strings.Join(e.Problems, "; "))
	}
	return "invalid reservation: " + strings.Join(e.Problems, "; ")
}

func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

// ConflictError means an assignment would double-book Room. It is always
// returned before anything is written.
type ConflictError struct {
	Room          string
	ReservationID int64
	BookingRef    string
	From          time.Time
	To            time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("room %s is occupied by %s between %s and %s",
		e.Room, e.BookingRef, e.From.Format(time.DateOnly), e.To.Format(time.DateOnly))
}

func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

func IsValidation(err error) bool {
	var invalid *ValidationError
	return errors.As(err, &invalid)
}
