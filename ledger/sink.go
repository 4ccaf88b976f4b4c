package ledger

import (
	"context"
	"strconv"

	"github.com/hidenkeys/frontdesk/reservation"
)

// Sink receives whole-record upserts and deletions. Implementations must be
// idempotent; Flush may deliver the same record more than once.
type Sink interface {
	UpsertReservation(ctx context.Context, r *reservation.Reservation) error
	DeleteReservation(ctx context.Context, bookingRef string) error
}

// Fanout delivers to every sink and returns the first error.
type Fanout []Sink

func (f Fanout) UpsertReservation(ctx context.Context, r *reservation.Reservation) error {
	var first error
	for _, sink := range f {
		if err := sink.UpsertReservation(ctx, r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f Fanout) DeleteReservation(ctx context.Context, bookingRef string) error {
	var first error
	for _, sink := range f {
		if err := sink.DeleteReservation(ctx, bookingRef); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
