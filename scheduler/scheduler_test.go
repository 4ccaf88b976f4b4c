package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/hidenkeys/frontdesk/ledger"
	"github.com/hidenkeys/frontdesk/lifecycle"
	"github.com/hidenkeys/frontdesk/reservation"
	"github.com/sirupsen/logrus"
)

func at(s string) time.Time {
	t, err := time.Parse(time.DateTime, s)
	if err != nil {
		panic(err)
	}
	return t
}

func quiet() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func fixture(now time.Time) *ledger.Store {
	expiry := at("2024-01-05 12:00:00")
	store := ledger.New(ledger.WithLogger(quiet()), ledger.WithClock(func() time.Time { return now }))
	store.Load([]*reservation.Reservation{
		{
			ID:           1,
			BookingRef:   reservation.FormatBookingRef(1),
			Status:       reservation.StatusOption,
			OptionExpiry: &expiry,
			Rooms: []reservation.RoomStay{{
				RoomNumber: "101",
				Status:     reservation.StatusOption,
				Checkin:    at("2024-01-10 00:00:00"),
				Checkout:   at("2024-01-12 00:00:00"),
			}},
		},
		{
			ID:         2,
			BookingRef: reservation.FormatBookingRef(2),
			Status:     reservation.StatusConfirmed,
			Rooms: []reservation.RoomStay{{
				RoomNumber: "102",
				Status:     reservation.StatusConfirmed,
				Checkin:    at("2024-01-10 00:00:00"),
				Checkout:   at("2024-01-12 00:00:00"),
			}},
			Reminders: []reservation.Reminder{
				{ID: "call", DueDate: at("2024-01-05 09:00:00"), Message: "call guest about arrival"},
				{ID: "later", DueDate: at("2024-01-09 09:00:00"), Message: "prepare cot"},
			},
		},
	})
	return store
}

type countingSink struct {
	upserts []string
}

func (s *countingSink) UpsertReservation(_ context.Context, r *reservation.Reservation) error {
	s.upserts = append(s.upserts, r.BookingRef)
	return nil
}

func (s *countingSink) DeleteReservation(context.Context, string) error {
	return nil
}

func TestRunOnce_ExpiresAndFires(t *testing.T) {
	store := fixture(at("2024-01-05 12:00:00"))
	sink := &countingSink{}
	feed := NewFeed(10)
	runner := &Runner{Store: store, Sink: sink, Feed: feed, Log: quiet()}

	res, err := runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Expired) != 1 || res.Expired[0] != "BK-000001" {
		t.Fatalf("expected BK-000001 to expire, got %v", res.Expired)
	}
	if len(res.Notifications) != 1 || res.Notifications[0].ReminderID != "call" {
		t.Fatalf("expected only the due reminder, got %+v", res.Notifications)
	}
	if got := feed.Recent(); len(got) != 1 || got[0].BookingRef != "BK-000002" {
		t.Fatalf("feed must carry the notification, got %+v", got)
	}
	if len(sink.upserts) != 2 {
		t.Fatalf("both changed reservations must be flushed, got %v", sink.upserts)
	}

	opt, _ := store.Get(1)
	if opt.Status != reservation.StatusCancelled || opt.Rooms[0].Status != reservation.StatusCancelled {
		t.Fatalf("option must be cancelled, got %s", opt.Status)
	}
	if !store.Index().IsRoomFree("101", at("2024-01-10 00:00:00"), at("2024-01-12 00:00:00")) {
		t.Fatalf("expired option must release its room")
	}

	again, err := runner.RunOnce(context.Background())
	if err != nil || len(again.Expired) != 0 || len(again.Notifications) != 0 {
		t.Fatalf("second pass must be a no-op, got %+v %v", again, err)
	}
	if len(feed.Recent()) != 1 {
		t.Fatalf("a reminder must surface only once")
	}
}

type heldLock struct{}

func (heldLock) Lock(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return nil, ErrLockHeld
}

type brokenLock struct{}

func (brokenLock) Lock(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return nil, errors.New("connection refused")
}

type okLock struct{ released int }

func (l *okLock) Lock(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return func(context.Context) error { l.released++; return nil }, nil
}

func TestRunOnce_Locking(t *testing.T) {
	store := fixture(at("2024-01-06 00:00:00"))

	res, err := (&Runner{Store: store, Locker: heldLock{}, Log: quiet()}).RunOnce(context.Background())
	if err != nil || !res.Skipped {
		t.Fatalf("held lock must skip the pass, got %+v %v", res, err)
	}
	if r, _ := store.Get(1); r.Status != reservation.StatusOption {
		t.Fatalf("a skipped pass must not touch the ledger")
	}

	if _, err := (&Runner{Store: store, Locker: brokenLock{}, Log: quiet()}).RunOnce(context.Background()); err == nil {
		t.Fatalf("lock failure must be reported")
	}

	lock := &okLock{}
	res, err = (&Runner{Store: store, Locker: lock, Log: quiet()}).RunOnce(context.Background())
	if err != nil || len(res.Expired) != 1 || lock.released != 1 {
		t.Fatalf("expected one expiry and a released lock, got %+v %v released=%d", res, err, lock.released)
	}
}

func TestFeed(t *testing.T) {
	feed := NewFeed(2)
	feed.Push(lifecycle.Notification{ReminderID: "a"}, lifecycle.Notification{ReminderID: "b"})
	feed.Push(lifecycle.Notification{ReminderID: "c"})

	got := feed.Recent()
	if len(got) != 2 || got[0].ReminderID != "b" || got[1].ReminderID != "c" {
		t.Fatalf("feed must keep the newest entries, got %+v", got)
	}
	feed.Dismiss("b")
	if got := feed.Recent(); len(got) != 1 || got[0].ReminderID != "c" {
		t.Fatalf("dismiss must drop the reminder, got %+v", got)
	}
}
