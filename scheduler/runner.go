package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/hidenkeys/frontdesk/config"
	"github.com/hidenkeys/frontdesk/ledger"
	"github.com/hidenkeys/frontdesk/lifecycle"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("frontdesk-scheduler")

// ErrLockHeld is returned by a Locker when another instance holds the sweep.
var ErrLockHeld = errors.New("sweep lock held elsewhere")

const (
	lockKey = "lock:frontdesk:sweep"
	lockTTL = 30 * time.Second
)

// Locker serialises sweeps across instances sharing one persistence layer.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, err error)
}

// Runner periodically expires option holds and fires due reminders.
type Runner struct {
	Store    *ledger.Store
	Sink     ledger.Sink
	Feed     *Feed
	Locker   Locker
	Interval time.Duration
	Log      *logrus.Logger
}

// Result summarises one pass.
type Result struct {
	At            time.Time                `json:"at"`
	Expired       []string                 `json:"expired"`
	Notifications []lifecycle.Notification `json:"notifications"`
	Skipped       bool                     `json:"skipped,omitempty"`
}

func (r *Runner) logger() *logrus.Logger {
	if r.Log != nil {
		return r.Log
	}
	return config.GetLogger()
}

// RunOnce runs expiry then reminders against one transaction, so a pass sees
// and writes a single consistent set. Changes are flushed to Sink when set.
func (r *Runner) RunOnce(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "scheduler.RunOnce")
	defer span.End()

	log := r.logger()
	if r.Locker != nil {
		unlock, err := r.Locker.Lock(ctx, lockKey, lockTTL)
		if errors.Is(err, ErrLockHeld) {
			log.WithField("module", "scheduler").Debug("sweep skipped, lock held elsewhere")
			return Result{At: r.Store.Now(), Expired: []string{}, Notifications: []lifecycle.Notification{}, Skipped: true}, nil
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "lock")
			config.LogError(log, "scheduler", "RunOnce", "obtain sweep lock", lockKey, err)
			return Result{}, err
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				config.LogError(log, "scheduler", "RunOnce", "release sweep lock", lockKey, err)
			}
		}()
	}

	res := Result{Expired: []string{}, Notifications: []lifecycle.Notification{}}
	err := r.Store.Update(func(tx *ledger.Tx) error {
		res.At = tx.Now()
		for _, changed := range lifecycle.ExpireAll(tx.Reservations(), res.At) {
			tx.Put(changed)
			res.Expired = append(res.Expired, changed.BookingRef)
		}
		fired, notes := lifecycle.FireAll(tx.Reservations(), res.At)
		for _, changed := range fired {
			tx.Put(changed)
		}
		res.Notifications = append(res.Notifications, notes...)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update")
		config.LogError(log, "scheduler", "RunOnce", "apply sweep", nil, err)
		return Result{}, err
	}

	span.SetAttributes(
		attribute.Int("frontdesk.expired", len(res.Expired)),
		attribute.Int("frontdesk.reminders", len(res.Notifications)),
	)
	if r.Feed != nil {
		r.Feed.Push(res.Notifications...)
	}
	if len(res.Expired) > 0 || len(res.Notifications) > 0 {
		log.WithFields(logrus.Fields{
			"module":    "scheduler",
			"expired":   res.Expired,
			"reminders": len(res.Notifications),
		}).Info("sweep applied")
	}

	if r.Sink != nil {
		if err := r.Store.Flush(ctx, r.Sink); err != nil {
			span.RecordError(err)
			return res, err
		}
	}
	return res, nil
}

// Run sweeps once immediately and then every Interval until ctx ends.
func (r *Runner) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger().WithField("module", "scheduler").Warn("sweep failed: " + err.Error())
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
