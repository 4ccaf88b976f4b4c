package cmd

import (
	"context"
	"fmt"

	"github.com/hidenkeys/frontdesk/assignment"
	"github.com/hidenkeys/frontdesk/config"
	"github.com/hidenkeys/frontdesk/customer"
	"github.com/hidenkeys/frontdesk/ledger"
	"github.com/hidenkeys/frontdesk/room"
	"github.com/hidenkeys/frontdesk/scheduler"
	"github.com/hidenkeys/frontdesk/storage"
	"github.com/sirupsen/logrus"
)

// deps is everything a command needs, wired from cfg.
type deps struct {
	log       *logrus.Logger
	inventory *room.Catalog
	store     *ledger.Store
	service   *assignment.Service
	profiles  *customer.Store
	snapshots *storage.Snapshots
	sink      ledger.Fanout
	locker    scheduler.Locker
	closers   []func() error
}

func bootstrap(ctx context.Context, cfg config.Config) (*deps, error) {
	d := &deps{log: config.GetLogger()}

	inventory, err := room.LoadInventory(cfg.InventoryPath)
	if err != nil {
		return nil, fmt.Errorf("room inventory: %w", err)
	}
	d.inventory = inventory

	db, err := storage.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	d.snapshots = storage.NewSnapshots(db)
	d.sink = ledger.Fanout{d.snapshots}
	if sqlDB, err := db.DB(); err == nil {
		d.closers = append(d.closers, sqlDB.Close)
	}

	if cfg.PubSubTopic != "" {
		ps, err := storage.NewPubSubSink(ctx, cfg.PubSubProject, cfg.PubSubTopic, cfg.PubSubCredentials)
		if err != nil {
			d.close()
			return nil, err
		}
		d.sink = append(d.sink, ps)
		d.closers = append(d.closers, ps.Close)
	}
	if cfg.GCSBucket != "" {
		gs, err := storage.NewGCSSink(ctx, cfg.GCSBucket, cfg.GCSCredentials)
		if err != nil {
			d.close()
			return nil, err
		}
		d.sink = append(d.sink, gs)
		d.closers = append(d.closers, gs.Close)
	}
	if cfg.RedisAddr != "" {
		locker, err := storage.NewRedisLocker(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			d.close()
			return nil, err
		}
		d.locker = locker
		d.closers = append(d.closers, locker.Close)
	}

	d.store = ledger.New(ledger.WithLogger(d.log))
	raw, err := d.snapshots.LoadReservations(ctx)
	if err != nil {
		d.close()
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	report := d.store.LoadRaw(raw)
	d.log.WithFields(logrus.Fields{
		"module":  "cmd",
		"loaded":  report.Loaded,
		"skipped": report.Skipped,
	}).Info("reservations loaded")

	d.profiles = customer.NewStore(cfg.PhoneRegion, d.snapshots)
	profiles, err := d.snapshots.LoadProfiles(ctx)
	if err != nil {
		d.close()
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	d.profiles.Load(profiles)

	d.service = assignment.NewService(d.store, d.inventory)
	return d, nil
}

func (d *deps) runner(feed *scheduler.Feed) *scheduler.Runner {
	return &scheduler.Runner{
		Store:    d.store,
		Sink:     d.sink,
		Feed:     feed,
		Locker:   d.locker,
		Interval: cfg.SweepInterval,
		Log:      d.log,
	}
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.log.WithField("module", "cmd").Warn("close: " + err.Error())
		}
	}
}
