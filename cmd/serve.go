package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/hidenkeys/frontdesk/assignment"
	"github.com/hidenkeys/frontdesk/customer"
	"github.com/hidenkeys/frontdesk/frontdesk"
	"github.com/hidenkeys/frontdesk/middleware"
	"github.com/hidenkeys/frontdesk/room"
	"github.com/hidenkeys/frontdesk/scheduler"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var noSweep bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the front-desk API and run the expiry sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d, err := bootstrap(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.close()

			keyFunc, stopKeys, err := middleware.Keys(cfg.JWTSecret, cfg.JWKSURL)
			if err != nil {
				return err
			}
			defer stopKeys()

			feed := scheduler.NewFeed(0)
			runner := d.runner(feed)
			desk := &frontdesk.Handler{
				Service:  d.service,
				Profiles: d.profiles,
				Runner:   runner,
				Feed:     feed,
				Drops:    assignment.NewDropGuard(cfg.DropDebounce),
				Currency: cfg.Currency,
				Log:      d.log,
			}

			app := fiber.New(fiber.Config{AppName: "FRONTDESK"})
			app.Use(cors.New(cors.Config{
				AllowOrigins:     cfg.CORSOrigins,
				AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
				AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + frontdesk.DropHeader,
				AllowCredentials: true,
			}))
			healthRoutes(app)

			api := app.Group("/api/v1", middleware.RequireAuth(keyFunc))
			reservationRoutes(api.Group("/reservations"), desk)
			adminRoutes(api.Group("/admin"), desk)
			roomRoutes(api.Group("/rooms"), &room.Handler{Inventory: d.inventory, Ledger: d.store})
			profileRoutes(api.Group("/profiles"), &customer.Handler{Store: d.profiles, Bookings: d.store})
			api.Get("/notifications", desk.GetNotifications)

			if !noSweep {
				go func() {
					if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						d.log.WithField("module", "cmd").Warn("sweeper stopped: " + err.Error())
					}
				}()
			}
			go flushLoop(ctx, d)

			errc := make(chan error, 1)
			go func() { errc <- app.Listen(cfg.HTTPAddr) }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				d.log.WithField("module", "cmd").Warn("shutdown: " + err.Error())
			}
			return d.store.Flush(shutdownCtx, d.sink)
		},
	}

	cmd.Flags().BoolVar(&noSweep, "no-sweep", false, "Do not run the periodic expiry and reminder sweep")
	return cmd
}

// flushLoop persists API changes between sweeps.
func flushLoop(ctx context.Context, d *deps) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.store.Flush(ctx, d.sink); err != nil {
				d.log.WithField("module", "cmd").Warn("flush failed, will retry: " + err.Error())
			}
		}
	}
}
