package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/cafe-reservations/internal/application/usecases"
	"github.com/example/cafe-reservations/internal/auth"
	"github.com/example/cafe-reservations/internal/availability"
	"github.com/example/cafe-reservations/internal/config"
	"github.com/example/cafe-reservations/internal/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the reservations API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			e, err := openEnv(ctx, migrateUp, config.Config.RequireSessionKeys)
			if err != nil {
				return err
			}
			defer e.Close()

			if e.cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}

			engine, err := availability.New(e.cfg.Availability(), e.store.Reservations(), nil)
			if err != nil {
				return err
			}

			ws := &web.Server{
				Engine:          engine,
				Booking:         usecases.Booking{Engine: engine, Store: e.store, Log: e.log},
				Newsletter:      usecases.Newsletter{Subscribers: e.store.Subscribers(), Log: e.log},
				Auth:            auth.NewStore(e.store.Admins(), e.cfg.CookieHashKey, e.cfg.CookieBlockKey),
				DB:              e.store,
				Log:             e.log,
				CORSOrigins:     e.cfg.CORSOrigins,
				RateLimitPerMin: e.cfg.RateLimitPerMin,
				RequestTimeout:  e.cfg.DBTimeout,
			}
			e.log.Info("booking grid",
				zap.Int("tables", engine.TotalTables()), zap.Strings("slots", engine.Slots()))
			return web.Start(ctx, e.cfg.ListenAddr, ws.Routes(), e.log)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")

	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
