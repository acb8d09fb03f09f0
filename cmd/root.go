package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/cafe-reservations/internal/config"
	"github.com/example/cafe-reservations/internal/logging"
	"github.com/example/cafe-reservations/internal/store"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cafesched",
		Short:         "Cafe table reservations API: availability, random table assignment and newsletter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newKeysCmd())
	root.AddCommand(newServerCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newUserCmd())
	root.AddCommand(newReservationCmd())
	root.AddCommand(newNewsletterCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every command that talks to the database needs.
type env struct {
	cfg   config.Config
	log   *zap.Logger
	store *store.Handle
}

func (e *env) Close() {
	e.store.Close()
	_ = e.log.Sync()
}

// openEnv loads config, builds the logger and opens the store. checks run
// against the loaded config before anything touches the database. When
// migrate is set, pending migrations are applied before returning.
func openEnv(ctx context.Context, migrate bool, checks ...func(config.Config) error) (*env, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return nil, err
		}
	}
	log, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	h, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := h.Migrate(ctx); err != nil {
			h.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return &env{cfg: cfg, log: log, store: h}, nil
}
