package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamwil123/pool-tracker/internal/app"
	"github.com/jamwil123/pool-tracker/internal/config"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
)

// env is what every subcommand needs once configuration has loaded.
type env struct {
	cfg     config.Config
	logger  *logging.Logger
	storage *app.Storage
}

type envLoader func(ctx context.Context) (*env, error)

func loadEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.NewJSON(cfg.LogLevel).With("service", "pool-tracker-seeder", "env", cfg.AppEnv)

	storage, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, storage: storage}, nil
}

func newRootCmd(load envLoader) *cobra.Command {
	var current *env

	root := &cobra.Command{
		Use:   "pool-tracker-seeder",
		Short: "Maintenance tasks for the pool league tracker",
		Long: `Imports fixture lists, seeds profiles from the roster and repairs derived
match and profile fields against the configured store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := load(cmd.Context())
			if err != nil {
				return err
			}
			current = loaded
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if current == nil {
				return nil
			}
			_ = current.logger.Sync()
			return current.storage.Close()
		},
	}

	get := func() *env { return current }
	root.AddCommand(
		newImportFixturesCmd(get),
		newSeedProfilesCmd(get),
		newBackfillPlayerIDsCmd(get),
		newRecomputeTotalsCmd(get),
	)
	return root
}

func main() {
	if err := newRootCmd(loadEnv).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "seeder failed: %v\n", err)
		os.Exit(1)
	}
}
