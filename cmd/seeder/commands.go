package main

import (
	"fmt"
	"os"

	sonic "github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/jamwil123/pool-tracker/internal/usecase"
)

func maintenanceService(e *env) *usecase.MaintenanceService {
	return usecase.NewMaintenanceService(
		e.storage.Matches,
		e.storage.Profiles,
		e.storage.Roster,
		e.storage.Legacy,
		e.cfg.ImportWorkers,
		e.logger,
	)
}

func newImportFixturesCmd(get func() *env) *cobra.Command {
	var opts usecase.ImportOptions

	cmd := &cobra.Command{
		Use:   "import-fixtures <file>",
		Short: "Create or update matches from a JSON array of fixtures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read fixtures file: %w", err)
			}
			var games []usecase.ImportGame
			if err := sonic.Unmarshal(raw, &games); err != nil {
				return fmt.Errorf("decode fixtures file %s: input must be a JSON array: %w", args[0], err)
			}

			svc := usecase.NewImportService(e.storage.Matches, e.cfg.Location, e.cfg.ImportWorkers, e.logger)
			summary, err := svc.Import(cmd.Context(), games, opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created=%d updated=%d skipped=%d stats_replaced=%d dry_run=%t\n",
				summary.Created, summary.Updated, summary.Skipped, summary.StatsReplaced, opts.DryRun)
			for _, id := range summary.IDs {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			if summary.StatsReplaced > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "player rows were replaced; run recompute-totals to bring profile totals back in line")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "replace matches that already exist")
	return cmd
}

func newSeedProfilesCmd(get func() *env) *cobra.Command {
	var opts usecase.SeedOptions

	cmd := &cobra.Command{
		Use:   "seed-profiles",
		Short: "Create profiles for roster entries with totals from the legacy players table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := maintenanceService(get()).SeedProfiles(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created=%d updated=%d skipped=%d linked=%d dry_run=%t\n",
				summary.Created, summary.Updated, summary.Skipped, summary.Linked, opts.DryRun)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "rewrite profiles that already exist")
	cmd.Flags().BoolVar(&opts.LinkUp, "link-up", false, "link roster entries and legacy players to the seeded profile")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().BoolVar(&opts.IncludeUnassigned, "include-unassigned", false, "seed roster:{id} profiles for unclaimed roster entries")
	return cmd
}

func newBackfillPlayerIDsCmd(get func() *env) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "backfill-player-ids",
		Short: "Recompute each match's participant ids from its stat rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			changed, err := maintenanceService(get()).BackfillPlayerIDs(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "changed=%d dry_run=%t\n", changed, dryRun)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	return cmd
}

func newRecomputeTotalsCmd(get func() *env) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "recompute-totals",
		Short: "Rewrite profile totals from the sum of all match rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			drift, err := maintenanceService(get()).RecomputeTotals(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			for _, d := range drift {
				fmt.Fprintf(cmd.OutOrStdout(), "%s stored=%d/%d computed=%d/%d\n",
					d.UID, d.Stored.Wins, d.Stored.Losses, d.Computed.Wins, d.Computed.Losses)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "drifted=%d dry_run=%t\n", len(drift), dryRun)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	return cmd
}
