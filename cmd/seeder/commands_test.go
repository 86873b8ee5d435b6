package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jamwil123/pool-tracker/internal/app"
	"github.com/jamwil123/pool-tracker/internal/config"
	"github.com/jamwil123/pool-tracker/internal/infrastructure/repository/memory"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
)

func memoryEnv(t *testing.T) *env {
	t.Helper()

	cfg := config.Config{StorageDriver: config.StorageMemory, Location: time.UTC, ImportWorkers: 2}
	storage, err := app.OpenStorage(t.Context(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("open memory storage: %v", err)
	}
	return &env{cfg: cfg, logger: logging.NewNop(), storage: storage}
}

func runSeeder(t *testing.T, e *env, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd(func(context.Context) (*env, error) { return e, nil })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func writeFixtures(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixtures.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write fixtures: %v", err)
	}
	return path
}

const crownFixture = `[{
	"opponent": "The Crown",
	"homeOrAway": "away",
	"matchDate": "2026-01-08",
	"result": "win",
	"playerStats": [{"playerId": "uid-captain-demo", "displayName": "Jamie Williams", "singlesWins": 2}]
}]`

func TestImportFixtures_CreatesThenSkips(t *testing.T) {
	t.Parallel()

	e := memoryEnv(t)
	path := writeFixtures(t, crownFixture)

	out, err := runSeeder(t, e, "import-fixtures", path)
	if err != nil {
		t.Fatalf("import fixtures: %v", err)
	}
	if !strings.Contains(out, "created=1") || !strings.Contains(out, "match-2026-01-08-away-the-crown") {
		t.Fatalf("unexpected output: %s", out)
	}

	_, exists, err := e.storage.Matches.GetByID(t.Context(), "match-2026-01-08-away-the-crown")
	if err != nil || !exists {
		t.Fatalf("expected imported match, exists=%v err=%v", exists, err)
	}

	out, err = runSeeder(t, e, "import-fixtures", path)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if !strings.Contains(out, "created=0") || !strings.Contains(out, "skipped=1") {
		t.Fatalf("expected existing match skipped, got: %s", out)
	}
}

func TestImportFixtures_RejectsNonArrayInput(t *testing.T) {
	t.Parallel()

	e := memoryEnv(t)
	path := writeFixtures(t, `{"opponent": "The Crown"}`)

	if _, err := runSeeder(t, e, "import-fixtures", path); err == nil {
		t.Fatalf("expected error for object input")
	}
}

func TestRecomputeTotals_ReportsAndRepairsDrift(t *testing.T) {
	t.Parallel()

	e := memoryEnv(t)
	if _, err := runSeeder(t, e, "import-fixtures", writeFixtures(t, crownFixture)); err != nil {
		t.Fatalf("import fixtures: %v", err)
	}

	out, err := runSeeder(t, e, "recompute-totals", "--dry-run")
	if err != nil {
		t.Fatalf("recompute dry run: %v", err)
	}
	if !strings.Contains(out, memory.SeedCaptainUID+" stored=2/0 computed=4/0") || !strings.Contains(out, "drifted=1 dry_run=true") {
		t.Fatalf("unexpected dry run output: %s", out)
	}

	p, _, _ := e.storage.Profiles.GetByUID(t.Context(), memory.SeedCaptainUID)
	if p.TotalWins != 2 {
		t.Fatalf("dry run must not write totals, got %d", p.TotalWins)
	}

	if _, err := runSeeder(t, e, "recompute-totals"); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	p, _, _ = e.storage.Profiles.GetByUID(t.Context(), memory.SeedCaptainUID)
	if p.TotalWins != 4 || p.TotalLosses != 0 {
		t.Fatalf("expected repaired totals 4/0, got %d/%d", p.TotalWins, p.TotalLosses)
	}
}

func TestBackfillPlayerIDs_NothingToChangeOnSeed(t *testing.T) {
	t.Parallel()

	out, err := runSeeder(t, memoryEnv(t), "backfill-player-ids", "--dry-run")
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if !strings.Contains(out, "changed=0") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestSeedProfiles_DryRunIncludesUnassigned(t *testing.T) {
	t.Parallel()

	out, err := runSeeder(t, memoryEnv(t), "seed-profiles", "--dry-run", "--include-unassigned")
	if err != nil {
		t.Fatalf("seed profiles: %v", err)
	}
	if !strings.Contains(out, "created=3 updated=2 skipped=0 linked=0 dry_run=true") {
		t.Fatalf("expected three unassigned entries created and two claimed entries updated, got: %s", out)
	}
}

func TestImportFixtures_OverwriteFlagsStaleTotals(t *testing.T) {
	t.Parallel()

	e := memoryEnv(t)
	if _, err := runSeeder(t, e, "import-fixtures", writeFixtures(t, crownFixture)); err != nil {
		t.Fatalf("import fixtures: %v", err)
	}

	edited := strings.Replace(crownFixture, `"singlesWins": 2`, `"singlesWins": 1`, 1)
	out, err := runSeeder(t, e, "import-fixtures", "--overwrite", writeFixtures(t, edited))
	if err != nil {
		t.Fatalf("overwrite import: %v", err)
	}
	if !strings.Contains(out, "updated=1") || !strings.Contains(out, "stats_replaced=1") || !strings.Contains(out, "run recompute-totals") {
		t.Fatalf("expected stale totals hint, got: %s", out)
	}
}
