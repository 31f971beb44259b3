package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/naturalization-engine/eligibility"
	"github.com/warp/naturalization-engine/store/sqlite"
	"github.com/warp/naturalization-engine/tracker"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportThenEvaluate(t *testing.T) {
	// GIVEN: A config file, a database with a profile, and a CSV of trips
	dir := t.TempDir()
	cfg := writeFile(t, dir, "natz.yaml", "loglevel: warn\n")
	db := filepath.Join(dir, "natz.db")

	store, err := sqlite.New(db)
	require.NoError(t, err)
	profile, err := tracker.ProfileInput{
		DateOfBirth:         "2000-01-01",
		LPRDate:             "2020-01-01",
		State:               "CA",
		StateResidenceSince: "2020-06-01",
	}.Parse()
	require.NoError(t, err)
	require.NoError(t, store.SaveProfile(context.Background(), profile))
	require.NoError(t, store.Close())

	csv := writeFile(t, dir, "trips.csv", "startDate,endDate,destination\n2023-01-01,2023-07-05,Mexico\nbad,row\n")

	// WHEN: Importing
	out, err := run(t, "--config", cfg, "--db", db, "import", csv)

	// THEN: One trip in, one row skipped
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 trips, skipped 1 rows")

	// WHEN: Evaluating, with the database path coming from the environment
	t.Setenv("NATZ_DB", db)
	out, err = run(t, "--config", cfg, "evaluate", "--as-of", "2025-06-01")

	// THEN: Eligible with the six-month warning
	require.NoError(t, err)
	assert.Contains(t, out, "As of 2025-06-01: ELIGIBLE")
	assert.Contains(t, out, "warning: Trip to Mexico (January 1, 2023) was 185 days (> 6 months)")
	assert.Contains(t, out, "Earliest filing date: 2024-10-03")
}

func TestEvaluate_EmptyDatabase(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "natz.yaml", "")

	out, err := run(t, "--config", cfg, "--db", filepath.Join(dir, "empty.db"), "evaluate", "--as-of", "2025-06-01")

	require.NoError(t, err)
	assert.Contains(t, out, "NOT ELIGIBLE")
	assert.Contains(t, out, "blocker: "+eligibility.NoProfileResult().BlockerMessages()[0])
}

func TestEvaluate_RejectsBadDate(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "natz.yaml", "")

	_, err := run(t, "--config", cfg, "--db", filepath.Join(dir, "x.db"), "evaluate", "--as-of", "tomorrow")

	assert.Error(t, err)
}

func TestExport_WritesDataPack(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "natz.yaml", "")
	target := filepath.Join(dir, "pack.json")

	_, err := run(t, "--config", cfg, "--db", filepath.Join(dir, "x.db"), "export", "--out", target)
	require.NoError(t, err)

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"trips": []`)
	assert.Contains(t, string(b), `"no_profile"`)
}

func TestSetLogLevel(t *testing.T) {
	assert.NoError(t, setLogLevel("DEBUG"))
	assert.NoError(t, setLogLevel("warning"))
	assert.Error(t, setLogLevel("verbose"))
}
