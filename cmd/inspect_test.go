package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/hospital-sim/hospital-sim/sim"
	"github.com/hospital-sim/hospital-sim/sim/record"
)

func TestInspectRecording_RunDetail(t *testing.T) {
	// GIVEN a database holding one recorded run
	path := filepath.Join(t.TempDir(), "runs.sqlite3")
	cfg := sim.DefaultConfig()
	cfg.Horizon = 60
	var discard bytes.Buffer
	require.NoError(t, runSimulation(context.Background(), cfg, runOptions{RecordPath: path}, &discard))

	r, err := record.Open(path)
	require.NoError(t, err)
	runs, err := r.ListRuns()
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Len(t, runs, 1)

	// WHEN one run is inspected
	var buf bytes.Buffer
	require.NoError(t, inspectRecording(&buf, path, runs[0].ID))

	// THEN the report names the run, its points and its configuration
	out := buf.String()
	assert.Contains(t, out, "=== Run "+runs[0].ID+" ===")
	assert.Contains(t, out, "registration point 1")
	assert.Contains(t, out, "mean_arrival_interval")
	assert.True(t, strings.Contains(out, "exits general") || strings.Contains(out, "exits specialist"))
}

func TestInspectRecording_UnknownRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.sqlite3")
	cfg := sim.DefaultConfig()
	cfg.Horizon = 10
	var discard bytes.Buffer
	require.NoError(t, runSimulation(context.Background(), cfg, runOptions{RecordPath: path}, &discard))

	err := inspectRecording(&discard, path, "missing")
	assert.Error(t, err)
}

func TestInspectRecording_MissingDatabase(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, inspectRecording(&buf, filepath.Join(t.TempDir(), "none.sqlite3"), ""))
}
