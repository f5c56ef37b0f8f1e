package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testConfig returns a valid configuration with single-server stations.
func testConfig(horizon float64) Config {
	cfg := DefaultConfig()
	cfg.Horizon = horizon
	return cfg
}

// mustNewEngine builds an engine or fails the test.
func mustNewEngine(t *testing.T, cfg Config, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, opts...)
	require.NoError(t, err)
	return e
}

func int64Ptr(v int64) *int64 { return &v }
