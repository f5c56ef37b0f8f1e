// Package testutil provides shared test infrastructure for the simulator:
// the golden dataset of hand-checked deterministic runs and a replaying
// distribution for scripting arrival and service times.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one deterministic run: scripted interarrival gaps,
// constant service times and the statistics it must produce.
type GoldenTestCase struct {
	Name         string           `json:"name"`
	ArrivalGaps  []float64        `json:"arrival_gaps"` // the last gap repeats
	Servers      GoldenStations   `json:"servers"`
	ServiceTimes GoldenServiceMap `json:"service_times"`
	Horizon      float64          `json:"horizon"`
	Metrics      GoldenMetrics    `json:"metrics"`
}

// GoldenStations holds one server count per station.
type GoldenStations struct {
	Registration int `json:"registration"`
	General      int `json:"general"`
	Specialist   int `json:"specialist"`
}

// GoldenServiceMap holds one constant service time per station.
type GoldenServiceMap struct {
	Registration float64 `json:"registration"`
	General      float64 `json:"general"`
	Specialist   float64 `json:"specialist"`
}

// GoldenMetrics represents the expected results of a golden test case.
type GoldenMetrics struct {
	// Exact match metrics (integers)
	Arrived  int `json:"arrived"`
	Departed int `json:"departed"`
	Cycles   int `json:"cycles"`

	// Deterministic floating-point metrics (derived from simulation clock)
	EndTime           float64 `json:"end_time"`
	AvgWaitingTime    float64 `json:"avg_waiting_time"`
	WaitingTimeStdDev float64 `json:"waiting_time_std_dev"`

	// Registration is the only station whose points do not depend on the
	// customer class stream.
	RegistrationMeanQueueWait float64       `json:"registration_mean_queue_wait"`
	RegistrationPoints        []GoldenPoint `json:"registration_points"`
}

// GoldenPoint is the expected statistics of one service point.
type GoldenPoint struct {
	Served      int     `json:"served"`
	BusyTime    float64 `json:"busy_time"`
	Utilization float64 `json:"utilization"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
