package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospital-sim/hospital-sim/sim/internal/testutil"
	"github.com/hospital-sim/hospital-sim/sim/trace"
)

// checkInvariants asserts the structural properties that hold after every cycle.
func checkInvariants(t *testing.T, e *Engine) {
	t.Helper()

	for _, s := range Stations {
		u := e.Unit(s)
		// reserved means every point is occupied
		if u.IsReserved() {
			for _, p := range u.Points() {
				require.False(t, p.IsAvailable(), "%s reserved but point %d idle", s, p.ID())
			}
		}
	}

	// every customer is in exactly one place
	seen := make(map[uint64]int)
	for _, s := range Stations {
		u := e.Unit(s)
		for _, c := range u.Waiting() {
			seen[c.ID]++
			require.Equal(t, LocationQueued, c.Location, "%s", c)
			require.Equal(t, s, c.Station, "%s", c)
		}
		for _, p := range u.Points() {
			if c := p.Occupant(); c != nil {
				seen[c.ID]++
				require.Equal(t, LocationInService, c.Location, "%s", c)
				require.Equal(t, s, c.Station, "%s", c)
			}
		}
	}
	for i, c := range e.Customers() {
		require.Equal(t, uint64(i+1), c.ID, "ids are assigned in arrival order")
		if c.Location == LocationDeparted {
			require.Zero(t, seen[c.ID], "%s departed but still held by a station", c)
			continue
		}
		require.Equal(t, 1, seen[c.ID], "%s", c)
	}

	// every arrival has either started registration or is still queued for it
	reg := e.Unit(StationRegistration)
	served := 0
	for _, p := range reg.Points() {
		served += p.Served()
	}
	require.Equal(t, e.ArrivalsProcessed(), served+reg.QueueLen())
	require.Len(t, e.Customers(), e.ArrivalsProcessed())
}

// stepToCompletion drives e cycle by cycle, checking invariants after each one.
func stepToCompletion(t *testing.T, e *Engine) *Results {
	t.Helper()
	e.Initialize()
	last := e.Now()
	for e.Step() {
		require.GreaterOrEqual(t, e.Now(), last, "clock went backwards")
		last = e.Now()
		checkInvariants(t, e)
	}
	require.Equal(t, StateCompleted, e.State())
	require.NotNil(t, e.Results())
	return e.Results()
}

func assertNonDecreasingTimes(t *testing.T, ns []trace.Notification) {
	t.Helper()
	for i := 1; i < len(ns); i++ {
		require.GreaterOrEqual(t, ns[i].Time, ns[i-1].Time, "notification %d out of order", i)
	}
}

func TestEngine_ScenarioA_DefaultNetwork(t *testing.T) {
	// GIVEN the default network over 100 minutes
	tr := trace.NewSimulationTrace()
	e := mustNewEngine(t, testConfig(100), WithObserver(tr))

	// WHEN the run completes
	r := stepToCompletion(t, e)

	// THEN customers flowed through and statistics are in range
	assert.Greater(t, r.Departed, 0)
	assert.Greater(t, r.AvgWaitingTime, 0.0)
	assert.GreaterOrEqual(t, r.EndTime, 100.0)
	assert.Equal(t, r.Arrived, r.Departed+r.InSystem)
	require.Len(t, r.Points(), 3)
	for _, p := range r.Points() {
		assert.GreaterOrEqual(t, p.Utilization, 0.0, "%s point %d", p.StationName, p.Point)
		assert.LessOrEqual(t, p.Utilization, 1.0, "%s point %d", p.StationName, p.Point)
	}
	assertNonDecreasingTimes(t, tr.Notifications)
	for _, n := range tr.Notifications {
		assert.LessOrEqual(t, n.Time, r.EndTime)
	}

	summary := trace.Summarize(tr.Notifications)
	assert.Equal(t, r.Arrived, summary.Arrivals)
	assert.Equal(t, r.Departed, summary.Exits)
}

func TestEngine_ScenarioB_ZeroHorizon(t *testing.T) {
	// GIVEN a zero horizon
	tr := trace.NewSimulationTrace()
	e := mustNewEngine(t, testConfig(0), WithObserver(tr))

	// WHEN run
	r, err := e.Run(context.Background())

	// THEN no cycle runs and every statistic is zero
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, e.State())
	assert.Zero(t, r.Cycles)
	assert.Zero(t, r.Arrived)
	assert.Zero(t, r.Departed)
	assert.Zero(t, r.AvgWaitingTime)
	for _, p := range r.Points() {
		assert.Zero(t, p.Utilization)
		assert.Zero(t, p.CustomersServed)
	}
	assert.Empty(t, tr.Notifications)
	assert.Equal(t, 1, e.PendingEvents(), "first arrival stays scheduled")
}

func TestEngine_ScenarioC_ParallelRegistration(t *testing.T) {
	// GIVEN two registration points under heavy load
	cfg := testConfig(300)
	cfg.Registration.Servers = 2
	cfg.Registration.MeanServiceTime = 4
	cfg.MeanArrivalInterval = 2.5
	tr := trace.NewSimulationTrace()
	e := mustNewEngine(t, cfg, WithObserver(tr))

	// WHEN the run completes
	r := stepToCompletion(t, e)

	// THEN both points served customers and starts only name existing points
	reg := r.Station(StationRegistration)
	require.Len(t, reg.Points, 2)
	assert.Greater(t, reg.Points[0].CustomersServed, 0)
	assert.Greater(t, reg.Points[1].CustomersServed, 0)
	for _, n := range tr.Notifications {
		if n.Kind == trace.KindServiceStart && n.Station == int(StationRegistration) {
			assert.Contains(t, []int{1, 2}, n.Point)
		}
	}
}

func TestEngine_ScenarioD_DeterministicTimes(t *testing.T) {
	// GIVEN arrivals every 4 minutes and 2.5 minutes of service everywhere
	tr := trace.NewSimulationTrace()
	opts := []Option{WithObserver(tr), WithArrivalDistribution(NewConstant(4))}
	for _, s := range Stations {
		opts = append(opts, WithServiceDistribution(s, NewConstant(2.5)))
	}
	e := mustNewEngine(t, testConfig(10), opts...)

	// WHEN run
	r, err := e.Run(context.Background())
	require.NoError(t, err)

	// THEN customer 1 is served at 4 and 6.5 and leaves at exactly 9
	var c1 []trace.Notification
	for _, n := range tr.Notifications {
		if n.CustomerID == 1 {
			c1 = append(c1, n)
		}
	}
	require.Len(t, c1, 5)
	assert.Equal(t, trace.KindArrival, c1[0].Kind)
	assert.Equal(t, 4.0, c1[0].Time)
	assert.Equal(t, trace.KindServiceStart, c1[1].Kind)
	assert.Equal(t, 4.0, c1[1].Time)
	assert.Equal(t, trace.KindTransfer, c1[2].Kind)
	assert.Equal(t, 6.5, c1[2].Time)
	assert.Equal(t, trace.KindServiceStart, c1[3].Kind)
	assert.Equal(t, 6.5, c1[3].Time)
	assert.Equal(t, trace.KindExit, c1[4].Kind)
	assert.Equal(t, 9.0, c1[4].Time)

	// nobody ever queued, so nobody waited
	assert.Equal(t, 2, r.Arrived)
	assert.Equal(t, 1, r.Departed)
	assert.Zero(t, r.AvgWaitingTime)
	assert.Equal(t, 10.5, r.EndTime)
	// busy [4, 6.5) and [8, 10.5), clipped at the horizon
	assert.InDelta(t, 0.45, r.Station(StationRegistration).Points[0].Utilization, 1e-12)
	assert.Equal(t, 5.0, r.Station(StationRegistration).Points[0].BusyTime)
}

func TestEngine_PhaseC_SingleSweepPerCycle(t *testing.T) {
	// GIVEN two customers arriving together at t=1 in front of two free
	// registration points, and the next arrival at t=6
	tr := trace.NewSimulationTrace()
	cfg := testConfig(8)
	cfg.Registration.Servers = 2
	e := mustNewEngine(t, cfg,
		WithObserver(tr),
		WithArrivalDistribution(testutil.NewSequence(1, 0, 5)),
		WithServiceDistribution(StationRegistration, NewConstant(10)),
	)

	// WHEN the run completes
	_, err := e.Run(context.Background())
	require.NoError(t, err)

	// THEN one C phase starts at most one service per station: customer 2
	// waits for the next cycle at t=6 even though point 2 was free at t=1
	starts := map[uint64]trace.Notification{}
	for _, n := range tr.Notifications {
		if n.Kind == trace.KindServiceStart && n.Station == int(StationRegistration) {
			starts[n.CustomerID] = n
		}
	}
	require.Contains(t, starts, uint64(1))
	require.Contains(t, starts, uint64(2))
	assert.Equal(t, 1.0, starts[1].Time)
	assert.Equal(t, 1, starts[1].Point)
	assert.Equal(t, 6.0, starts[2].Time)
	assert.Equal(t, 2, starts[2].Point)
	// customer 3 (t=6) waits for point 1 to free up at t=11
	require.Contains(t, starts, uint64(3))
	assert.Equal(t, 11.0, starts[3].Time)
	assert.Equal(t, 1, starts[3].Point)
}

func TestEngine_SameInstantEvents_AllProcessedInOnePhaseB(t *testing.T) {
	// GIVEN several arrivals at the same instant
	e := mustNewEngine(t, testConfig(5), WithArrivalDistribution(testutil.NewSequence(2, 0, 0, 10)))
	e.Initialize()

	// WHEN one cycle runs
	require.True(t, e.Step())

	// THEN all three arrivals were processed at t=2
	assert.Equal(t, 2.0, e.Now())
	assert.Equal(t, 3, e.ArrivalsProcessed())
	assert.Equal(t, 1, e.Cycles())
	assert.Equal(t, 2, e.Unit(StationRegistration).QueueLen(), "one of the three started service")
}

func TestEngine_Run_IsReproducible(t *testing.T) {
	// GIVEN one engine run twice and a second engine with the same config
	cfg := testConfig(200)
	tr := trace.NewSimulationTrace()
	e := mustNewEngine(t, cfg, WithObserver(tr))

	first, err := e.Run(context.Background())
	require.NoError(t, err)
	firstTrace := tr.Notifications
	tr.Reset()

	second, err := e.Run(context.Background())
	require.NoError(t, err)

	// THEN runs are identical
	assert.Equal(t, first, second)
	assert.Equal(t, firstTrace, tr.Notifications)

	other := trace.NewSimulationTrace()
	third, err := mustNewEngine(t, cfg, WithObserver(other)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.Equal(t, firstTrace, other.Notifications)
}

func TestEngine_DifferentSeeds_Diverge(t *testing.T) {
	a := testConfig(200)
	b := testConfig(200)
	b.Seed = a.Seed + 1

	ra, err := mustNewEngine(t, a).Run(context.Background())
	require.NoError(t, err)
	rb, err := mustNewEngine(t, b).Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, ra.AvgWaitingTime, rb.AvgWaitingTime)
}

func TestEngine_ClassStream_Pinned(t *testing.T) {
	// GIVEN two configs that differ only in master seed but pin every stream
	pin := func(cfg *Config) {
		cfg.Seeds = SeedConfig{
			Arrival:      int64Ptr(1),
			Registration: int64Ptr(2),
			General:      int64Ptr(3),
			Specialist:   int64Ptr(4),
			Class:        int64Ptr(5),
		}
	}
	a, b := testConfig(100), testConfig(100)
	b.Seed = 999
	pin(&a)
	pin(&b)

	ra, err := mustNewEngine(t, a).Run(context.Background())
	require.NoError(t, err)
	rb, err := mustNewEngine(t, b).Run(context.Background())
	require.NoError(t, err)

	// THEN the runs are identical
	assert.Equal(t, ra, rb)
}

func TestEngine_Run_CancelledBeforeStart(t *testing.T) {
	// GIVEN an already-cancelled context
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := mustNewEngine(t, testConfig(100))

	// WHEN run
	r, err := e.Run(ctx)

	// THEN the run is interrupted before the first cycle
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, ErrInterrupted))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StateInterrupted, e.State())
	assert.Zero(t, e.Cycles())
	assert.Equal(t, 1, e.PendingEvents())
	assert.Panics(t, func() { e.Step() })
}

func TestEngine_Run_CancelledMidRun_LeavesConsistentState(t *testing.T) {
	// GIVEN an observer that cancels after the fifth exit
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	exits := 0
	e := mustNewEngine(t, testConfig(10000), WithObserver(trace.ObserverFunc(func(n trace.Notification) {
		if n.Kind == trace.KindExit {
			exits++
			if exits == 5 {
				cancel()
			}
		}
	})))

	// WHEN run
	_, err := e.Run(ctx)

	// THEN the run stops at the end of that cycle with structures intact
	require.ErrorIs(t, err, ErrInterrupted)
	assert.Equal(t, StateInterrupted, e.State())
	assert.Less(t, e.Now(), 10000.0)
	assert.Nil(t, e.Results())
	checkInvariants(t, e)

	// a fresh run still works afterwards
	r, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Greater(t, r.Departed, 5)
}

func TestEngine_Run_DelayHonoursDeadline(t *testing.T) {
	// GIVEN an hour between cycles and a 50ms deadline
	cfg := testConfig(100)
	cfg.Delay = time.Hour
	e := mustNewEngine(t, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// WHEN run
	start := time.Now()
	_, err := e.Run(ctx)

	// THEN the pause is cut short by the deadline after exactly one cycle
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, e.Cycles())
}

func TestEngine_Step_Lifecycle(t *testing.T) {
	e := mustNewEngine(t, testConfig(0))
	assert.Equal(t, StateNotStarted, e.State())
	assert.Panics(t, func() { e.Step() }, "step before initialize")

	e.Initialize()
	assert.Equal(t, StateRunning, e.State())
	assert.False(t, e.Step())
	assert.Equal(t, StateCompleted, e.State())
	assert.False(t, e.Step(), "step after completion is a no-op")
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := testConfig(100)
	cfg.General.Servers = 0
	_, err := NewEngine(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
