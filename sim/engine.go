// sim/engine.go
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hospital-sim/hospital-sim/sim/trace"
)

// ErrInterrupted is wrapped by the error Run returns when its context is
// cancelled before the horizon is reached.
var ErrInterrupted = errors.New("simulation interrupted")

// State is the lifecycle state of an Engine.
type State string

const (
	StateNotStarted  State = "not_started"
	StateRunning     State = "running"
	StateCompleted   State = "completed"
	StateInterrupted State = "interrupted"
)

// Engine is the core object that holds simulated time, the event list, the
// three stations and the three-phase loop.
//
// One cycle is:
//   - A: advance the clock to the earliest pending event
//   - B: process every event scheduled for exactly that time
//   - C: sweep the stations once, in order, starting service where a point is
//     free and a customer waits
//
// Thread-safety: NOT thread-safe. A host running the engine on several
// goroutines must serialize every call.
type Engine struct {
	config Config

	clock    Clock
	events   *EventList
	arrivals *ArrivalProcess
	units    [len(Stations)]*ServiceUnit

	distributions []Distribution
	classSeed     int64
	classRNG      *rand.Rand

	observers []trace.Observer

	state             State
	cycles            int
	nextCustomerID    uint64
	arrivalsProcessed int
	customers         []*Customer // index = ID-1
	waitingTimes      []float64   // one per departed customer, in departure order
	results           *Results
}

// Option customizes an Engine at construction.
type Option func(*engineOptions)

type engineOptions struct {
	observers    []trace.Observer
	interarrival Distribution
	service      map[StationID]Distribution
}

// WithObserver registers an observer of the notification stream.
func WithObserver(o trace.Observer) Option {
	return func(opts *engineOptions) {
		opts.observers = append(opts.observers, o)
	}
}

// WithArrivalDistribution replaces the negative-exponential interarrival law.
func WithArrivalDistribution(d Distribution) Option {
	return func(opts *engineOptions) {
		opts.interarrival = d
	}
}

// WithServiceDistribution replaces the Normal service law of one station.
func WithServiceDistribution(station StationID, d Distribution) Option {
	return func(opts *engineOptions) {
		opts.service[station] = d
	}
}

// NewEngine validates cfg and builds an engine in StateNotStarted.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := engineOptions{service: make(map[StationID]Distribution)}
	for _, opt := range opts {
		opt(&o)
	}

	rng := cfg.rng()
	e := &Engine{
		config:    cfg,
		events:    NewEventList(),
		observers: o.observers,
		state:     StateNotStarted,
		classSeed: rng.SeedFor(SubsystemCustomerClass),
	}

	interarrival := o.interarrival
	if interarrival == nil {
		interarrival = NewNegExp(cfg.MeanArrivalInterval, rng.SeedFor(SubsystemArrival))
	}
	e.arrivals = NewArrivalProcess(interarrival, e.events)
	e.distributions = append(e.distributions, interarrival)

	for _, s := range Stations {
		service, ok := o.service[s]
		if !ok {
			service = NewNormal(cfg.Station(s).MeanServiceTime, cfg.ServiceVariance, rng.SeedFor(SubsystemService(s)))
		}
		e.units[s.index()] = NewServiceUnit(s, cfg.Station(s).Servers, service, e.events)
		e.distributions = append(e.distributions, service)
	}
	return e, nil
}

// Initialize prepares a fresh run: resets the clock, the stations, the event
// list and every counter, restarts all random streams from their seeds and
// schedules the first arrival. May be called in any state.
func (e *Engine) Initialize() {
	e.clock.Reset()
	e.events.Reset()
	for _, u := range e.units {
		u.Reset()
	}
	for _, d := range e.distributions {
		if r, ok := d.(Reseeder); ok {
			r.Reseed()
		}
	}
	e.classRNG = rand.New(newSource(e.classSeed))

	e.cycles = 0
	e.nextCustomerID = 0
	e.arrivalsProcessed = 0
	e.customers = nil
	e.waitingTimes = nil
	e.results = nil

	e.arrivals.GenerateNext(e.clock.Now())
	e.state = StateRunning
	logrus.Infof("simulation initialized: horizon=%.2f, servers=%d/%d/%d",
		e.config.Horizon, e.config.Registration.Servers, e.config.General.Servers, e.config.Specialist.Servers)
}

// Run initializes the engine and executes cycles until the horizon is
// reached, pausing Config.Delay between cycles.
//
// If ctx is cancelled, Run stops at the next cycle boundary, leaves the
// engine in StateInterrupted with every structure consistent, and returns an
// error wrapping both ErrInterrupted and ctx.Err().
func (e *Engine) Run(ctx context.Context) (*Results, error) {
	e.Initialize()
	for {
		if err := ctx.Err(); err != nil {
			return nil, e.interrupt(err)
		}
		if !e.Step() {
			break
		}
		if err := e.pause(ctx); err != nil {
			return nil, e.interrupt(err)
		}
	}
	return e.results, nil
}

// Step runs one A/B/C cycle and reports whether the run can continue.
// When the clock has reached the horizon, Step completes the run, computes
// the results and returns false without touching any other state.
//
// Panics if the engine was never initialized or was interrupted.
func (e *Engine) Step() bool {
	switch e.state {
	case StateCompleted:
		return false
	case StateRunning:
	default:
		panic(fmt.Sprintf("Engine.Step: engine is %s", e.state))
	}

	if e.clock.Now() >= e.config.Horizon {
		e.complete()
		return false
	}

	// A phase
	e.clock.AdvanceTo(e.events.PeekTime())
	now := e.clock.Now()
	logrus.Debugf("[t %10.4f] cycle %d", now, e.cycles)

	// B phase
	for e.events.Len() > 0 && e.events.PeekTime() == now {
		e.runEvent(e.events.PopNext())
	}

	// C phase: one pass, no fixpoint.
	for _, u := range e.units {
		if !u.IsReserved() && u.HasWaiting() {
			point, c := u.BeginService(now)
			e.notify(trace.Notification{
				Kind:       trace.KindServiceStart,
				Time:       now,
				CustomerID: c.ID,
				Class:      c.Class.String(),
				Station:    int(u.Station()),
				Point:      point,
			})
		}
	}

	e.cycles++
	return true
}

func (e *Engine) runEvent(ev Event) {
	now := e.clock.Now()
	switch ev.Kind {
	case EventArrival:
		c := e.newCustomer(now)
		e.unit(StationRegistration).Enqueue(c, now)
		e.arrivals.GenerateNext(now)
		logrus.Debugf("<< Arrival: %s at %.4f", c, now)
		e.notify(trace.Notification{
			Kind:       trace.KindArrival,
			Time:       now,
			CustomerID: c.ID,
			Class:      c.Class.String(),
			From:       trace.OutsideNetwork,
			To:         int(StationRegistration),
		})

	case EventDeparture:
		c := e.unit(ev.Station).EndService(ev.Point)
		next := nextStation(ev.Station, c.Class)
		if next == NoStation {
			c.Finalize(now)
			e.waitingTimes = append(e.waitingTimes, c.WaitingTime())
			logrus.Debugf("<< Exit: %s from %s at %.4f, waited %.4f", c, ev.Station, now, c.WaitingTime())
			e.notify(trace.Notification{
				Kind:       trace.KindExit,
				Time:       now,
				CustomerID: c.ID,
				Class:      c.Class.String(),
				From:       int(ev.Station),
				To:         trace.OutsideNetwork,
			})
			return
		}
		e.unit(next).Enqueue(c, now)
		logrus.Debugf("<< Transfer: %s %s -> %s at %.4f", c, ev.Station, next, now)
		e.notify(trace.Notification{
			Kind:       trace.KindTransfer,
			Time:       now,
			CustomerID: c.ID,
			Class:      c.Class.String(),
			From:       int(ev.Station),
			To:         int(next),
		})

	default:
		panic(fmt.Sprintf("Engine.runEvent: unknown event kind %v", ev.Kind))
	}
}

func (e *Engine) newCustomer(now float64) *Customer {
	e.nextCustomerID++
	e.arrivalsProcessed++
	class := ClassGeneral
	if e.classRNG.IntN(2) == 1 {
		class = ClassSpecialist
	}
	c := NewCustomer(e.nextCustomerID, class, now)
	e.customers = append(e.customers, c)
	return c
}

func (e *Engine) notify(n trace.Notification) {
	for _, o := range e.observers {
		o.Observe(n)
	}
}

func (e *Engine) complete() {
	e.results = e.computeResults()
	e.state = StateCompleted
	logrus.Infof("simulation completed at %.4f after %d cycles: %d arrived, %d departed, avg wait %.4f",
		e.clock.Now(), e.cycles, e.results.Arrived, e.results.Departed, e.results.AvgWaitingTime)
}

func (e *Engine) interrupt(cause error) error {
	e.state = StateInterrupted
	logrus.Warnf("simulation interrupted at %.4f after %d cycles: %v", e.clock.Now(), e.cycles, cause)
	return fmt.Errorf("%w at t=%.4f: %w", ErrInterrupted, e.clock.Now(), cause)
}

// pause sleeps Config.Delay, returning early with ctx.Err() on cancellation.
func (e *Engine) pause(ctx context.Context) error {
	if e.config.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(e.config.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Engine) unit(s StationID) *ServiceUnit {
	return e.units[s.index()]
}

// Unit returns the service unit of one station. Read-only for callers.
func (e *Engine) Unit(s StationID) *ServiceUnit {
	return e.unit(s)
}

// Now returns the current simulated time.
func (e *Engine) Now() float64 { return e.clock.Now() }

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config { return e.config }

// Cycles returns how many A/B/C cycles ran in the current run.
func (e *Engine) Cycles() int { return e.cycles }

// PendingEvents returns the number of scheduled, unprocessed events.
func (e *Engine) PendingEvents() int { return e.events.Len() }

// ArrivalsProcessed returns how many arrival events were processed.
func (e *Engine) ArrivalsProcessed() int { return e.arrivalsProcessed }

// Customers returns every customer created in the current run, by ID.
// Read-only for callers.
func (e *Engine) Customers() []*Customer { return e.customers }

// Results returns the statistics of a completed run, or nil otherwise.
func (e *Engine) Results() *Results { return e.results }
