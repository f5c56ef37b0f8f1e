package sim

import "fmt"

// serviceSpan is one service interval on a point.
type serviceSpan struct {
	start, end float64
}

// ServicePoint is a single server inside a station. It serves at most one
// customer at a time and keeps cumulative statistics for the run.
type ServicePoint struct {
	id       int
	occupant *Customer
	busyTime float64 // sum of every sampled duration, including time past the horizon
	served   int
	spans    []serviceSpan
}

// NewServicePoint creates an idle point. IDs are 1-based within a station.
func NewServicePoint(id int) *ServicePoint {
	return &ServicePoint{id: id}
}

// ID returns the point's station-local identifier.
func (p *ServicePoint) ID() int { return p.id }

// IsAvailable reports whether the point is idle.
func (p *ServicePoint) IsAvailable() bool {
	return p.occupant == nil
}

// Occupant returns the customer being served, or nil when idle.
func (p *ServicePoint) Occupant() *Customer {
	return p.occupant
}

// Begin binds c to the point for a service of duration d starting at now.
// Panics if the point is already occupied.
func (p *ServicePoint) Begin(c *Customer, now, d float64) {
	if p.occupant != nil {
		panic(fmt.Sprintf("ServicePoint.Begin: point %d already serving %s", p.id, p.occupant))
	}
	p.occupant = c
	p.busyTime += d
	p.served++
	p.spans = append(p.spans, serviceSpan{start: now, end: now + d})
}

// Release frees the point and returns the customer that was being served.
// Panics if the point is idle.
func (p *ServicePoint) Release() *Customer {
	if p.occupant == nil {
		panic(fmt.Sprintf("ServicePoint.Release: point %d is not serving anyone", p.id))
	}
	c := p.occupant
	p.occupant = nil
	return c
}

// BusyTime returns the total sampled service time.
func (p *ServicePoint) BusyTime() float64 { return p.busyTime }

// Served returns how many services began on this point.
func (p *ServicePoint) Served() int { return p.served }

// MeanServiceTime returns BusyTime / Served, or 0 before the first service.
func (p *ServicePoint) MeanServiceTime() float64 {
	if p.served == 0 {
		return 0
	}
	return p.busyTime / float64(p.served)
}

// BusyTimeUntil returns how long the point was busy within [0, t].
// Service that extends beyond t is not counted, so BusyTimeUntil(t)/t is
// always within [0, 1].
func (p *ServicePoint) BusyTimeUntil(t float64) float64 {
	busy := 0.0
	for _, s := range p.spans {
		if s.start >= t {
			continue
		}
		busy += min(s.end, t) - s.start
	}
	return busy
}

// Reset clears occupancy and statistics.
func (p *ServicePoint) Reset() {
	p.occupant = nil
	p.busyTime = 0
	p.served = 0
	p.spans = nil
}
