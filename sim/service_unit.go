package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ServiceUnit is a station: a FIFO wait queue in front of a pool of parallel
// service points. It schedules its own departure events when a service begins.
type ServiceUnit struct {
	station StationID
	waitQ   WaitQueue
	points  []*ServicePoint
	service Distribution
	events  *EventList

	queueWaitSum float64 // total time customers spent in this station's queue
	started      int     // services begun at this station
}

// NewServiceUnit creates a station with servers points.
// Panics if servers < 1 or service is nil.
func NewServiceUnit(station StationID, servers int, service Distribution, events *EventList) *ServiceUnit {
	if servers < 1 {
		panic(fmt.Sprintf("NewServiceUnit: %s needs at least one server, got %d", station, servers))
	}
	if service == nil {
		panic(fmt.Sprintf("NewServiceUnit: %s has no service time distribution", station))
	}
	points := make([]*ServicePoint, servers)
	for i := range points {
		points[i] = NewServicePoint(i + 1)
	}
	return &ServiceUnit{
		station: station,
		points:  points,
		service: service,
		events:  events,
	}
}

// Station returns the station this unit implements.
func (u *ServiceUnit) Station() StationID { return u.station }

// Enqueue appends c to the wait queue at time now.
func (u *ServiceUnit) Enqueue(c *Customer, now float64) {
	c.Location = LocationQueued
	c.Station = u.station
	c.enqueuedAt = now
	u.waitQ.Enqueue(c)
}

// IsReserved reports whether every service point is occupied.
func (u *ServiceUnit) IsReserved() bool {
	for _, p := range u.points {
		if p.IsAvailable() {
			return false
		}
	}
	return true
}

// HasWaiting reports whether the wait queue is non-empty.
func (u *ServiceUnit) HasWaiting() bool {
	return u.waitQ.Len() > 0
}

// QueueLen returns the number of waiting customers.
func (u *ServiceUnit) QueueLen() int {
	return u.waitQ.Len()
}

// Waiting returns the queue contents in FIFO order. Read-only.
func (u *ServiceUnit) Waiting() []*Customer {
	return u.waitQ.Items()
}

// Points returns the station's service points, ordered by ID.
func (u *ServiceUnit) Points() []*ServicePoint {
	return u.points
}

// Point returns the service point with the given ID.
// Panics if no such point exists.
func (u *ServiceUnit) Point(id int) *ServicePoint {
	if id < 1 || id > len(u.points) {
		panic(fmt.Sprintf("ServiceUnit.Point: %s has no point %d", u.station, id))
	}
	return u.points[id-1]
}

// BeginService moves the head of the queue onto the lowest-numbered free
// point, samples its service duration and schedules the matching departure at
// now + duration. Returns the chosen point and the customer.
//
// Panics if the station is reserved or nobody is waiting; callers check
// IsReserved and HasWaiting first.
func (u *ServiceUnit) BeginService(now float64) (int, *Customer) {
	if !u.HasWaiting() {
		panic(fmt.Sprintf("ServiceUnit.BeginService: %s has nobody waiting", u.station))
	}
	var point *ServicePoint
	for _, p := range u.points {
		if p.IsAvailable() {
			point = p
			break
		}
	}
	if point == nil {
		panic(fmt.Sprintf("ServiceUnit.BeginService: %s is reserved", u.station))
	}

	c := u.waitQ.Dequeue()
	d := u.service.Sample()
	u.queueWaitSum += now - c.enqueuedAt
	u.started++

	point.Begin(c, now, d)
	c.AddServiceTime(d)
	c.Location = LocationInService
	u.events.Schedule(Event{
		Time:    now + d,
		Kind:    EventDeparture,
		Station: u.station,
		Point:   point.ID(),
	})
	logrus.Debugf("%s: %s begins service on point %d for %.4f", u.station, c, point.ID(), d)
	return point.ID(), c
}

// EndService releases the named point and returns the customer it served.
// Each EndService pairs with exactly one earlier BeginService through the
// departure event that BeginService scheduled.
func (u *ServiceUnit) EndService(pointID int) *Customer {
	return u.Point(pointID).Release()
}

// MeanQueueWait returns the mean time customers waited in this station's queue
// before their service began, or 0 if no service began.
func (u *ServiceUnit) MeanQueueWait() float64 {
	if u.started == 0 {
		return 0
	}
	return u.queueWaitSum / float64(u.started)
}

// Reset empties the queue and clears every point.
func (u *ServiceUnit) Reset() {
	u.waitQ.Clear()
	for _, p := range u.points {
		p.Reset()
	}
	u.queueWaitSum = 0
	u.started = 0
}
