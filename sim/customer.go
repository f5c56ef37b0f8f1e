// Defines the Customer entity that traverses the network.
// Tracks arrival, accumulated service and departure times for the waiting-time statistics.

package sim

import "fmt"

// CustomerClass is the routing discriminant after registration.
type CustomerClass int

const (
	ClassGeneral CustomerClass = iota
	ClassSpecialist
)

func (c CustomerClass) String() string {
	switch c {
	case ClassGeneral:
		return "general"
	case ClassSpecialist:
		return "specialist"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Location says which single place currently holds a customer.
type Location string

const (
	LocationQueued    Location = "queued"     // in a station's wait queue
	LocationInService Location = "in_service" // occupying a service point
	LocationDeparted  Location = "departed"   // left the network, statistics final
)

// Customer is one unit of work flowing through the network.
type Customer struct {
	ID          uint64        // unique, assigned in arrival order starting at 1
	Class       CustomerClass // fixed at creation
	ArrivalTime float64       // time the customer entered the network
	ServiceTime float64       // service received so far, summed over stations

	DepartureTime float64 // valid only once Location == LocationDeparted

	Location Location  // queued, in service, or departed
	Station  StationID // station holding the customer; NoStation once departed

	enqueuedAt float64 // time the customer joined its current wait queue
}

// NewCustomer creates a customer that arrives at time now.
func NewCustomer(id uint64, class CustomerClass, now float64) *Customer {
	return &Customer{
		ID:          id,
		Class:       class,
		ArrivalTime: now,
		Location:    LocationQueued,
		Station:     NoStation,
	}
}

// AddServiceTime accumulates service received at one station.
func (c *Customer) AddServiceTime(d float64) {
	c.ServiceTime += d
}

// Finalize records the departure from the last station.
// Panics if called twice.
func (c *Customer) Finalize(departure float64) {
	if c.Location == LocationDeparted {
		panic(fmt.Sprintf("Customer.Finalize: customer %d already departed at %v", c.ID, c.DepartureTime))
	}
	c.DepartureTime = departure
	c.Location = LocationDeparted
	c.Station = NoStation
}

// WaitingTime is the time spent in the network but not in service.
// Panics if the customer has not departed.
func (c *Customer) WaitingTime() float64 {
	if c.Location != LocationDeparted {
		panic(fmt.Sprintf("Customer.WaitingTime: customer %d has not departed", c.ID))
	}
	return c.DepartureTime - c.ArrivalTime - c.ServiceTime
}

func (c *Customer) String() string {
	return fmt.Sprintf("customer#%d(%s)", c.ID, c.Class)
}
