package sim

import "fmt"

// StationID identifies one of the three stations of the network.
// The zero value, NoStation, stands for "outside the network" (entry or exit).
type StationID int

const (
	NoStation StationID = iota
	StationRegistration
	StationGeneral
	StationSpecialist
)

// Stations lists every station in the fixed order used by the C phase.
var Stations = [...]StationID{StationRegistration, StationGeneral, StationSpecialist}

func (s StationID) String() string {
	switch s {
	case NoStation:
		return "none"
	case StationRegistration:
		return "registration"
	case StationGeneral:
		return "general"
	case StationSpecialist:
		return "specialist"
	default:
		return fmt.Sprintf("station(%d)", int(s))
	}
}

// Valid reports whether s names a station of the network.
func (s StationID) Valid() bool {
	return s >= StationRegistration && s <= StationSpecialist
}

// index returns the 0-based position of s in Stations.
func (s StationID) index() int {
	if !s.Valid() {
		panic(fmt.Sprintf("StationID.index: %v is not a station", s))
	}
	return int(s) - 1
}

// EventKind distinguishes the two B-phase event types.
type EventKind int

const (
	// EventArrival brings a new customer into the registration queue.
	EventArrival EventKind = iota
	// EventDeparture ends a service at Event.Station on Event.Point.
	EventDeparture
)

func (k EventKind) String() string {
	switch k {
	case EventArrival:
		return "arrival"
	case EventDeparture:
		return "departure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is a time-stamped scheduling unit. Events are values: once scheduled
// they are owned by the EventList until PopNext hands them back.
type Event struct {
	Time    float64   // simulated time (minutes)
	Kind    EventKind // arrival or departure
	Station StationID // departures: station whose service ends
	Point   int       // departures: service point being freed

	seq uint64 // insertion order, assigned by EventList.Schedule
}

func (e Event) String() string {
	if e.Kind == EventDeparture {
		return fmt.Sprintf("%s(%s/%d)@%.4f", e.Kind, e.Station, e.Point, e.Time)
	}
	return fmt.Sprintf("%s@%.4f", e.Kind, e.Time)
}
