// Package trace provides the per-event notification records emitted by a
// simulation run, plus observers that collect, log or stream them.
// This package has no dependencies on sim/; records are pure data.
package trace

import "fmt"

// Kind classifies a notification.
type Kind string

const (
	// KindArrival: a new customer joined the first station's queue.
	KindArrival Kind = "arrival"
	// KindTransfer: a customer finished at From and joined To's queue.
	KindTransfer Kind = "transfer"
	// KindExit: a customer finished at From and left the network.
	KindExit Kind = "exit"
	// KindServiceStart: a customer began service at Station on Point.
	KindServiceStart Kind = "service_start"
)

// OutsideNetwork is the station number used for the network's entry and exit.
const OutsideNetwork = 0

// Notification is one immutable record of something that happened in a run.
// Arrival, transfer and exit records fill From/To; service-start records fill
// Station/Point.
type Notification struct {
	Kind       Kind    `json:"kind"`
	Time       float64 `json:"time"`
	CustomerID uint64  `json:"customer_id"`
	Class      string  `json:"class"`
	From       int     `json:"from"`
	To         int     `json:"to"`
	Station    int     `json:"station,omitempty"`
	Point      int     `json:"point,omitempty"`
}

func (n Notification) String() string {
	switch n.Kind {
	case KindServiceStart:
		return fmt.Sprintf("[%10.4f] customer %d (%s) starts service at station %d point %d",
			n.Time, n.CustomerID, n.Class, n.Station, n.Point)
	case KindExit:
		return fmt.Sprintf("[%10.4f] customer %d (%s) leaves station %d and exits",
			n.Time, n.CustomerID, n.Class, n.From)
	default:
		return fmt.Sprintf("[%10.4f] customer %d (%s) %s %d -> %d",
			n.Time, n.CustomerID, n.Class, n.Kind, n.From, n.To)
	}
}
