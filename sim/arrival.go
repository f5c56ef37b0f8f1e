package sim

import "github.com/sirupsen/logrus"

// ArrivalProcess keeps exactly one future arrival pending.
// GenerateNext is called once when a run starts and once every time an
// arrival event is processed, never otherwise.
type ArrivalProcess struct {
	interarrival Distribution
	events       *EventList
}

// NewArrivalProcess creates an ArrivalProcess drawing gaps from interarrival.
// Panics if interarrival is nil.
func NewArrivalProcess(interarrival Distribution, events *EventList) *ArrivalProcess {
	if interarrival == nil {
		panic("NewArrivalProcess: interarrival distribution must not be nil")
	}
	return &ArrivalProcess{interarrival: interarrival, events: events}
}

// GenerateNext schedules the next arrival at now plus a sampled gap and
// returns the scheduled event.
func (a *ArrivalProcess) GenerateNext(now float64) Event {
	ev := Event{Time: now + a.interarrival.Sample(), Kind: EventArrival}
	a.events.Schedule(ev)
	logrus.Debugf("next arrival scheduled at %.4f", ev.Time)
	return ev
}
