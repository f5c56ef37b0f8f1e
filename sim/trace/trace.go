package trace

import "github.com/sirupsen/logrus"

// TraceLevel controls whether notifications are printed by the CLI.
type TraceLevel string

const (
	// TraceLevelNone disables printing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents prints every notification as it is emitted.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// Observer receives notifications in emission order.
// Observe is called synchronously from the simulation loop and must not block.
type Observer interface {
	Observe(n Notification)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(n Notification)

// Observe calls f(n).
func (f ObserverFunc) Observe(n Notification) { f(n) }

// SimulationTrace collects every notification of a run in memory.
type SimulationTrace struct {
	Notifications []Notification
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace() *SimulationTrace {
	return &SimulationTrace{Notifications: make([]Notification, 0)}
}

// Observe appends a notification.
func (st *SimulationTrace) Observe(n Notification) {
	st.Notifications = append(st.Notifications, n)
}

// Reset starts a fresh record list. Slices returned earlier stay intact.
func (st *SimulationTrace) Reset() {
	st.Notifications = make([]Notification, 0)
}

// LogObserver writes each notification as a structured debug entry.
type LogObserver struct {
	Logger logrus.FieldLogger
}

// NewLogObserver creates a LogObserver on the standard logrus logger.
func NewLogObserver() *LogObserver {
	return &LogObserver{Logger: logrus.StandardLogger()}
}

// Observe logs n at debug level.
func (o *LogObserver) Observe(n Notification) {
	fields := logrus.Fields{
		"kind":     n.Kind,
		"time":     n.Time,
		"customer": n.CustomerID,
		"class":    n.Class,
	}
	if n.Kind == KindServiceStart {
		fields["station"] = n.Station
		fields["point"] = n.Point
	} else {
		fields["from"] = n.From
		fields["to"] = n.To
	}
	o.Logger.WithFields(fields).Debug("notification")
}
