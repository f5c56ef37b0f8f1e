package trace

// TraceSummary aggregates statistics from a list of notifications.
type TraceSummary struct {
	TotalNotifications int
	Arrivals           int
	Transfers          int
	Exits              int
	ServiceStarts      int
	FirstTime          float64
	LastTime           float64
	StartsPerStation   map[int]int // station number → services begun
	ExitsPerClass      map[string]int
}

// Summarize computes aggregate statistics from notifications.
// Safe for nil or empty input (returns zero-value fields).
func Summarize(notifications []Notification) *TraceSummary {
	summary := &TraceSummary{
		StartsPerStation: make(map[int]int),
		ExitsPerClass:    make(map[string]int),
	}
	if len(notifications) == 0 {
		return summary
	}

	summary.TotalNotifications = len(notifications)
	summary.FirstTime = notifications[0].Time
	summary.LastTime = notifications[len(notifications)-1].Time
	for _, n := range notifications {
		switch n.Kind {
		case KindArrival:
			summary.Arrivals++
		case KindTransfer:
			summary.Transfers++
		case KindExit:
			summary.Exits++
			summary.ExitsPerClass[n.Class]++
		case KindServiceStart:
			summary.ServiceStarts++
			summary.StartsPerStation[n.Station]++
		}
	}
	return summary
}
