// Computes end-of-run statistics: waiting times and per-point utilization.

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/stat"
)

// PointStats summarizes one service point over a run.
type PointStats struct {
	Station         StationID `json:"-"`
	StationName     string    `json:"station"`
	Point           int       `json:"point"`
	CustomersServed int       `json:"customers_served"`
	BusyTime        float64   `json:"busy_time"`         // every sampled duration, may extend past the horizon
	MeanServiceTime float64   `json:"mean_service_time"` // BusyTime / CustomersServed
	Utilization     float64   `json:"utilization"`       // busy time within the horizon / horizon, in [0, 1]
}

// StationStats summarizes one station over a run.
type StationStats struct {
	Station       StationID    `json:"-"`
	Name          string       `json:"name"`
	Servers       int          `json:"servers"`
	MeanQueueWait float64      `json:"mean_queue_wait"`
	StillWaiting  int          `json:"still_waiting"`
	Points        []PointStats `json:"points"`
}

// Results aggregates statistics about a completed run.
type Results struct {
	Horizon           float64        `json:"horizon"`
	EndTime           float64        `json:"end_time"` // clock value when the run stopped, >= Horizon
	Cycles            int            `json:"cycles"`
	Arrived           int            `json:"arrived"`
	Departed          int            `json:"departed"`
	InSystem          int            `json:"in_system"`
	AvgWaitingTime    float64        `json:"avg_waiting_time"` // mean over departed customers
	WaitingTimeStdDev float64        `json:"waiting_time_std_dev"`
	Stations          []StationStats `json:"stations"`
}

// Points returns every point's statistics in station order.
func (r *Results) Points() []PointStats {
	var points []PointStats
	for _, s := range r.Stations {
		points = append(points, s.Points...)
	}
	return points
}

// Station returns the statistics of one station.
func (r *Results) Station(id StationID) StationStats {
	for _, s := range r.Stations {
		if s.Station == id {
			return s
		}
	}
	panic(fmt.Sprintf("Results.Station: no statistics for %v", id))
}

// Print displays the results as a human-readable report.
func (r *Results) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Results ===")
	fmt.Fprintf(w, "Simulation ended at  : %.2f (horizon %.2f, %d cycles)\n", r.EndTime, r.Horizon, r.Cycles)
	fmt.Fprintf(w, "Customers arrived    : %d\n", r.Arrived)
	fmt.Fprintf(w, "Customers departed   : %d\n", r.Departed)
	fmt.Fprintf(w, "Customers in system  : %d\n", r.InSystem)
	fmt.Fprintf(w, "Average waiting time : %.4f (std dev %.4f)\n", r.AvgWaitingTime, r.WaitingTimeStdDev)
	for _, s := range r.Stations {
		fmt.Fprintf(w, "--- %s (%d servers, mean queue wait %.4f, %d waiting) ---\n",
			s.Name, s.Servers, s.MeanQueueWait, s.StillWaiting)
		for _, p := range s.Points {
			fmt.Fprintf(w, "  Service Point %d: total service time %.1f, mean service time %.1f, total customers %d, utilization %.2f\n",
				p.Point, p.BusyTime, p.MeanServiceTime, p.CustomersServed, p.Utilization)
		}
	}
}

// SaveResults writes the results as indented JSON to path.
func (r *Results) SaveResults(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// waitingStats returns mean and sample standard deviation, 0 when undefined.
func waitingStats(waits []float64) (mean, stdDev float64) {
	if len(waits) == 0 {
		return 0, 0
	}
	mean = stat.Mean(waits, nil)
	if len(waits) > 1 {
		stdDev = stat.StdDev(waits, nil)
	}
	return mean, stdDev
}

// utilization is busy time within the horizon divided by the horizon;
// 0 for a zero horizon.
func utilization(p *ServicePoint, horizon float64) float64 {
	if horizon <= 0 {
		return 0
	}
	return p.BusyTimeUntil(horizon) / horizon
}

func (e *Engine) computeResults() *Results {
	horizon := e.config.Horizon
	mean, stdDev := waitingStats(e.waitingTimes)
	r := &Results{
		Horizon:           horizon,
		EndTime:           e.clock.Now(),
		Cycles:            e.cycles,
		Arrived:           e.arrivalsProcessed,
		Departed:          len(e.waitingTimes),
		InSystem:          e.arrivalsProcessed - len(e.waitingTimes),
		AvgWaitingTime:    mean,
		WaitingTimeStdDev: stdDev,
	}
	for _, u := range e.units {
		ss := StationStats{
			Station:       u.Station(),
			Name:          u.Station().String(),
			Servers:       len(u.Points()),
			MeanQueueWait: u.MeanQueueWait(),
			StillWaiting:  u.QueueLen(),
		}
		for _, p := range u.Points() {
			ss.Points = append(ss.Points, PointStats{
				Station:         u.Station(),
				StationName:     u.Station().String(),
				Point:           p.ID(),
				CustomersServed: p.Served(),
				BusyTime:        p.BusyTime(),
				MeanServiceTime: p.MeanServiceTime(),
				Utilization:     utilization(p, horizon),
			})
		}
		r.Stations = append(r.Stations, ss)
	}
	return r
}
