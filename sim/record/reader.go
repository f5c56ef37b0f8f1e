package record

import (
	"database/sql"
	"fmt"

	"github.com/hospital-sim/hospital-sim/sim"
	"github.com/hospital-sim/hospital-sim/sim/trace"
)

// Run is the summary row of one recorded run.
type Run struct {
	ID                string
	CreatedAt         string
	Seed              int64
	Horizon           float64
	EndTime           float64
	Cycles            int
	Arrived           int
	Departed          int
	AvgWaitingTime    float64
	WaitingTimeStdDev float64
	Config            string // YAML
}

// Reader reads runs back from a database written by SQLiteRecorder.
type Reader struct {
	*sql.DB

	filename string
}

// Open connects to an existing recording.
func Open(filename string) (*Reader, error) {
	if !Exists(filename) {
		return nil, fmt.Errorf("recording %s does not exist", filename)
	}
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}
	return &Reader{DB: db, filename: filename}, nil
}

// ListRuns returns every completed run in creation order.
func (r *Reader) ListRuns() ([]Run, error) {
	rows, err := r.Query(`SELECT run_id, created_at, seed, horizon, end_time, cycles,
		arrived, departed, avg_waiting_time, waiting_time_std_dev, config
		FROM runs ORDER BY created_at, run_id`)
	if err != nil {
		return nil, fmt.Errorf("listing runs in %s: %w", r.filename, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		err := rows.Scan(&run.ID, &run.CreatedAt, &run.Seed, &run.Horizon, &run.EndTime, &run.Cycles,
			&run.Arrived, &run.Departed, &run.AvgWaitingTime, &run.WaitingTimeStdDev, &run.Config)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Notifications returns the notification stream of one run in emission order.
func (r *Reader) Notifications(runID string) ([]trace.Notification, error) {
	rows, err := r.Query(`SELECT kind, time, customer_id, class, from_station, to_station, station, point
		FROM notifications WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("reading notifications of %s: %w", runID, err)
	}
	defer rows.Close()

	var ns []trace.Notification
	for rows.Next() {
		var n trace.Notification
		var kind string
		var customer int64
		if err := rows.Scan(&kind, &n.Time, &customer, &n.Class, &n.From, &n.To, &n.Station, &n.Point); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.Kind = trace.Kind(kind)
		n.CustomerID = uint64(customer)
		ns = append(ns, n)
	}
	return ns, rows.Err()
}

// PointStats returns the per-point statistics of one run in station order.
func (r *Reader) PointStats(runID string) ([]sim.PointStats, error) {
	rows, err := r.Query(`SELECT station, station_name, point, customers_served, busy_time,
		mean_service_time, utilization
		FROM point_stats WHERE run_id = ? ORDER BY station, point`, runID)
	if err != nil {
		return nil, fmt.Errorf("reading point stats of %s: %w", runID, err)
	}
	defer rows.Close()

	var stats []sim.PointStats
	for rows.Next() {
		var p sim.PointStats
		var station int
		err := rows.Scan(&station, &p.StationName, &p.Point, &p.CustomersServed, &p.BusyTime,
			&p.MeanServiceTime, &p.Utilization)
		if err != nil {
			return nil, fmt.Errorf("scanning point stats: %w", err)
		}
		p.Station = sim.StationID(station)
		stats = append(stats, p)
	}
	return stats, rows.Err()
}
