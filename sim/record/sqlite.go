// Package record stores simulation runs in a SQLite database: the
// notification stream of each run, its summary and its per-point statistics.
package record

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"
	"gopkg.in/yaml.v3"

	"github.com/hospital-sim/hospital-sim/sim"
	"github.com/hospital-sim/hospital-sim/sim/trace"
)

const defaultBatchSize = 10000

// ErrClosed is returned by a recorder after Close.
var ErrClosed = errors.New("recorder is closed")

// SQLiteRecorder is a trace.Observer that writes notifications to a SQLite
// database in batches. Every recorder gets a fresh run ID, so several runs
// can share one database file.
type SQLiteRecorder struct {
	*sql.DB
	statement *sql.Stmt

	mu        sync.Mutex
	path      string
	runID     string
	seq       int64
	pending   []trace.Notification
	batchSize int
	err       error // first write error, reported by Flush and Close
	closed    bool
}

// NewSQLiteRecorder creates a recorder for the database at path. Buffered
// notifications are flushed when the process exits through atexit.
func NewSQLiteRecorder(path string) *SQLiteRecorder {
	r := &SQLiteRecorder{
		path:      path,
		runID:     xid.New().String(),
		batchSize: defaultBatchSize,
	}

	atexit.Register(func() {
		if err := r.Close(); err != nil {
			logrus.Errorf("closing recorder %s: %v", r.path, err)
		}
	})

	return r
}

// Init opens the database and creates the tables if they do not exist.
func (r *SQLiteRecorder) Init() error {
	db, err := sql.Open("sqlite3", r.path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", r.path, err)
	}
	r.DB = db

	for _, stmt := range schema {
		if _, err := r.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema in %s: %w", r.path, err)
		}
	}

	r.statement, err = r.Prepare(`INSERT INTO notifications
		(run_id, seq, kind, time, customer_id, class, from_station, to_station, station, point)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	logrus.Infof("recording run %s to %s", r.runID, r.path)
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs
	(
		run_id               VARCHAR(20) PRIMARY KEY,
		created_at           VARCHAR(40) NOT NULL,
		seed                 INTEGER     NOT NULL,
		horizon              FLOAT       NOT NULL,
		end_time             FLOAT       NOT NULL,
		cycles               INTEGER     NOT NULL,
		arrived              INTEGER     NOT NULL,
		departed             INTEGER     NOT NULL,
		avg_waiting_time     FLOAT       NOT NULL,
		waiting_time_std_dev FLOAT       NOT NULL,
		config               TEXT        NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS notifications
	(
		run_id       VARCHAR(20) NOT NULL,
		seq          INTEGER     NOT NULL,
		kind         VARCHAR(20) NOT NULL,
		time         FLOAT       NOT NULL,
		customer_id  INTEGER     NOT NULL,
		class        VARCHAR(20) NOT NULL,
		from_station INTEGER     NOT NULL,
		to_station   INTEGER     NOT NULL,
		station      INTEGER     NOT NULL,
		point        INTEGER     NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS notifications_run_index ON notifications (run_id, seq);`,
	`CREATE TABLE IF NOT EXISTS point_stats
	(
		run_id            VARCHAR(20) NOT NULL,
		station           INTEGER     NOT NULL,
		station_name      VARCHAR(20) NOT NULL,
		point             INTEGER     NOT NULL,
		customers_served  INTEGER     NOT NULL,
		busy_time         FLOAT       NOT NULL,
		mean_service_time FLOAT       NOT NULL,
		utilization       FLOAT       NOT NULL
	);`,
}

// RunID returns the identifier under which this recorder writes.
func (r *SQLiteRecorder) RunID() string { return r.runID }

// Observe buffers n and flushes once a full batch is buffered. A write error
// is kept and returned by the next Flush or Close.
func (r *SQLiteRecorder) Observe(n trace.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.err != nil {
		return
	}
	r.pending = append(r.pending, n)
	if len(r.pending) >= r.batchSize {
		r.err = r.flushLocked()
	}
}

// Flush writes every buffered notification in one transaction.
func (r *SQLiteRecorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.err != nil {
		return r.err
	}
	r.err = r.flushLocked()
	return r.err
}

func (r *SQLiteRecorder) flushLocked() error {
	if len(r.pending) == 0 {
		return nil
	}

	tx, err := r.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	stmt := tx.Stmt(r.statement)
	for _, n := range r.pending {
		r.seq++
		_, err := stmt.Exec(r.runID, r.seq, string(n.Kind), n.Time, int64(n.CustomerID), n.Class,
			n.From, n.To, n.Station, n.Point)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting notification %v: %w", n, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing notifications: %w", err)
	}
	logrus.Debugf("recorder %s: flushed %d notifications", r.runID, len(r.pending))
	r.pending = nil
	return nil
}

// WriteResults stores the run summary and per-point statistics of a
// completed run, along with the configuration that produced it.
func (r *SQLiteRecorder) WriteResults(cfg sim.Config, res *sim.Results) error {
	if err := r.Flush(); err != nil {
		return err
	}
	config, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	tx, err := r.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	_, err = tx.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.runID, time.Now().UTC().Format(time.RFC3339), cfg.Seed, res.Horizon, res.EndTime, res.Cycles,
		res.Arrived, res.Departed, res.AvgWaitingTime, res.WaitingTimeStdDev, string(config))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("inserting run %s: %w", r.runID, err)
	}
	for _, p := range res.Points() {
		_, err := tx.Exec(`INSERT INTO point_stats VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.runID, int(p.Station), p.StationName, p.Point, p.CustomersServed, p.BusyTime,
			p.MeanServiceTime, p.Utilization)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting point stats: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", r.runID, err)
	}
	return nil
}

// Close flushes pending notifications and closes the database.
// Calling Close more than once is a no-op.
func (r *SQLiteRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.DB == nil {
		return nil
	}

	err := r.err
	if err == nil {
		err = r.flushLocked()
	}
	if r.statement != nil {
		err = errors.Join(err, r.statement.Close())
	}
	return errors.Join(err, r.DB.Close())
}

// Exists reports whether path names an existing file.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
