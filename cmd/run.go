package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/hospital-sim/hospital-sim/sim"
	"github.com/hospital-sim/hospital-sim/sim/record"
	"github.com/hospital-sim/hospital-sim/sim/trace"
)

// runOptions are the output settings of one run; they never affect the
// simulation itself.
type runOptions struct {
	TraceLevel  string // none or events
	RecordPath  string // SQLite database receiving the run; empty disables recording
	ResultsPath string // JSON results file; empty disables it
}

var runOpts runOptions

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the hospital simulation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(v)
		if err != nil {
			return err
		}
		if !trace.IsValidTraceLevel(runOpts.TraceLevel) {
			return fmt.Errorf("invalid trace level %q (want none or events)", runOpts.TraceLevel)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runSimulation(ctx, cfg, runOpts, cmd.OutOrStdout())
	},
}

// runSimulation runs one simulation with cfg and writes the requested outputs.
// Notifications are printed to w while the run progresses when the trace
// level is events; the results table always follows.
func runSimulation(ctx context.Context, cfg sim.Config, opts runOptions, w io.Writer) (err error) {
	observers := []sim.Option{sim.WithObserver(trace.NewLogObserver())}

	var (
		stream  *trace.Stream
		printed chan struct{}
	)
	if trace.TraceLevel(opts.TraceLevel) == trace.TraceLevelEvents {
		stream = trace.NewStream()
		printed = make(chan struct{})
		go func() {
			defer close(printed)
			for n := range stream.C() {
				fmt.Fprintln(w, n)
			}
		}()
		observers = append(observers, sim.WithObserver(stream))
	}
	drain := func() {
		if stream != nil {
			stream.Close()
			<-printed
		}
	}

	var rec *record.SQLiteRecorder
	if opts.RecordPath != "" {
		rec = record.NewSQLiteRecorder(opts.RecordPath)
		if err := rec.Init(); err != nil {
			drain()
			_ = rec.Close()
			return err
		}
		defer func() {
			if cerr := rec.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		observers = append(observers, sim.WithObserver(rec))
	}

	engine, err := sim.NewEngine(cfg, observers...)
	if err != nil {
		drain()
		return err
	}

	logrus.Infof("starting simulation: horizon=%.2f, seed=%d, delay=%v", cfg.Horizon, cfg.Seed, cfg.Delay)
	startTime := time.Now()
	res, err := engine.Run(ctx)
	drain()
	if err != nil {
		return err
	}
	logrus.Infof("simulation finished in %v", time.Since(startTime))

	res.Print(w)
	if opts.ResultsPath != "" {
		if err := res.SaveResults(opts.ResultsPath); err != nil {
			return err
		}
	}
	if rec != nil {
		if err := rec.WriteResults(cfg, res); err != nil {
			return err
		}
		fmt.Fprintf(w, "Recorded run %s to %s\n", rec.RunID(), opts.RecordPath)
	}
	return nil
}

func init() {
	runCmd.Flags().StringVar(&runOpts.TraceLevel, "trace", string(trace.TraceLevelNone), "Notification output (none, events)")
	runCmd.Flags().StringVar(&runOpts.RecordPath, "record", "", "Record the run to this SQLite database")
	runCmd.Flags().StringVar(&runOpts.ResultsPath, "results", "", "Write the results as JSON to this file")
}
