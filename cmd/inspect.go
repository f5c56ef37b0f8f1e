package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/hospital-sim/hospital-sim/sim/record"
	"github.com/hospital-sim/hospital-sim/sim/trace"
)

var inspectRun string // run ID to detail; empty lists every run

// inspectCmd summarizes a database written by run --record.
var inspectCmd = &cobra.Command{
	Use:   "inspect <database>",
	Short: "Summarize recorded runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspectRecording(cmd.OutOrStdout(), args[0], inspectRun)
	},
}

func inspectRecording(w io.Writer, path, runID string) error {
	r, err := record.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	runs, err := r.ListRuns()
	if err != nil {
		return err
	}
	if runID == "" {
		fmt.Fprintf(w, "%d run(s) in %s\n", len(runs), path)
		for _, run := range runs {
			fmt.Fprintf(w, "%s  %s  seed=%d horizon=%.2f arrived=%d departed=%d avg_wait=%.4f\n",
				run.ID, run.CreatedAt, run.Seed, run.Horizon, run.Arrived, run.Departed, run.AvgWaitingTime)
		}
		return nil
	}

	var found *record.Run
	for i := range runs {
		if runs[i].ID == runID {
			found = &runs[i]
		}
	}
	if found == nil {
		return fmt.Errorf("no run %s in %s", runID, path)
	}

	ns, err := r.Notifications(runID)
	if err != nil {
		return err
	}
	points, err := r.PointStats(runID)
	if err != nil {
		return err
	}
	s := trace.Summarize(ns)

	fmt.Fprintf(w, "=== Run %s ===\n", found.ID)
	fmt.Fprintf(w, "Recorded at          : %s\n", found.CreatedAt)
	fmt.Fprintf(w, "Ended at             : %.2f (horizon %.2f, %d cycles)\n", found.EndTime, found.Horizon, found.Cycles)
	fmt.Fprintf(w, "Average waiting time : %.4f (std dev %.4f)\n", found.AvgWaitingTime, found.WaitingTimeStdDev)
	fmt.Fprintf(w, "Notifications        : %d (%d arrivals, %d transfers, %d exits, %d service starts)\n",
		s.TotalNotifications, s.Arrivals, s.Transfers, s.Exits, s.ServiceStarts)
	for _, class := range slices.Sorted(maps.Keys(s.ExitsPerClass)) {
		fmt.Fprintf(w, "  exits %-10s: %d\n", class, s.ExitsPerClass[class])
	}
	for _, p := range points {
		fmt.Fprintf(w, "  %s point %d: served %d, utilization %.2f\n", p.StationName, p.Point, p.CustomersServed, p.Utilization)
	}
	fmt.Fprintf(w, "--- configuration ---\n%s", found.Config)
	return nil
}

func init() {
	inspectCmd.Flags().StringVar(&inspectRun, "run", "", "Show details of one run")
}
