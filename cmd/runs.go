package cmd

import (
	"errors"
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/alesfias96/student-performance-ai/internal/report"
	"github.com/alesfias96/student-performance-ai/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		since, _ := cmd.Flags().GetDuration("since")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		runs, err := s.RunRepo().List(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query runs: %w", err)
		}
		lipgloss.Fprintln(cmd.OutOrStdout(), report.Runs(runs))
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a recorded run's issues and recommendations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		rec, err := s.RunRepo().Get(cmd.Context(), args[0])
		if errors.Is(err, store.ErrRunNotFound) {
			return fmt.Errorf("run %s not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}

		w := cmd.OutOrStdout()
		r := rec.Run
		fmt.Fprintf(w, "Run:       #%d %s\n", r.Sequence, r.ID)
		fmt.Fprintf(w, "Started:   %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Source:    %s\n", r.Source)
		if r.Seed != nil {
			fmt.Fprintf(w, "Seed:      %d\n", *r.Seed)
		}
		fmt.Fprintf(w, "Students:  %d\n", r.Students)
		fmt.Fprintf(w, "Records:   %d (%d rejected, %d excluded, %d repaired)\n", r.Records, r.Rejected, r.Excluded, r.Repaired)
		fmt.Fprintf(w, "Gaps:      %d\n", r.Gaps)
		if issues := report.Issues(r.Issues); issues != "" {
			lipgloss.Fprintln(w, issues)
		}

		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-16s  %4s  %-22s  %8s  %5s\n", "Student", "Rank", "Topic", "Priority", "Score")
		for _, rc := range rec.Recommendations {
			fmt.Fprintf(w, "%-16s  %4d  %-22s  %8d  %5.2f\n", rc.StudentID, rc.Rank, rc.Topic, rc.Priority, rc.Score)
		}
		return nil
	},
}

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the most recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetInt("keep")
		if keep < 0 {
			return fmt.Errorf("--keep must be >= 0")
		}
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.RunRepo().Prune(cmd.Context(), keep); err != nil {
			return fmt.Errorf("prune runs: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Kept the %d most recent runs.\n", keep)
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 = all)")
	runsCmd.Flags().Duration("since", 0, "Only runs started within this duration (e.g. 168h)")
	runsPruneCmd.Flags().Int("keep", 10, "Number of recent runs to keep")

	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsPruneCmd)
}
