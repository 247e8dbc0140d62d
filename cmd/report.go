package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/alesfias96/student-performance-ai/internal/pipeline"
	"github.com/alesfias96/student-performance-ai/internal/report"
	"github.com/alesfias96/student-performance-ai/internal/simulate"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render one student's profile and recommendations",
	Long: `Score the input and render one student's topic profile, coverage gaps
and prioritized recommendations. Without --student the first student is
shown. --simulated scores a synthetic cohort instead of CSV files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		var rep *pipeline.Report
		if simulated, _ := cmd.Flags().GetBool("simulated"); simulated {
			cfg = cohortConfig(cmd, cfg)
			bank, ds, err := simulate.Generate(cfg.Simulation)
			if err != nil {
				return err
			}
			p, err := pipeline.New(cfg, bank, log)
			if err != nil {
				return err
			}
			rep, err = p.RunRecords(cmd.Context(), ds.Records)
			if err != nil {
				return err
			}
		} else {
			rep, err = scoreFiles(cmd, cfg, log)
			if err != nil {
				return err
			}
		}

		student, _ := cmd.Flags().GetString("student")
		if student == "" {
			if len(rep.Profiles) == 0 {
				return fmt.Errorf("no student has scored answers")
			}
			student = rep.Profiles[0].Summary.StudentID
		}
		sp, ok := rep.Profile(student)
		if !ok {
			return fmt.Errorf("student %q has no scored answers", student)
		}

		w := cmd.OutOrStdout()
		lipgloss.Fprintln(w, report.Student(sp, rep.RecommendationsFor(student), termWidth(cmd)))

		if history, _ := cmd.Flags().GetInt("history"); history > 0 {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			runs, err := s.RunRepo().StudentHistory(cmd.Context(), student, history)
			if err != nil {
				return fmt.Errorf("query history: %w", err)
			}
			lipgloss.Fprintln(w, report.History(student, runs))
		}
		return nil
	},
}

func init() {
	addInputFlags(reportCmd)
	addCohortFlags(reportCmd)
	reportCmd.Flags().String("student", "", "Student ID (default: first student)")
	reportCmd.Flags().Bool("simulated", false, "Use a synthetic cohort instead of --bank/--answers")
	reportCmd.Flags().Int("history", 0, "Also show the student's last N stored runs")
	reportCmd.Flags().Int("width", 0, "Report width (default: terminal width)")
}
