package cmd

import (
	"fmt"
	"path/filepath"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alesfias96/student-performance-ai/internal/config"
	"github.com/alesfias96/student-performance-ai/internal/pipeline"
	"github.com/alesfias96/student-performance-ai/internal/report"
	"github.com/alesfias96/student-performance-ai/internal/simulate"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a synthetic cohort and score it",
	Long: `Generate a seeded synthetic item bank and cohort in memory, score every
student and print the class overview. With --out the raw and processed
CSV files are written under <out>/raw and <out>/processed.`,
	RunE: runSimulated,
}

func init() {
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	addCohortFlags(cmd)
	cmd.Flags().String("out", "", "Directory for raw and processed CSV output")
	cmd.Flags().Bool("save", false, "Record the run in the history database")
	cmd.Flags().String("student", "", "Also render this student's profile")
	cmd.Flags().Int("width", 0, "Report width (default: terminal width)")
}

func addCohortFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64("seed", 0, "Random seed (overrides config and STUDENTPERF_SEED)")
	cmd.Flags().Int("students", 0, "Number of synthetic students (overrides config)")
}

// cohortConfig applies --seed and --students over the loaded config.
func cohortConfig(cmd *cobra.Command, cfg config.Config) config.Config {
	if cmd.Flags().Changed("seed") {
		cfg.Simulation.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	if cmd.Flags().Changed("students") {
		cfg.Simulation.Students, _ = cmd.Flags().GetInt("students")
	}
	return cfg
}

func runSimulated(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()
	cfg = cohortConfig(cmd, cfg)

	bank, ds, err := simulate.Generate(cfg.Simulation)
	if err != nil {
		return err
	}
	log.Info("generated cohort",
		zap.Uint64("seed", cfg.Simulation.Seed),
		zap.Int("questions", bank.Len()),
		zap.Int("students", len(ds.Students)),
		zap.Int("records", len(ds.Records)))

	p, err := pipeline.New(cfg, bank, log)
	if err != nil {
		return err
	}
	rep, err := p.RunRecords(cmd.Context(), ds.Records)
	if err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		raw, err := writeDataset(filepath.Join(out, "raw"), bank, ds.Records)
		if err != nil {
			return err
		}
		processed, err := writeProcessed(filepath.Join(out, "processed"), rep)
		if err != nil {
			return err
		}
		printPaths(cmd, append(raw, processed...))
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		seed := cfg.Simulation.Seed
		if err := saveRun(cmd, rep, "simulated", &seed); err != nil {
			return err
		}
	}

	student, _ := cmd.Flags().GetString("student")
	return printRun(cmd, rep, student)
}

// printRun shows the class overview, any issues and optionally one
// student's card.
func printRun(cmd *cobra.Command, rep *pipeline.Report, studentID string) error {
	w := cmd.OutOrStdout()
	lipgloss.Fprintln(w, report.Class(rep.Class))
	if issues := report.Issues(rep.Issues()); issues != "" {
		lipgloss.Fprintln(w, issues)
	}
	if studentID == "" {
		return nil
	}
	sp, ok := rep.Profile(studentID)
	if !ok {
		return fmt.Errorf("student %q has no scored answers in this run", studentID)
	}
	lipgloss.Fprintln(w, report.Student(sp, rep.RecommendationsFor(studentID), termWidth(cmd)))
	return nil
}

func printPaths(cmd *cobra.Command, paths []string) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Wrote:")
	for _, p := range paths {
		fmt.Fprintf(w, "  %s\n", p)
	}
}

func saveRun(cmd *cobra.Command, rep *pipeline.Report, source string, seed *uint64) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	rec := rep.RunRecord(source, seed)
	if err := s.RunRepo().Save(cmd.Context(), rec); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved run #%d (%s)\n", rec.Run.Sequence, rec.Run.ID)
	return nil
}
