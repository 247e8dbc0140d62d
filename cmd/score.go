package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alesfias96/student-performance-ai/internal/config"
	"github.com/alesfias96/student-performance-ai/internal/pipeline"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score an answers CSV against an item bank",
	Long: `Read the item bank and answers CSV files, score every student and write
topic scores, overall summaries, the error matrix, recommendations and
coverage gaps into --out. Malformed answer rows are reported and skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		answersPath, _ := cmd.Flags().GetString("answers")
		rep, err := scoreFiles(cmd, cfg, log)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		paths, err := writeProcessed(out, rep)
		if err != nil {
			return err
		}
		printPaths(cmd, paths)

		if save, _ := cmd.Flags().GetBool("save"); save {
			if err := saveRun(cmd, rep, answersPath, nil); err != nil {
				return err
			}
		}

		student, _ := cmd.Flags().GetString("student")
		return printRun(cmd, rep, student)
	},
}

func init() {
	addInputFlags(scoreCmd)
	scoreCmd.Flags().String("out", "data/processed", "Output directory")
	scoreCmd.Flags().Bool("save", false, "Record the run in the history database")
	scoreCmd.Flags().String("student", "", "Also render this student's profile")
	scoreCmd.Flags().Int("width", 0, "Report width (default: terminal width)")
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("bank", "data/raw/questions_bank.csv", "Item bank CSV")
	cmd.Flags().String("answers", "data/raw/student_answers.csv", "Answers CSV")
}

// scoreFiles runs the pipeline over --bank and --answers.
func scoreFiles(cmd *cobra.Command, cfg config.Config, log *zap.Logger) (*pipeline.Report, error) {
	bankPath, _ := cmd.Flags().GetString("bank")
	answersPath, _ := cmd.Flags().GetString("answers")

	bank, err := readBankFile(bankPath)
	if err != nil {
		return nil, err
	}
	raws, err := readAnswersFile(answersPath)
	if err != nil {
		return nil, err
	}

	p, err := pipeline.New(cfg, bank, log)
	if err != nil {
		return nil, err
	}
	return p.Run(cmd.Context(), raws)
}
