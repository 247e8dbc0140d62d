package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alesfias96/student-performance-ai/internal/simulate"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic item bank and answers CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		out, _ := cmd.Flags().GetString("out")
		paths, err := writeDataset(out, bank, ds.Records)
		if err != nil {
			return err
		}
		log.Info("generated dataset",
			zap.Uint64("seed", cfg.Simulation.Seed),
			zap.Int("students", len(ds.Students)),
			zap.Int("records", len(ds.Records)))
		printPaths(cmd, paths)
		return nil
	},
}

func init() {
	addCohortFlags(generateCmd)
	generateCmd.Flags().String("out", "data/raw", "Output directory")
}
