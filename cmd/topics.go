package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alesfias96/student-performance-ai/internal/itembank"
	"github.com/alesfias96/student-performance-ai/internal/simulate"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List item bank topics with question counts and difficulty",
	RunE: func(cmd *cobra.Command, args []string) error {
		var bank *itembank.Bank
		if simulated, _ := cmd.Flags().GetBool("simulated"); simulated {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg = cohortConfig(cmd, cfg)
			bank, err = simulate.GenerateBank(cfg.Simulation, simulate.NewSource(cfg.Simulation.Seed), itembank.DefaultCatalog())
			if err != nil {
				return err
			}
		} else {
			path, _ := cmd.Flags().GetString("bank")
			var err error
			bank, err = readBankFile(path)
			if err != nil {
				return err
			}
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-24s  %-24s  %9s  %5s  %5s  %6s\n",
			"Topic", "Name", "Questions", "Min", "Max", "Mean")
		fmt.Fprintln(w, strings.Repeat("─", 82))

		for _, st := range bank.Stats() {
			fmt.Fprintf(w, "%-24s  %-24s  %9d  %5d  %5d  %6.2f\n",
				st.Topic, st.Topic.DisplayName(), st.Questions,
				st.MinDifficulty, st.MaxDifficulty, st.MeanDifficulty)
		}

		fmt.Fprintf(w, "\n%d topics, %d questions\n", len(bank.Topics()), bank.Len())
		return nil
	},
}

func init() {
	topicsCmd.Flags().String("bank", "data/raw/questions_bank.csv", "Item bank CSV")
	topicsCmd.Flags().Bool("simulated", false, "Describe the synthetic bank for the configured seed")
	addCohortFlags(topicsCmd)
}
