package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/pipeline"
	"github.com/alesfias96/student-performance-ai/internal/tabular"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Convert a hand-marked answer sheet into the answers CSV",
	Long: `Read a manual answer sheet for one student (question_id, is_correct and
optionally error_type, time_seconds, confidence), check it against the item
bank and write it as answers CSV. Any bad row rejects the whole sheet.
Error labels accept the configured aliases, e.g. segno, concetto.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		sheetPath, _ := cmd.Flags().GetString("sheet")
		student, _ := cmd.Flags().GetString("student")
		bankPath, _ := cmd.Flags().GetString("bank")
		out, _ := cmd.Flags().GetString("out")
		appendOut, _ := cmd.Flags().GetBool("append")

		bank, err := readBankFile(bankPath)
		if err != nil {
			return err
		}
		f, err := os.Open(sheetPath)
		if err != nil {
			return fmt.Errorf("open sheet: %w", err)
		}
		raws, err := tabular.ReadSheet(f, student)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", sheetPath, err)
		}

		p, err := pipeline.New(cfg, bank, log)
		if err != nil {
			return err
		}
		sheet, err := p.IngestSheet(raws)
		if err != nil {
			return err
		}

		records := sheet.Records
		if appendOut {
			existing, err := readExistingAnswers(out)
			if err != nil {
				return err
			}
			records = append(existing, records...)
		}

		if err := mkdirOut(filepath.Dir(out)); err != nil {
			return err
		}
		if err := writeFile(out, func(w io.Writer) error { return tabular.WriteAnswers(w, records) }); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Wrote %d answers for %s to %s\n", len(sheet.Records), student, out)
		if sheet.Repaired > 0 {
			fmt.Fprintf(w, "  %d wrong answers marked none were relabelled %s\n", sheet.Repaired, answer.ErrDistraction)
		}
		if sheet.Defaulted > 0 {
			fmt.Fprintf(w, "  %d rows used default time or confidence\n", sheet.Defaulted)
		}
		return nil
	},
}

// readExistingAnswers loads an answers file for appending. A missing file
// is empty; a file with bad rows is refused so appending never drops data.
func readExistingAnswers(path string) ([]answer.Record, error) {
	raws, err := readAnswersFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ing := answer.Ingest(raws, nil)
	if len(ing.Rejected) > 0 {
		return nil, fmt.Errorf("%s: cannot append, existing file has invalid rows: %w", path, ing.Rejected[0])
	}
	return ing.Records, nil
}

func init() {
	ingestCmd.Flags().String("sheet", "", "Manual answer sheet CSV (required)")
	ingestCmd.Flags().String("student", "", "Student ID for every row (required)")
	ingestCmd.Flags().String("bank", "data/raw/questions_bank.csv", "Item bank CSV")
	ingestCmd.Flags().String("out", "data/raw/student_answers.csv", "Answers CSV to write")
	ingestCmd.Flags().Bool("append", false, "Append to the existing answers CSV instead of replacing it")
	_ = ingestCmd.MarkFlagRequired("sheet")
	_ = ingestCmd.MarkFlagRequired("student")
}
