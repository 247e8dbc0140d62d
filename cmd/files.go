package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/itembank"
	"github.com/alesfias96/student-performance-ai/internal/pipeline"
	"github.com/alesfias96/student-performance-ai/internal/report"
	"github.com/alesfias96/student-performance-ai/internal/tabular"
)

func readBankFile(path string) (*itembank.Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bank: %w", err)
	}
	defer f.Close()

	qs, err := tabular.ReadBank(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	bank, err := itembank.New(qs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bank, nil
}

func readAnswersFile(path string) ([]answer.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open answers: %w", err)
	}
	defer f.Close()

	raws, err := tabular.ReadAnswers(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raws, nil
}

// writeFile creates path and streams fn's output into it.
func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := fn(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeDataset writes the raw bank and answers files into dir.
func writeDataset(dir string, bank *itembank.Bank, records []answer.Record) ([]string, error) {
	if err := mkdirOut(dir); err != nil {
		return nil, err
	}
	bankPath := filepath.Join(dir, tabular.BankFile)
	if err := writeFile(bankPath, func(w io.Writer) error { return tabular.WriteBank(w, bank) }); err != nil {
		return nil, err
	}
	answersPath := filepath.Join(dir, tabular.AnswersFile)
	if err := writeFile(answersPath, func(w io.Writer) error { return tabular.WriteAnswers(w, records) }); err != nil {
		return nil, err
	}
	return []string{bankPath, answersPath}, nil
}

// writeProcessed writes the scored outputs of a run into dir.
func writeProcessed(dir string, rep *pipeline.Report) ([]string, error) {
	if err := mkdirOut(dir); err != nil {
		return nil, err
	}
	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{tabular.TopicScoresFile, func(w io.Writer) error { return tabular.WriteTopicScores(w, rep.Scores.Topics) }},
		{tabular.SummaryFile, func(w io.Writer) error { return tabular.WriteSummaries(w, rep.Profiles) }},
		{tabular.ErrorMatrixFile, func(w io.Writer) error { return tabular.WriteErrorMatrix(w, rep.Scores.ErrorMatrix()) }},
		{tabular.RecommendationsFile, func(w io.Writer) error { return tabular.WriteRecommendations(w, rep.Recommendations) }},
		{tabular.CoverageFile, func(w io.Writer) error { return tabular.WriteCoverage(w, rep.Scores.Gaps) }},
	}

	var paths []string
	for _, o := range outputs {
		p := filepath.Join(dir, o.name)
		if err := writeFile(p, o.write); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// termWidth returns --width, else the stdout terminal width, else the
// report default.
func termWidth(cmd *cobra.Command) int {
	if w, _ := cmd.Flags().GetInt("width"); w > 0 {
		return w
	}
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return min(w, 120)
	}
	return report.DefaultWidth
}
