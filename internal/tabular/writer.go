package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/itembank"
	"github.com/alesfias96/student-performance-ai/internal/profile"
	"github.com/alesfias96/student-performance-ai/internal/recommend"
	"github.com/alesfias96/student-performance-ai/internal/scoring"
)

// Output file names used by the CLI.
const (
	BankFile            = "questions_bank.csv"
	AnswersFile         = "student_answers.csv"
	TopicScoresFile     = "student_topic_scores.csv"
	SummaryFile         = "student_overall_summary.csv"
	ErrorMatrixFile     = "student_topic_error_matrix.csv"
	RecommendationsFile = "student_recommendations.csv"
	CoverageFile        = "student_coverage_gaps.csv"
)

// Floats are written with fixed precision so identical runs produce
// identical bytes.
func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func writeAll(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteBank writes the item bank in insertion order.
func WriteBank(w io.Writer, bank *itembank.Bank) error {
	qs := bank.All()
	rows := make([][]string, 0, len(qs))
	for _, q := range qs {
		rows = append(rows, []string{q.ID, q.TestID, string(q.Topic), q.Subskill, strconv.Itoa(q.Difficulty)})
	}
	return writeAll(w, []string{"question_id", "test_id", "topic", "subskill", "difficulty"}, rows)
}

// WriteAnswers writes validated records, is_correct as 0/1.
func WriteAnswers(w io.Writer, records []answer.Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		correct := "0"
		if r.Correct {
			correct = "1"
		}
		rows = append(rows, []string{
			r.StudentID,
			r.QuestionID,
			correct,
			string(r.ErrorType),
			strconv.FormatFloat(r.TimeSeconds, 'f', 2, 64),
			strconv.Itoa(r.Confidence),
		})
	}
	return writeAll(w, []string{"student_id", "question_id", "is_correct", "error_type", "time_seconds", "confidence"}, rows)
}

// WriteTopicScores writes one row per (student, topic) with a share
// column for every error category.
func WriteTopicScores(w io.Writer, scores []scoring.TopicScore) error {
	headers := []string{"student_id", "topic", "accuracy", "mean_time", "mean_confidence", "attempt_count"}
	for _, e := range answer.AllErrorTypes() {
		headers = append(headers, "share_"+string(e))
	}

	rows := make([][]string, 0, len(scores))
	for _, ts := range scores {
		row := []string{ts.StudentID, string(ts.Topic), ff(ts.Accuracy), ff(ts.MeanTime), ff(ts.MeanConfidence), strconv.Itoa(ts.Attempts)}
		for _, e := range answer.AllErrorTypes() {
			row = append(row, ff(ts.ErrorShare(e)))
		}
		rows = append(rows, row)
	}
	return writeAll(w, headers, rows)
}

// WriteSummaries writes the overall summary of each profile.
func WriteSummaries(w io.Writer, profiles []profile.StudentProfile) error {
	rows := make([][]string, 0, len(profiles))
	for _, sp := range profiles {
		rows = append(rows, []string{
			sp.Summary.StudentID,
			ff(sp.Summary.Accuracy),
			ff(sp.Summary.MeanTime),
			string(sp.Level),
			string(sp.Label),
		})
	}
	return writeAll(w, []string{"student_id", "overall_accuracy", "overall_mean_time", "overall_level", "overall_label"}, rows)
}

// WriteRecommendations writes recommendations with numeric priority.
func WriteRecommendations(w io.Writer, recs []recommend.Recommendation) error {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			r.StudentID,
			string(r.Topic),
			strconv.Itoa(int(r.Priority)),
			r.Justification,
			r.SuggestedAction(),
		})
	}
	return writeAll(w, []string{"student_id", "topic", "priority", "justification", "suggested_action"}, rows)
}

// WriteErrorMatrix writes the long-format error shares.
func WriteErrorMatrix(w io.Writer, rows []scoring.ErrorShareRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.StudentID, string(r.Topic), string(r.ErrorType), strconv.Itoa(r.Count), ff(r.Share)})
	}
	return writeAll(w, []string{"student_id", "topic", "error_type", "count", "share"}, out)
}

// WriteCoverage writes one insufficient-data marker per gap.
func WriteCoverage(w io.Writer, gaps []scoring.Gap) error {
	rows := make([][]string, 0, len(gaps))
	for _, g := range gaps {
		rows = append(rows, []string{g.StudentID, string(g.Topic), scoring.GapStatus})
	}
	return writeAll(w, []string{"student_id", "topic", "status"}, rows)
}
