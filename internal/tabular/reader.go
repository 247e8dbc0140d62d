package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/itembank"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing required column")

// RowError locates a structural failure in one CSV row.
type RowError struct {
	Kind string // "bank", "answers" or "sheet"
	Row  int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.Kind, e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// header maps column names to positions.
type header map[string]int

func readHeader(r *csv.Reader, required ...string) (header, error) {
	names, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file, expected %s", ErrMissingColumn, strings.Join(required, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	h := make(header, len(names))
	for i, n := range names {
		h[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(n, "\ufeff")))] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := h[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return h, nil
}

// get returns the trimmed cell of an optional or required column.
func (h header) get(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// ReadBank parses an item bank CSV: question_id, topic, difficulty and the
// optional test_id, subskill. Any malformed row fails the whole read.
func ReadBank(r io.Reader) ([]itembank.Question, error) {
	cr := newReader(r)
	h, err := readHeader(cr, "question_id", "topic", "difficulty")
	if err != nil {
		return nil, err
	}

	var out []itembank.Question
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowError{Kind: "bank", Row: line, Err: err}
		}

		raw := h.get(row, "difficulty")
		d, err := strconv.Atoi(raw)
		if err != nil {
			f, ferr := strconv.ParseFloat(raw, 64)
			if ferr != nil {
				return nil, &RowError{Kind: "bank", Row: line, Err: fmt.Errorf("difficulty %q is not a number: %w", raw, ferr)}
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, &RowError{Kind: "bank", Row: line, Err: fmt.Errorf("difficulty %q is not finite", raw)}
			}
			f = math.Max(itembank.MinDifficulty, math.Min(itembank.MaxDifficulty, f))
			d = int(math.Round(f))
		}

		out = append(out, itembank.Question{
			ID:         h.get(row, "question_id"),
			Topic:      itembank.Topic(h.get(row, "topic")),
			Difficulty: d,
			TestID:     h.get(row, "test_id"),
			Subskill:   h.get(row, "subskill"),
		})
	}
	return out, nil
}

// ReadAnswers parses an answers CSV into raw rows for answer.Ingest.
// Only student_id, question_id and is_correct are required; cell-level
// problems are left to ingestion.
func ReadAnswers(r io.Reader) ([]answer.RawRecord, error) {
	cr := newReader(r)
	h, err := readHeader(cr, "student_id", "question_id", "is_correct")
	if err != nil {
		return nil, err
	}

	var out []answer.RawRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowError{Kind: "answers", Row: line, Err: err}
		}
		out = append(out, answer.RawRecord{
			Row:         line,
			StudentID:   h.get(row, "student_id"),
			QuestionID:  h.get(row, "question_id"),
			IsCorrect:   h.get(row, "is_correct"),
			ErrorType:   h.get(row, "error_type"),
			TimeSeconds: h.get(row, "time_seconds"),
			Confidence:  h.get(row, "confidence"),
		})
	}
	return out, nil
}

// ReadSheet parses a hand-marked answer sheet for one student. It needs
// question_id and is_correct; the student ID comes from the caller.
func ReadSheet(r io.Reader, studentID string) ([]answer.RawRecord, error) {
	cr := newReader(r)
	h, err := readHeader(cr, "question_id", "is_correct")
	if err != nil {
		return nil, err
	}

	var out []answer.RawRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowError{Kind: "sheet", Row: line, Err: err}
		}
		out = append(out, answer.RawRecord{
			Row:         line,
			StudentID:   studentID,
			QuestionID:  h.get(row, "question_id"),
			IsCorrect:   h.get(row, "is_correct"),
			ErrorType:   h.get(row, "error_type"),
			TimeSeconds: h.get(row, "time_seconds"),
			Confidence:  h.get(row, "confidence"),
		})
	}
	return out, nil
}
