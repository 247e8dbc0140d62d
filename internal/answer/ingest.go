package answer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawRecord is an answer row as read from an external sheet, before any
// normalization. Empty strings mean the column was absent or blank.
type RawRecord struct {
	Row         int // 1-based data row, for error reports
	StudentID   string
	QuestionID  string
	IsCorrect   string
	ErrorType   string
	TimeSeconds string
	Confidence  string
}

// RecordError describes why a raw row was rejected.
type RecordError struct {
	Row        int
	StudentID  string
	QuestionID string
	Reason     string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("row %d (student %q, question %q): %s", e.Row, e.StudentID, e.QuestionID, e.Reason)
}

// IngestResult holds the accepted records and the per-row issues.
type IngestResult struct {
	Records []Record
	// Rejected rows violated the schema and were dropped.
	Rejected []*RecordError
	// Repaired counts wrong answers labelled none that were relabelled
	// as distraction.
	Repaired int
	// Defaulted counts rows whose time or confidence value was present but
	// unreadable and was replaced by the default. Blank cells are not counted.
	Defaulted int
}

// Ingest normalizes raw rows into Records. A bad row never aborts the batch:
// it is rejected and reported, and the remaining rows are processed.
func Ingest(raws []RawRecord, vocab Vocabulary) IngestResult {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}

	res := IngestResult{Records: make([]Record, 0, len(raws))}
	for _, raw := range raws {
		rec, outcome, err := normalize(raw, vocab)
		if err != nil {
			res.Rejected = append(res.Rejected, err)
			continue
		}
		if outcome.repaired {
			res.Repaired++
		}
		if outcome.defaulted {
			res.Defaulted++
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

type normalizeOutcome struct {
	repaired  bool
	defaulted bool
}

func normalize(raw RawRecord, vocab Vocabulary) (Record, normalizeOutcome, *RecordError) {
	var out normalizeOutcome
	studentID := strings.TrimSpace(raw.StudentID)
	questionID := strings.TrimSpace(raw.QuestionID)

	reject := func(format string, args ...any) (Record, normalizeOutcome, *RecordError) {
		return Record{}, out, &RecordError{
			Row:        raw.Row,
			StudentID:  studentID,
			QuestionID: questionID,
			Reason:     fmt.Sprintf(format, args...),
		}
	}

	if studentID == "" {
		return reject("missing student_id")
	}
	if questionID == "" {
		return reject("missing question_id")
	}

	correct, ok := ParseBool(raw.IsCorrect)
	if !ok {
		return reject("is_correct must be 0/1, true/false or yes/no, got %q", raw.IsCorrect)
	}

	errType, ok := vocab.Parse(raw.ErrorType)
	if !ok {
		return reject("unknown error_type %q", raw.ErrorType)
	}

	switch {
	case correct && errType != ErrNone:
		return reject("is_correct=1 requires error_type none, got %q", errType)
	case !correct && errType == ErrNone:
		errType = ErrDistraction
		out.repaired = true
	}

	timeSeconds := DefaultTimeSeconds
	if s := strings.TrimSpace(raw.TimeSeconds); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		switch {
		case err != nil || math.IsNaN(v) || math.IsInf(v, 0):
			out.defaulted = true
		case v <= 0:
			return reject("time_seconds must be > 0, got %s", s)
		default:
			timeSeconds = v
		}
	}

	confidence := DefaultConfidence
	if s := strings.TrimSpace(raw.Confidence); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) {
			out.defaulted = true
		} else {
			v = math.Max(MinConfidence, math.Min(MaxConfidence, v))
			confidence = int(math.Round(v))
		}
	}

	return Record{
		StudentID:   studentID,
		QuestionID:  questionID,
		Correct:     correct,
		ErrorType:   errType,
		TimeSeconds: timeSeconds,
		Confidence:  confidence,
	}, out, nil
}

// ParseBool accepts 0/1, true/false and yes/no in any case.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	default:
		return false, false
	}
}

// ClampConfidence bounds v to the confidence scale.
func ClampConfidence(v int) int {
	if v < MinConfidence {
		return MinConfidence
	}
	if v > MaxConfidence {
		return MaxConfidence
	}
	return v
}
