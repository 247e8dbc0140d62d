package scoring

import (
	"errors"
	"fmt"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/itembank"
)

var (
	// ErrUnknownQuestion marks a record whose question is not in the bank.
	ErrUnknownQuestion = errors.New("unknown question")

	// ErrInvalidRecord marks a record that violates the answer invariants.
	ErrInvalidRecord = errors.New("invalid record")
)

// GapStatus is the marker written for a topic a student never attempted.
const GapStatus = "insufficient_data"

// TopicScore aggregates one student's attempts on one topic.
type TopicScore struct {
	StudentID      string
	Topic          itembank.Topic
	Attempts       int
	CorrectCount   int
	Accuracy       float64
	MeanTime       float64
	MeanConfidence float64
	// ErrorCounts holds a count for every category, including none.
	ErrorCounts map[answer.ErrorType]int
}

// ErrorShare returns the fraction of attempts classified as e. Shares over
// all categories sum to 1.
func (ts TopicScore) ErrorShare(e answer.ErrorType) float64 {
	if ts.Attempts == 0 {
		return 0
	}
	return float64(ts.ErrorCounts[e]) / float64(ts.Attempts)
}

// Mistakes returns the number of wrong attempts.
func (ts TopicScore) Mistakes() int {
	return ts.Attempts - ts.CorrectCount
}

// DominantMistake returns the most frequent mistake type and its share of
// the wrong attempts. Ties go to the earlier category in canonical order.
// Returns ErrNone and 0 when the topic has no wrong attempts.
func (ts TopicScore) DominantMistake() (answer.ErrorType, float64) {
	wrong := ts.Mistakes()
	if wrong <= 0 {
		return answer.ErrNone, 0
	}
	best, bestN := answer.ErrNone, 0
	for _, e := range answer.MistakeTypes() {
		if n := ts.ErrorCounts[e]; n > bestN {
			best, bestN = e, n
		}
	}
	if bestN == 0 {
		return answer.ErrNone, 0
	}
	return best, float64(bestN) / float64(wrong)
}

// Summary is the attempt-weighted roll-up of all of a student's attempts.
type Summary struct {
	StudentID      string
	Attempts       int
	CorrectCount   int
	Accuracy       float64
	MeanTime       float64
	MeanConfidence float64
	// TopicsAttempted counts the topics with at least one attempt.
	TopicsAttempted int
}

// ExcludedRecord is an input record left out of aggregation.
type ExcludedRecord struct {
	Record answer.Record
	Err    error
}

func (e ExcludedRecord) Error() string {
	return fmt.Sprintf("student %q question %q: %v", e.Record.StudentID, e.Record.QuestionID, e.Err)
}

func (e ExcludedRecord) Unwrap() error { return e.Err }

// Gap marks a bank topic with no attempts for a student.
type Gap struct {
	StudentID string
	Topic     itembank.Topic
}

// ErrorShareRow is one long-format row of the error matrix.
type ErrorShareRow struct {
	StudentID string
	Topic     itembank.Topic
	ErrorType answer.ErrorType
	Count     int
	Share     float64
}
