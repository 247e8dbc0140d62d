package scoring

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/itembank"
)

// Result holds everything derived from one batch of records. Topics and
// Summaries are ordered by student, then topic.
type Result struct {
	Topics    []TopicScore
	Summaries []Summary
	Excluded  []ExcludedRecord
	Gaps      []Gap

	byStudent map[string][]TopicScore
	summaries map[string]Summary
}

type accumulator struct {
	attempts   int
	correct    int
	time       float64
	confidence float64
	errors     map[answer.ErrorType]int
}

func (a *accumulator) add(r answer.Record) {
	a.attempts++
	if r.Correct {
		a.correct++
	}
	a.time += r.TimeSeconds
	a.confidence += float64(r.Confidence)
	if a.errors == nil {
		a.errors = make(map[answer.ErrorType]int, len(answer.AllErrorTypes()))
		for _, e := range answer.AllErrorTypes() {
			a.errors[e] = 0
		}
	}
	a.errors[r.ErrorType]++
}

func (a *accumulator) ratio(v float64) float64 {
	if a.attempts == 0 {
		return 0
	}
	return v / float64(a.attempts)
}

type topicKey struct {
	student string
	topic   itembank.Topic
}

// Aggregate scores records against the bank. Records referencing unknown
// questions or breaking the answer invariants are excluded and reported,
// never fatal. A bank topic a student never attempted yields a Gap rather
// than a zero-accuracy score.
func Aggregate(bank *itembank.Bank, records []answer.Record) *Result {
	res := &Result{
		byStudent: make(map[string][]TopicScore),
		summaries: make(map[string]Summary),
	}

	perTopic := make(map[topicKey]*accumulator)
	perStudent := make(map[string]*accumulator)

	for _, r := range records {
		if err := r.Check(); err != nil {
			res.Excluded = append(res.Excluded, ExcludedRecord{Record: r, Err: fmt.Errorf("%w: %v", ErrInvalidRecord, err)})
			continue
		}
		q, ok := bank.Question(r.QuestionID)
		if !ok {
			res.Excluded = append(res.Excluded, ExcludedRecord{Record: r, Err: fmt.Errorf("%w: %q", ErrUnknownQuestion, r.QuestionID)})
			continue
		}

		k := topicKey{student: r.StudentID, topic: q.Topic}
		acc, ok := perTopic[k]
		if !ok {
			acc = &accumulator{}
			perTopic[k] = acc
		}
		acc.add(r)

		sacc, ok := perStudent[r.StudentID]
		if !ok {
			sacc = &accumulator{}
			perStudent[r.StudentID] = sacc
		}
		sacc.add(r)
	}

	students := make([]string, 0, len(perStudent))
	for s := range perStudent {
		students = append(students, s)
	}
	sort.Strings(students)

	for _, s := range students {
		var topics []TopicScore
		for _, t := range bank.Topics() {
			acc, ok := perTopic[topicKey{student: s, topic: t}]
			if !ok {
				res.Gaps = append(res.Gaps, Gap{StudentID: s, Topic: t})
				continue
			}
			topics = append(topics, TopicScore{
				StudentID:      s,
				Topic:          t,
				Attempts:       acc.attempts,
				CorrectCount:   acc.correct,
				Accuracy:       acc.ratio(float64(acc.correct)),
				MeanTime:       acc.ratio(acc.time),
				MeanConfidence: acc.ratio(acc.confidence),
				ErrorCounts:    acc.errors,
			})
		}
		res.byStudent[s] = topics
		res.Topics = append(res.Topics, topics...)

		sacc := perStudent[s]
		sum := Summary{
			StudentID:       s,
			Attempts:        sacc.attempts,
			CorrectCount:    sacc.correct,
			Accuracy:        sacc.ratio(float64(sacc.correct)),
			MeanTime:        sacc.ratio(sacc.time),
			MeanConfidence:  sacc.ratio(sacc.confidence),
			TopicsAttempted: len(topics),
		}
		res.summaries[s] = sum
		res.Summaries = append(res.Summaries, sum)
	}

	return res
}

// Students returns the scored student IDs in ascending order.
func (r *Result) Students() []string {
	out := make([]string, 0, len(r.Summaries))
	for _, s := range r.Summaries {
		out = append(out, s.StudentID)
	}
	return out
}

// TopicsFor returns one student's topic scores ordered by topic.
func (r *Result) TopicsFor(studentID string) []TopicScore {
	return slices.Clone(r.byStudent[studentID])
}

// Summary returns one student's roll-up.
func (r *Result) Summary(studentID string) (Summary, bool) {
	s, ok := r.summaries[studentID]
	return s, ok
}

// GapsFor returns the topics a student has no data on.
func (r *Result) GapsFor(studentID string) []Gap {
	var out []Gap
	for _, g := range r.Gaps {
		if g.StudentID == studentID {
			out = append(out, g)
		}
	}
	return out
}

// ErrorMatrix returns the long-format error shares: one row per student,
// topic and category, none included.
func (r *Result) ErrorMatrix() []ErrorShareRow {
	cats := answer.AllErrorTypes()
	out := make([]ErrorShareRow, 0, len(r.Topics)*len(cats))
	for _, ts := range r.Topics {
		for _, e := range cats {
			out = append(out, ErrorShareRow{
				StudentID: ts.StudentID,
				Topic:     ts.Topic,
				ErrorType: e,
				Count:     ts.ErrorCounts[e],
				Share:     ts.ErrorShare(e),
			})
		}
	}
	return out
}

// Issues counts the excluded records by cause.
func (r *Result) Issues() (unknownQuestions, invalid int) {
	for _, ex := range r.Excluded {
		switch {
		case errors.Is(ex.Err, ErrUnknownQuestion):
			unknownQuestions++
		case errors.Is(ex.Err, ErrInvalidRecord):
			invalid++
		}
	}
	return unknownQuestions, invalid
}
