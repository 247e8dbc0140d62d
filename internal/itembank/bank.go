package itembank

import (
	"slices"
	"sort"
)

// Bank is an immutable, indexed question set. It is read-only once built
// and safe for concurrent use.
type Bank struct {
	questions []Question
	byID      map[string]*Question
	byTopic   map[Topic][]Question
	topics    []Topic
}

// New validates the questions and builds the bank indices.
func New(questions []Question) (*Bank, error) {
	if err := validateQuestions(questions); err != nil {
		return nil, err
	}

	b := &Bank{
		questions: slices.Clone(questions),
		byID:      make(map[string]*Question, len(questions)),
		byTopic:   make(map[Topic][]Question),
	}

	for i := range b.questions {
		q := &b.questions[i]
		b.byID[q.ID] = q
		if _, seen := b.byTopic[q.Topic]; !seen {
			b.topics = append(b.topics, q.Topic)
		}
		b.byTopic[q.Topic] = append(b.byTopic[q.Topic], *q)
	}
	sort.Slice(b.topics, func(i, j int) bool { return b.topics[i] < b.topics[j] })

	return b, nil
}

// Question returns a question by ID.
func (b *Bank) Question(id string) (Question, bool) {
	q, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return *q, true
}

// All returns all questions in insertion order.
func (b *Bank) All() []Question {
	return slices.Clone(b.questions)
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Topics returns the distinct topics, sorted by name.
func (b *Bank) Topics() []Topic {
	return slices.Clone(b.topics)
}

// ByTopic returns the questions of a topic in insertion order.
func (b *Bank) ByTopic(t Topic) []Question {
	return slices.Clone(b.byTopic[t])
}

// TopicStats summarises one topic of the bank.
type TopicStats struct {
	Topic          Topic
	Questions      int
	MinDifficulty  int
	MaxDifficulty  int
	MeanDifficulty float64
}

// Stats returns per-topic question counts and difficulty spread, in topic order.
func (b *Bank) Stats() []TopicStats {
	out := make([]TopicStats, 0, len(b.topics))
	for _, t := range b.topics {
		qs := b.byTopic[t]
		st := TopicStats{Topic: t, Questions: len(qs), MinDifficulty: qs[0].Difficulty, MaxDifficulty: qs[0].Difficulty}
		sum := 0
		for _, q := range qs {
			sum += q.Difficulty
			st.MinDifficulty = min(st.MinDifficulty, q.Difficulty)
			st.MaxDifficulty = max(st.MaxDifficulty, q.Difficulty)
		}
		st.MeanDifficulty = float64(sum) / float64(len(qs))
		out = append(out, st)
	}
	return out
}
