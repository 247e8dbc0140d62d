package profile

import (
	"sort"

	"github.com/alesfias96/student-performance-ai/internal/itembank"
	"github.com/alesfias96/student-performance-ai/internal/scoring"
)

// TopicProfile is a topic score with its level and label.
type TopicProfile struct {
	Score scoring.TopicScore
	Level Level
	Label Label
}

// StudentProfile is the diagnostic view of one student.
type StudentProfile struct {
	Summary scoring.Summary
	Level   Level
	Label   Label
	// Topics is ordered by topic name.
	Topics []TopicProfile
	// Gaps lists bank topics the student never attempted.
	Gaps []itembank.Topic
}

// Profiler derives profiles from scores. It is a pure function of its
// thresholds and safe for concurrent use.
type Profiler struct {
	thresholds Thresholds
}

// New validates the thresholds and returns a profiler.
func New(t Thresholds) (*Profiler, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Profiler{thresholds: t}, nil
}

// Build profiles one student. Topic labels use the student's own overall
// accuracy for the relative weakness rule.
func (p *Profiler) Build(summary scoring.Summary, topics []scoring.TopicScore) StudentProfile {
	sp := StudentProfile{
		Summary: summary,
		Level:   p.thresholds.LevelFor(summary.Accuracy),
		Label:   p.thresholds.LabelFor(summary.Accuracy, summary.Accuracy),
		Topics:  make([]TopicProfile, 0, len(topics)),
	}
	for _, ts := range topics {
		sp.Topics = append(sp.Topics, TopicProfile{
			Score: ts,
			Level: p.thresholds.LevelFor(ts.Accuracy),
			Label: p.thresholds.LabelFor(ts.Accuracy, summary.Accuracy),
		})
	}
	sort.SliceStable(sp.Topics, func(i, j int) bool { return sp.Topics[i].Score.Topic < sp.Topics[j].Score.Topic })
	return sp
}

// Topic returns the profile of one topic.
func (sp StudentProfile) Topic(t itembank.Topic) (TopicProfile, bool) {
	for _, tp := range sp.Topics {
		if tp.Score.Topic == t {
			return tp, true
		}
	}
	return TopicProfile{}, false
}

// Strengths returns strength topics, highest accuracy first.
func (sp StudentProfile) Strengths() []TopicProfile {
	return sp.withLabel(LabelStrength, true)
}

// Weaknesses returns weakness topics, lowest accuracy first.
func (sp StudentProfile) Weaknesses() []TopicProfile {
	return sp.withLabel(LabelWeakness, false)
}

// Neutrals returns neutral topics, highest accuracy first.
func (sp StudentProfile) Neutrals() []TopicProfile {
	return sp.withLabel(LabelNeutral, true)
}

func (sp StudentProfile) withLabel(l Label, desc bool) []TopicProfile {
	var out []TopicProfile
	for _, tp := range sp.Topics {
		if tp.Label == l {
			out = append(out, tp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Score.Accuracy, out[j].Score.Accuracy
		if desc {
			return a > b
		}
		return a < b
	})
	return out
}
