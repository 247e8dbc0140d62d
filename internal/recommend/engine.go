package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/itembank"
	"github.com/alesfias96/student-performance-ai/internal/profile"
)

// Recommendation is one prioritized, explained action for a student topic.
type Recommendation struct {
	StudentID     string
	Topic         itembank.Topic
	Priority      Priority
	Score         float64
	Accuracy      float64
	MeanTime      float64
	DominantError answer.ErrorType
	// DominantShare is the dominant error's share of wrong answers.
	DominantShare float64
	Justification string
	Actions       []string
}

// SuggestedAction joins the action steps into one line.
func (r Recommendation) SuggestedAction() string {
	return strings.Join(r.Actions, "; ")
}

// Engine turns student profiles into recommendations. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	cfg Config
}

// New validates cfg and returns an engine.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkActionTable(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Recommend returns recommendations for the weak topics of a profile,
// highest composite score first with ties broken by topic name. A profile
// with no candidate topics yields an empty list.
func (e *Engine) Recommend(sp profile.StudentProfile) []Recommendation {
	var recs []Recommendation
	for _, tp := range sp.Topics {
		if tp.Label != profile.LabelWeakness && tp.Score.Accuracy >= e.cfg.AccuracyFloor {
			continue
		}
		recs = append(recs, e.build(sp.Summary.StudentID, tp))
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Topic < recs[j].Topic
	})

	if e.cfg.MaxRecommendations > 0 && len(recs) > e.cfg.MaxRecommendations {
		recs = recs[:e.cfg.MaxRecommendations]
	}
	return recs
}

func (e *Engine) build(studentID string, tp profile.TopicProfile) Recommendation {
	ts := tp.Score
	dominant, share := ts.DominantMistake()
	score := e.Composite(ts.Accuracy, share, ts.MeanTime)

	steps := ActionsFor(dominant)
	if ts.MeanTime > e.cfg.SlowTime {
		steps = append(steps, timedDrillAction)
	}

	return Recommendation{
		StudentID:     studentID,
		Topic:         ts.Topic,
		Priority:      e.cfg.TierFor(score),
		Score:         score,
		Accuracy:      ts.Accuracy,
		MeanTime:      ts.MeanTime,
		DominantError: dominant,
		DominantShare: share,
		Justification: e.justify(ts.Accuracy, dominant, share, ts.MeanTime),
		Actions:       steps,
	}
}

// Composite combines accuracy deficit, dominant error concentration and
// time excess into one score.
func (e *Engine) Composite(accuracy, dominantShare, meanTime float64) float64 {
	w := e.cfg.Weights
	deficit := math.Max(0, e.cfg.TargetAccuracy-accuracy)
	excess := math.Min(1, math.Max(0, (meanTime-e.cfg.BaselineTime)/e.cfg.BaselineTime))
	return w.Deficit*deficit + w.ErrorShare*dominantShare + w.TimeExcess*excess
}

func (e *Engine) justify(accuracy float64, dominant answer.ErrorType, share, meanTime float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "accuracy %s vs target %s", pct(accuracy), pct(e.cfg.TargetAccuracy))
	if dominant == answer.ErrNone {
		b.WriteString("; dominant error: none")
	} else {
		fmt.Fprintf(&b, "; dominant error: %s (%s of mistakes)", dominant, pct(share))
	}
	fmt.Fprintf(&b, "; avg time %.0fs vs baseline %.0fs", meanTime, e.cfg.BaselineTime)
	return b.String()
}

func pct(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
