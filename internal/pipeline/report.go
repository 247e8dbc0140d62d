package pipeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/profile"
	"github.com/alesfias96/student-performance-ai/internal/recommend"
	"github.com/alesfias96/student-performance-ai/internal/scoring"
	"github.com/alesfias96/student-performance-ai/internal/store"
)

// Report is the outcome of one run.
type Report struct {
	RunID     string
	StartedAt time.Time

	// Records counts the records that passed ingestion.
	Records   int
	Rejected  []*answer.RecordError
	Repaired  int
	Defaulted int

	Scores *scoring.Result
	// Profiles is ordered by student ID.
	Profiles []profile.StudentProfile
	// Recommendations is grouped by student ID, each group in priority order.
	Recommendations []recommend.Recommendation
	Class           profile.ClassOverview
}

// Profile returns one student's profile.
func (r *Report) Profile(studentID string) (profile.StudentProfile, bool) {
	i := sort.Search(len(r.Profiles), func(i int) bool { return r.Profiles[i].Summary.StudentID >= studentID })
	if i < len(r.Profiles) && r.Profiles[i].Summary.StudentID == studentID {
		return r.Profiles[i], true
	}
	return profile.StudentProfile{}, false
}

// RecommendationsFor returns one student's recommendations in order.
func (r *Report) RecommendationsFor(studentID string) []recommend.Recommendation {
	var out []recommend.Recommendation
	for _, rec := range r.Recommendations {
		if rec.StudentID == studentID {
			out = append(out, rec)
		}
	}
	return out
}

// Issues lists every reported problem, one line each: rejected rows,
// excluded records, then repair and default counts.
func (r *Report) Issues() []string {
	var out []string
	for _, rej := range r.Rejected {
		out = append(out, "rejected: "+rej.Error())
	}
	for _, ex := range r.Scores.Excluded {
		out = append(out, "excluded: "+ex.Error())
	}
	if r.Repaired > 0 {
		out = append(out, fmt.Sprintf("repaired: %d wrong answers labelled none relabelled as %s", r.Repaired, answer.ErrDistraction))
	}
	if r.Defaulted > 0 {
		out = append(out, fmt.Sprintf("defaulted: %d rows with unreadable time or confidence", r.Defaulted))
	}
	return out
}

// RunRecord converts the report into its persisted form. Seed is nil for
// runs over external data.
func (r *Report) RunRecord(source string, seed *uint64) *store.RunRecord {
	rec := &store.RunRecord{
		Run: store.Run{
			ID:        r.RunID,
			StartedAt: r.StartedAt,
			Source:    source,
			Seed:      seed,
			Students:  len(r.Profiles),
			Records:   r.Records,
			Rejected:  len(r.Rejected),
			Repaired:  r.Repaired,
			Excluded:  len(r.Scores.Excluded),
			Gaps:      len(r.Scores.Gaps),
			Issues:    r.Issues(),
		},
	}

	for _, sp := range r.Profiles {
		rec.Summaries = append(rec.Summaries, store.SummaryRow{
			StudentID: sp.Summary.StudentID,
			Accuracy:  sp.Summary.Accuracy,
			MeanTime:  sp.Summary.MeanTime,
			Attempts:  sp.Summary.Attempts,
			Level:     string(sp.Level),
			Label:     string(sp.Label),
		})
		for _, tp := range sp.Topics {
			rec.TopicScores = append(rec.TopicScores, store.TopicScoreRow{
				StudentID:      tp.Score.StudentID,
				Topic:          string(tp.Score.Topic),
				Accuracy:       tp.Score.Accuracy,
				MeanTime:       tp.Score.MeanTime,
				MeanConfidence: tp.Score.MeanConfidence,
				Attempts:       tp.Score.Attempts,
				Level:          string(tp.Level),
				Label:          string(tp.Label),
			})
		}
	}

	rank := map[string]int{}
	for _, rc := range r.Recommendations {
		rank[rc.StudentID]++
		rec.Recommendations = append(rec.Recommendations, store.RecommendationRow{
			StudentID:     rc.StudentID,
			Rank:          rank[rc.StudentID],
			Topic:         string(rc.Topic),
			Priority:      int(rc.Priority),
			Score:         rc.Score,
			Justification: rc.Justification,
			Action:        rc.SuggestedAction(),
		})
	}
	return rec
}
