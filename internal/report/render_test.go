package report

import (
	"strings"
	"testing"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/itembank"
	"github.com/alesfias96/student-performance-ai/internal/profile"
	"github.com/alesfias96/student-performance-ai/internal/recommend"
	"github.com/alesfias96/student-performance-ai/internal/scoring"
	"github.com/alesfias96/student-performance-ai/internal/store"
)

func sampleProfile() profile.StudentProfile {
	return profile.StudentProfile{
		Summary: scoring.Summary{StudentID: "s1", Attempts: 20, CorrectCount: 12, Accuracy: 0.6, MeanTime: 70},
		Level:   profile.LevelIntermediate,
		Label:   profile.LabelNeutral,
		Topics: []profile.TopicProfile{
			{Score: scoring.TopicScore{StudentID: "s1", Topic: "algebra", Attempts: 10, Accuracy: 0.3}, Level: profile.LevelBeginner, Label: profile.LabelWeakness},
			{Score: scoring.TopicScore{StudentID: "s1", Topic: "geometry", Attempts: 10, Accuracy: 0.9}, Level: profile.LevelAdvanced, Label: profile.LabelStrength},
		},
		Gaps: []itembank.Topic{"physics-energy"},
	}
}

func TestBar_Widths(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		filled  int
	}{
		{"empty", 0, 0},
		{"half", 0.5, 7},
		{"full", 1, 14},
		{"over", 1.4, 14},
		{"negative", -0.2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ansi.Strip(Bar{Percent: tt.percent, Width: 20}.View())
			assert.Equal(t, 20, lipgloss.Width(out))
			assert.Equal(t, tt.filled, strings.Count(out, "█"))
		})
	}
}

func TestStudent_Content(t *testing.T) {
	recs := []recommend.Recommendation{{
		StudentID:     "s1",
		Topic:         "algebra",
		Priority:      recommend.PriorityHigh,
		Score:         0.52,
		DominantError: answer.ErrFormula,
		Justification: "accuracy 30% vs target 70%",
		Actions:       []string{"Review the formula sheet"},
	}}
	out := ansi.Strip(Student(sampleProfile(), recs, 90))

	for _, want := range []string{"Student s1", "overall 60%", "algebra", "geometry", "Weakness", "Strength",
		"physics-energy: insufficient_data", "1. HIGH algebra",
		"1 strength · 0 neutral · 1 weakness", "1 high · 0 medium · 0 low", "accuracy 30% vs target 70%", "- Review the formula sheet"} {
		assert.Contains(t, out, want)
	}
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 90)
	}
}

func TestStudent_NoRecommendations(t *testing.T) {
	sp := sampleProfile()
	sp.Gaps = nil
	out := ansi.Strip(Student(sp, nil, 0))
	assert.Contains(t, out, "No weak topics")
	assert.NotContains(t, out, "0 high")
	assert.NotContains(t, out, "Not attempted")
}

func TestClass(t *testing.T) {
	ov := profile.ClassSummary([]profile.StudentProfile{sampleProfile()})
	out := ansi.Strip(Class(ov))
	assert.Contains(t, out, "s1")
	assert.Contains(t, out, "60%")
	assert.Contains(t, out, "1 students")
	assert.Contains(t, out, "Intermediate 1")
}

func TestRunsAndHistory(t *testing.T) {
	assert.Contains(t, ansi.Strip(Runs(nil)), "No runs")
	assert.Contains(t, ansi.Strip(History("s9", nil)), "s9")

	run := store.Run{ID: "0123456789abcdef", Sequence: 3, StartedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC), Source: "simulated", Students: 2}
	out := ansi.Strip(Runs([]store.Run{run}))
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "89abcdef")
	assert.Contains(t, out, "simulated")

	out = ansi.Strip(History("s1", []store.StudentRun{{Run: run, Summary: store.SummaryRow{StudentID: "s1", Accuracy: 0.25, Level: "beginner"}}}))
	assert.Contains(t, out, "25%")
	assert.Contains(t, out, "beginner")
}

func TestIssues(t *testing.T) {
	assert.Empty(t, Issues(nil))
	out := ansi.Strip(Issues([]string{"rejected: row 3"}))
	assert.Contains(t, out, "1 issues")
	assert.Contains(t, out, "rejected: row 3")
}
