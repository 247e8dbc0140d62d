package profile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alesfias96/student-performance-ai/internal/itembank"
	"github.com/alesfias96/student-performance-ai/internal/scoring"
)

func TestLevelFor(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		acc  float64
		want Level
	}{
		{math.NaN(), LevelBeginner},
		{-0.5, LevelBeginner},
		{0.0, LevelBeginner},
		{0.49, LevelBeginner},
		{0.50, LevelIntermediate},
		{0.74, LevelIntermediate},
		{0.75, LevelAdvanced},
		{1.0, LevelAdvanced},
		{1.7, LevelAdvanced},
	}
	for _, tt := range tests {
		if got := th.LevelFor(tt.acc); got != tt.want {
			t.Errorf("LevelFor(%v) = %q, want %q", tt.acc, got, tt.want)
		}
	}
}

func TestLabelFor(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		acc, student float64
		want         Label
	}{
		{math.NaN(), 0.5, LabelWeakness},
		{0.0, 0.0, LabelWeakness},
		{0.55, 0.55, LabelWeakness},
		{0.56, 0.56, LabelNeutral},
		{0.79, 0.79, LabelNeutral},
		{0.80, 0.80, LabelStrength},
		{2.0, 0.1, LabelStrength},
		// relative rule: 0.60 < 0.90 - 0.20
		{0.60, 0.90, LabelWeakness},
		// exactly at the gap is not below it
		{0.70, 0.90, LabelNeutral},
		// strength wins over the relative rule
		{0.80, 1.0, LabelStrength},
	}
	for _, tt := range tests {
		if got := th.LabelFor(tt.acc, tt.student); got != tt.want {
			t.Errorf("LabelFor(%v, %v) = %q, want %q", tt.acc, tt.student, got, tt.want)
		}
	}

	th.RelativeGap = 0
	if got := th.LabelFor(0.60, 0.95); got != LabelNeutral {
		t.Errorf("relative rule should be disabled, got %q", got)
	}
}

func TestThresholds_Validate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())

	tests := []struct {
		name   string
		mutate func(*Thresholds)
		want   string
	}{
		{"levels out of order", func(th *Thresholds) { th.IntermediateFrom = 0.8 }, "intermediate_from"},
		{"labels out of order", func(th *Thresholds) { th.WeaknessUpTo = 0.9 }, "weakness_up_to"},
		{"out of range", func(th *Thresholds) { th.StrengthFrom = 1.5 }, "strength_from must be in [0, 1]"},
		{"nan", func(th *Thresholds) { th.RelativeGap = math.NaN() }, "relative_gap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.mutate(&th)
			err := th.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			_, err = New(th)
			assert.Error(t, err)
		})
	}
}

func ts(topic string, correct, attempts int) scoring.TopicScore {
	return scoring.TopicScore{
		StudentID:    "s1",
		Topic:        itembank.Topic(topic),
		Attempts:     attempts,
		CorrectCount: correct,
		Accuracy:     float64(correct) / float64(attempts),
	}
}

func TestBuild_AlgebraGeometryScenario(t *testing.T) {
	p, err := New(DefaultThresholds())
	require.NoError(t, err)

	sum := scoring.Summary{StudentID: "s1", Attempts: 20, CorrectCount: 12, Accuracy: 0.6}
	sp := p.Build(sum, []scoring.TopicScore{ts("geometry", 9, 10), ts("algebra", 3, 10)})

	assert.Equal(t, LevelIntermediate, sp.Level)
	require.Len(t, sp.Topics, 2)
	assert.Equal(t, itembank.Topic("algebra"), sp.Topics[0].Score.Topic)

	alg, ok := sp.Topic("algebra")
	require.True(t, ok)
	assert.Equal(t, LevelBeginner, alg.Level)
	assert.Equal(t, LabelWeakness, alg.Label)

	geo, ok := sp.Topic("geometry")
	require.True(t, ok)
	assert.Equal(t, LevelAdvanced, geo.Level)
	assert.Equal(t, LabelStrength, geo.Label)

	_, ok = sp.Topic("physics")
	assert.False(t, ok)
}

func TestBuild_SortedViews(t *testing.T) {
	p, err := New(DefaultThresholds())
	require.NoError(t, err)

	sum := scoring.Summary{StudentID: "s1", Accuracy: 0.6}
	sp := p.Build(sum, []scoring.TopicScore{
		ts("a", 9, 10), ts("b", 10, 10),
		ts("c", 5, 10), ts("d", 1, 10),
		ts("e", 6, 10), ts("f", 7, 10),
	})

	names := func(tps []TopicProfile) []string {
		var out []string
		for _, tp := range tps {
			out = append(out, string(tp.Score.Topic))
		}
		return out
	}
	assert.Equal(t, []string{"b", "a"}, names(sp.Strengths()))
	assert.Equal(t, []string{"d", "c"}, names(sp.Weaknesses()))
	assert.Equal(t, []string{"f", "e"}, names(sp.Neutrals()))
}

func TestClassSummary(t *testing.T) {
	p, err := New(DefaultThresholds())
	require.NoError(t, err)

	profiles := []StudentProfile{
		p.Build(scoring.Summary{StudentID: "s2", Accuracy: 0.9}, []scoring.TopicScore{ts("a", 9, 10)}),
		p.Build(scoring.Summary{StudentID: "s1", Accuracy: 0.3}, []scoring.TopicScore{ts("a", 3, 10)}),
	}
	ov := ClassSummary(profiles)

	require.Len(t, ov.Rows, 2)
	assert.Equal(t, "s1", ov.Rows[0].StudentID)
	assert.Equal(t, 1, ov.Rows[0].Weaknesses)
	assert.Equal(t, 1, ov.Rows[1].Strengths)
	assert.Equal(t, 1, ov.LevelCounts[LevelBeginner])
	assert.Equal(t, 1, ov.LevelCounts[LevelAdvanced])
	assert.Equal(t, 0, ov.LevelCounts[LevelIntermediate])
	assert.InDelta(t, 0.6, ov.MeanAccuracy, 1e-9)

	empty := ClassSummary(nil)
	assert.Empty(t, empty.Rows)
	assert.Zero(t, empty.MeanAccuracy)
}
