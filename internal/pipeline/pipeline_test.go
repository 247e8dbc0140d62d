package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/config"
	"github.com/alesfias96/student-performance-ai/internal/itembank"
	"github.com/alesfias96/student-performance-ai/internal/profile"
	"github.com/alesfias96/student-performance-ai/internal/recommend"
	"github.com/alesfias96/student-performance-ai/internal/simulate"
	"github.com/alesfias96/student-performance-ai/internal/store"
	"github.com/alesfias96/student-performance-ai/internal/tabular"
)

// scenarioBank has ten algebra and ten geometry questions.
func scenarioBank(t *testing.T) *itembank.Bank {
	t.Helper()
	var qs []itembank.Question
	for i := 0; i < 10; i++ {
		qs = append(qs,
			itembank.Question{ID: "a" + string(rune('0'+i)), Topic: "algebra", Difficulty: 3},
			itembank.Question{ID: "g" + string(rune('0'+i)), Topic: "geometry", Difficulty: 3},
		)
	}
	b, err := itembank.New(qs)
	require.NoError(t, err)
	return b
}

// scenarioRows: s1 gets 3/10 algebra (formula mistakes) and 9/10 geometry.
func scenarioRows() []answer.RawRecord {
	var raws []answer.RawRecord
	row := 1
	add := func(q, correct, errType string) {
		raws = append(raws, answer.RawRecord{Row: row, StudentID: "s1", QuestionID: q, IsCorrect: correct, ErrorType: errType, TimeSeconds: "70"})
		row++
	}
	for i := 0; i < 10; i++ {
		if i < 3 {
			add("a"+string(rune('0'+i)), "1", "none")
		} else {
			add("a"+string(rune('0'+i)), "0", "formula")
		}
		if i < 9 {
			add("g"+string(rune('0'+i)), "1", "")
		} else {
			add("g"+string(rune('0'+i)), "0", "segno")
		}
	}
	return raws
}

func newPipeline(t *testing.T, bank *itembank.Bank) *Pipeline {
	t.Helper()
	p, err := New(config.Default(), bank, nil)
	require.NoError(t, err)
	return p
}

func TestRun_AlgebraGeometryScenario(t *testing.T) {
	rep, err := newPipeline(t, scenarioBank(t)).Run(context.Background(), scenarioRows())
	require.NoError(t, err)

	require.Empty(t, rep.Rejected)
	sp, ok := rep.Profile("s1")
	require.True(t, ok)
	assert.InDelta(t, 0.6, sp.Summary.Accuracy, 1e-9)

	alg, _ := sp.Topic("algebra")
	geo, _ := sp.Topic("geometry")
	assert.Equal(t, profile.LevelBeginner, alg.Level)
	assert.Equal(t, profile.LabelWeakness, alg.Label)
	assert.Equal(t, profile.LevelAdvanced, geo.Level)
	assert.Equal(t, profile.LabelStrength, geo.Label)

	recs := rep.RecommendationsFor("s1")
	require.NotEmpty(t, recs)
	assert.Equal(t, itembank.Topic("algebra"), recs[0].Topic)
	assert.Equal(t, recommend.PriorityHigh, recs[0].Priority)
	assert.Equal(t, answer.ErrFormula, recs[0].DominantError)
	for _, r := range recs {
		assert.NotEqual(t, itembank.Topic("geometry"), r.Topic)
	}
}

func TestRun_MalformedRowRejectedRunCompletes(t *testing.T) {
	raws := append(scenarioRows(), answer.RawRecord{Row: 99, StudentID: "s1", QuestionID: "a0", IsCorrect: "1", ErrorType: "formula"})
	rep, err := newPipeline(t, scenarioBank(t)).Run(context.Background(), raws)
	require.NoError(t, err)

	require.Len(t, rep.Rejected, 1)
	assert.Equal(t, 99, rep.Rejected[0].Row)
	assert.Equal(t, 20, rep.Records)
	assert.Len(t, rep.Profiles, 1)
	assert.Contains(t, rep.Issues()[0], "row 99")
}

func TestRun_UnknownQuestionAndGap(t *testing.T) {
	raws := []answer.RawRecord{
		{Row: 1, StudentID: "s1", QuestionID: "a0", IsCorrect: "1"},
		{Row: 2, StudentID: "s1", QuestionID: "zz", IsCorrect: "1"},
		{Row: 3, StudentID: "s2", QuestionID: "g0", IsCorrect: "0", ErrorType: "none"},
	}
	rep, err := newPipeline(t, scenarioBank(t)).Run(context.Background(), raws)
	require.NoError(t, err)

	assert.Len(t, rep.Scores.Excluded, 1)
	assert.Equal(t, 1, rep.Repaired)

	s1, ok := rep.Profile("s1")
	require.True(t, ok)
	assert.Equal(t, []itembank.Topic{"geometry"}, s1.Gaps)
	_, ok = s1.Topic("geometry")
	assert.False(t, ok, "a topic with no attempts must not get a score")

	issues := rep.Issues()
	assert.Len(t, issues, 2)
	assert.Contains(t, issues[0], "unknown question")
	assert.Contains(t, issues[1], "repaired: 1")
}

func TestRun_EmptyBatch(t *testing.T) {
	rep, err := newPipeline(t, scenarioBank(t)).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rep.Profiles)
	assert.Empty(t, rep.Recommendations)
	assert.Empty(t, rep.Issues())
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newPipeline(t, scenarioBank(t)).Run(ctx, scenarioRows())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Profile.IntermediateFrom = 0.9
	_, err := New(cfg, scenarioBank(t), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = New(config.Default(), nil, nil)
	assert.Error(t, err)
}

func simulatedCSV(t *testing.T, workers int) []byte {
	t.Helper()
	cfg := config.Default()
	cfg.Simulation.Students = 30
	cfg.Workers = workers

	bank, ds, err := simulate.Generate(cfg.Simulation)
	require.NoError(t, err)
	p, err := New(cfg, bank, nil)
	require.NoError(t, err)
	rep, err := p.RunRecords(context.Background(), ds.Records)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tabular.WriteAnswers(&buf, ds.Records))
	require.NoError(t, tabular.WriteTopicScores(&buf, rep.Scores.Topics))
	require.NoError(t, tabular.WriteSummaries(&buf, rep.Profiles))
	require.NoError(t, tabular.WriteRecommendations(&buf, rep.Recommendations))
	return buf.Bytes()
}

func TestRunRecords_ByteIdenticalAcrossRunsAndWorkers(t *testing.T) {
	first := simulatedCSV(t, 1)
	assert.Equal(t, first, simulatedCSV(t, 1))
	assert.Equal(t, first, simulatedCSV(t, 8))
}

func TestReport_RunRecordRoundTrip(t *testing.T) {
	rep, err := newPipeline(t, scenarioBank(t)).Run(context.Background(), scenarioRows())
	require.NoError(t, err)

	s, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	repo := s.RunRepo()
	require.NoError(t, repo.Save(ctx, rep.RunRecord("scenario.csv", nil)))

	got, err := repo.Get(ctx, rep.RunID)
	require.NoError(t, err)
	assert.Equal(t, "scenario.csv", got.Run.Source)
	assert.Nil(t, got.Run.Seed)
	assert.Len(t, got.TopicScores, 2)
	require.NotEmpty(t, got.Recommendations)
	assert.Equal(t, 1, got.Recommendations[0].Rank)
	assert.Equal(t, "algebra", got.Recommendations[0].Topic)
}

func TestIngestSheet(t *testing.T) {
	p := newPipeline(t, scenarioBank(t))

	res, err := p.IngestSheet([]answer.RawRecord{
		{Row: 2, StudentID: "real_01", QuestionID: "a0", IsCorrect: "true", ErrorType: "none"},
		{Row: 3, StudentID: "real_01", QuestionID: "a1", IsCorrect: "false", ErrorType: "none"},
		{Row: 4, StudentID: "real_01", QuestionID: "g0", IsCorrect: "0", ErrorType: "concetto", Confidence: "9"},
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 3)
	assert.Equal(t, 1, res.Repaired)
	assert.Equal(t, answer.ErrDistraction, res.Records[1].ErrorType)
	assert.Equal(t, answer.ErrConcept, res.Records[2].ErrorType)
	assert.Equal(t, answer.MaxConfidence, res.Records[2].Confidence)
}

func TestIngestSheet_Strict(t *testing.T) {
	p := newPipeline(t, scenarioBank(t))

	_, err := p.IngestSheet([]answer.RawRecord{
		{Row: 2, StudentID: "real_01", QuestionID: "a0", IsCorrect: "1", ErrorType: "formula"},
		{Row: 3, StudentID: "real_01", QuestionID: "nope", IsCorrect: "1"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSheetRejected)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), `"nope"`)
}
