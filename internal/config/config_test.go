package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/itembank"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestParse_OverlaysDefaults(t *testing.T) {
	doc := `
simulation:
  seed: 7
  students: 12
profile:
  strength_from: 0.85
recommend:
  max_recommendations: 3
  weights:
    deficit: 0.5
    error_share: 0.3
    time_excess: 0.2
vocabulary:
  sbaglio: distraction
workers: 4
`
	cfg, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, uint64(7), cfg.Simulation.Seed)
	assert.Equal(t, 12, cfg.Simulation.Students)
	assert.Equal(t, Default().Simulation.Tests, cfg.Simulation.Tests)
	assert.Equal(t, 0.85, cfg.Profile.StrengthFrom)
	assert.Equal(t, Default().Profile.WeaknessUpTo, cfg.Profile.WeaknessUpTo)
	assert.Equal(t, 3, cfg.Recommend.MaxRecommendations)
	assert.Equal(t, 0.3, cfg.Recommend.Weights.ErrorShare)
	assert.Equal(t, 4, cfg.EffectiveWorkers())

	vocab, err := cfg.AnswerVocabulary()
	require.NoError(t, err)
	got, ok := vocab.Parse("Sbaglio")
	require.True(t, ok)
	assert.Equal(t, answer.ErrDistraction, got)
}

func TestParse_ErrorTableOverride(t *testing.T) {
	doc := `
simulation:
  errors:
    by_topic:
      algebra: {sign: 1, algebra: 0, formula: 0, concept: 0, distraction: 0}
`
	cfg, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	w := cfg.Simulation.Errors.ByTopic[itembank.TopicAlgebra]
	assert.Equal(t, 1.0, w[answer.ErrSign])
	assert.Contains(t, cfg.Simulation.Errors.ByTopic, itembank.TopicDerivatives)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown key", "simulaton:\n  seed: 1\n", "schema validation failed"},
		{"wrong type", "workers: many\n", "schema validation failed"},
		{"out of range", "profile:\n  strength_from: 1.5\n", "schema validation failed"},
		{"none in error table", "simulation:\n  errors:\n    default: {none: 1}\n", "schema validation failed"},
		{"non-monotonic thresholds", "profile:\n  intermediate_from: 0.9\n", "intermediate_from"},
		{"incomplete error table", "simulation:\n  errors:\n    by_topic:\n      algebra: {sign: 1}\n", "missing weight"},
		{"zero weights", "recommend:\n  weights: {deficit: 0, error_share: 0, time_excess: 0}\n", "positive total"},
		{"floor above strength", "recommend:\n  accuracy_floor: 0.95\n", "must not exceed profile.strength_from"},
		{"bad alias", "vocabulary:\n  oops: typo\n", "unknown error type"},
		{"malformed yaml", "profile: [\n", "parse yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_WrapsErrInvalid(t *testing.T) {
	cfg := Default()
	cfg.Workers = -1
	cfg.Recommend.BaselineTime = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Contains(t, err.Error(), "workers")
	assert.Contains(t, err.Error(), "baseline_time")
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  students: 5\n"), 0o644))

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Simulation.Students)

	t.Setenv(EnvConfigPath, path)
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Simulation.Students)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("STUDENTPERF_SEED", "99")
	t.Setenv("STUDENTPERF_WORKERS", "3")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, uint64(99), cfg.Simulation.Seed)
	assert.Equal(t, 3, cfg.Workers)

	t.Setenv("STUDENTPERF_SEED", "-1")
	assert.Error(t, cfg.ApplyEnv())
}
