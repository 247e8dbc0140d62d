package simulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/itembank"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Students = 20
	cfg.Tests = 2
	cfg.QuestionsPerTest = 10
	return cfg
}

func TestGenerate_RecordsSatisfyInvariant(t *testing.T) {
	bank, ds, err := Generate(smallConfig())
	require.NoError(t, err)
	require.Equal(t, 20, bank.Len())
	require.Len(t, ds.Students, 20)
	require.Len(t, ds.Records, 20*20)

	for _, r := range ds.Records {
		require.NoError(t, r.Check(), "record %+v", r)
		assert.Equal(t, r.Correct, r.ErrorType == answer.ErrNone)
		assert.GreaterOrEqual(t, r.TimeSeconds, 10.0)
		assert.LessOrEqual(t, r.TimeSeconds, 240.0)
		_, ok := bank.Question(r.QuestionID)
		assert.True(t, ok, "unknown question %q", r.QuestionID)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	bank1, ds1, err := Generate(smallConfig())
	require.NoError(t, err)
	bank2, ds2, err := Generate(smallConfig())
	require.NoError(t, err)

	assert.Equal(t, bank1.All(), bank2.All())
	assert.Equal(t, ds1, ds2)

	other := smallConfig()
	other.Seed = 7
	_, ds3, err := Generate(other)
	require.NoError(t, err)
	assert.NotEqual(t, ds1.Records, ds3.Records)
}

func TestGenerateBank_IDsAndRanges(t *testing.T) {
	cfg := smallConfig()
	bank, err := GenerateBank(cfg, NewSource(1), itembank.DefaultCatalog())
	require.NoError(t, err)

	q, ok := bank.Question("test_01_q_01")
	require.True(t, ok)
	assert.Equal(t, "test_01", q.TestID)
	assert.NotEmpty(t, q.Subskill)

	for _, q := range bank.All() {
		assert.GreaterOrEqual(t, q.Difficulty, itembank.MinDifficulty)
		assert.LessOrEqual(t, q.Difficulty, itembank.MaxDifficulty)
	}

	_, err = GenerateBank(cfg, NewSource(1), nil)
	assert.Error(t, err)
}

func TestProbability_Monotonic(t *testing.T) {
	sim, err := New(DefaultConfig(), NewSource(1))
	require.NoError(t, err)

	for d := itembank.MinDifficulty; d <= itembank.MaxDifficulty; d++ {
		prev := -1.0
		for a := 0.0; a <= 1.0; a += 0.1 {
			p := sim.Probability(a, d)
			assert.Greater(t, p, prev, "p must increase with ability (d=%d, a=%.1f)", d, a)
			prev = p
		}
	}
	for a := 0.0; a <= 1.0; a += 0.25 {
		prev := 2.0
		for d := itembank.MinDifficulty; d <= itembank.MaxDifficulty; d++ {
			p := sim.Probability(a, d)
			assert.Less(t, p, prev, "p must decrease with difficulty (a=%.2f, d=%d)", a, d)
			prev = p
		}
	}
}

func TestProbability_Clamped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Precision = 100
	sim, err := New(cfg, NewSource(1))
	require.NoError(t, err)

	assert.Equal(t, 1-cfg.Epsilon, sim.Probability(5, -10))
	assert.Equal(t, cfg.Epsilon, sim.Probability(-5, 99))
}

func TestDraw_EmpiricalAccuracyFollowsAbility(t *testing.T) {
	sim, err := New(DefaultConfig(), NewSource(3))
	require.NoError(t, err)

	q := itembank.Question{ID: "q", Topic: itembank.TopicAlgebra, Difficulty: 3}
	rate := func(ability float64) float64 {
		correct := 0
		const n = 4000
		for range n {
			if sim.Draw("s", ability, q, 1).Correct {
				correct++
			}
		}
		return float64(correct) / n
	}

	low, mid, high := rate(0.1), rate(0.5), rate(0.9)
	assert.Less(t, low, mid)
	assert.Less(t, mid, high)
}

func TestDraw_TotalOnOutOfRangeInput(t *testing.T) {
	sim, err := New(DefaultConfig(), NewSource(9))
	require.NoError(t, err)

	inputs := []struct {
		ability float64
		diff    int
		speed   float64
	}{
		{-3, 0, 0},
		{7, 42, 10},
		{0.5, -1, 1},
	}
	for _, in := range inputs {
		r := sim.Draw("s", in.ability, itembank.Question{ID: "q", Topic: "geometry", Difficulty: in.diff}, in.speed)
		assert.NoError(t, r.Check())
	}
}

func TestDraw_PhysicsSkewsToConcept(t *testing.T) {
	cfg := DefaultConfig()
	sim, err := New(cfg, NewSource(11))
	require.NoError(t, err)

	q := itembank.Question{ID: "q", Topic: itembank.TopicDynamics, Difficulty: 5}
	counts := map[answer.ErrorType]int{}
	for range 3000 {
		r := sim.Draw("s", 0, q, 1)
		counts[r.ErrorType]++
	}
	assert.Greater(t, counts[answer.ErrConcept], counts[answer.ErrSign])
	assert.Greater(t, counts[answer.ErrConcept], counts[answer.ErrDistraction])
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no students", func(c *Config) { c.Students = 0 }, "students"},
		{"bad noise", func(c *Config) { c.Noise = 0.6 }, "noise"},
		{"bad epsilon", func(c *Config) { c.Epsilon = 0 }, "epsilon"},
		{"time bounds", func(c *Config) { c.Time.Max = 5 }, "time bounds"},
		{"missing weight", func(c *Config) {
			c.Errors.Default = ErrorWeights{answer.ErrSign: 1}
		}, `missing weight for "concept"`},
		{"none in table", func(c *Config) {
			c.Errors.Default[answer.ErrNone] = 0.1
		}, "not a mistake type"},
		{"zero total", func(c *Config) {
			c.Errors.ByTopic[itembank.TopicAlgebra] = ErrorWeights{
				answer.ErrSign: 0, answer.ErrAlgebra: 0, answer.ErrFormula: 0,
				answer.ErrConcept: 0, answer.ErrDistraction: 0,
			}
		}, "positive total"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			_, err = New(cfg, NewSource(1))
			assert.Error(t, err)
		})
	}
}

func TestNew_NilSource(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	assert.Error(t, err)
}
