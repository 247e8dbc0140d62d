package simulate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/itembank"
)

// ErrorWeights is a categorical distribution over the mistake types.
// Weights need not sum to 1; they are normalized when sampling.
type ErrorWeights map[answer.ErrorType]float64

// ErrorPolicy chooses the mistake distribution for a wrong answer.
type ErrorPolicy struct {
	// Default applies to topics without an entry in ByTopic.
	Default ErrorWeights `yaml:"default"`
	// ByTopic overrides Default per topic.
	ByTopic map[itembank.Topic]ErrorWeights `yaml:"by_topic"`
	// DifficultySkew scales the concept and formula weights by
	// (1 + DifficultySkew * normalized difficulty). Zero disables it.
	DifficultySkew float64 `yaml:"difficulty_skew"`
}

// TimeConfig shapes the response-time distribution. The mean is
// (Base + PerDifficulty*d) * (AbilityOffset - AbilityWeight*a) * speed.
type TimeConfig struct {
	Base          float64 `yaml:"base"`
	PerDifficulty float64 `yaml:"per_difficulty"`
	AbilityOffset float64 `yaml:"ability_offset"`
	AbilityWeight float64 `yaml:"ability_weight"`
	Jitter        float64 `yaml:"jitter"`
	Min           float64 `yaml:"min"`
	Max           float64 `yaml:"max"`
}

// ConfidenceConfig shapes self-reported confidence. The mean is
// 1 + 4*a - DifficultyPenalty*d, minus WrongPenalty for wrong answers.
type ConfidenceConfig struct {
	DifficultyPenalty float64 `yaml:"difficulty_penalty"`
	WrongPenalty      float64 `yaml:"wrong_penalty"`
	Jitter            float64 `yaml:"jitter"`
}

// Config controls dataset size and the response model.
type Config struct {
	Seed             uint64 `yaml:"seed"`
	Students         int    `yaml:"students"`
	Tests            int    `yaml:"tests"`
	QuestionsPerTest int    `yaml:"questions_per_test"`

	// AbilityMean and AbilitySpread parameterize the per-topic latent
	// ability draw, clamped to [0, 1].
	AbilityMean   float64 `yaml:"ability_mean"`
	AbilitySpread float64 `yaml:"ability_spread"`
	// SpeedSpread is the standard deviation of the per-student speed
	// factor around 1, clamped to [MinSpeed, MaxSpeed].
	SpeedSpread float64 `yaml:"speed_spread"`

	// Precision scales (ability - difficulty) inside the logistic.
	Precision float64 `yaml:"precision"`
	// Noise is the half-width of the uniform perturbation added to p.
	Noise float64 `yaml:"noise"`
	// Epsilon keeps p inside [Epsilon, 1-Epsilon].
	Epsilon float64 `yaml:"epsilon"`

	Time       TimeConfig       `yaml:"time"`
	Confidence ConfidenceConfig `yaml:"confidence"`
	Errors     ErrorPolicy      `yaml:"errors"`
}

const (
	MinSpeed = 0.7
	MaxSpeed = 1.3
)

// DefaultConfig returns the standard synthetic-cohort settings.
func DefaultConfig() Config {
	return Config{
		Seed:             42,
		Students:         200,
		Tests:            3,
		QuestionsPerTest: 25,
		AbilityMean:      0.5,
		AbilitySpread:    0.17,
		SpeedSpread:      0.15,
		Precision:        4.0,
		Noise:            0.05,
		Epsilon:          0.01,
		Time: TimeConfig{
			Base:          40,
			PerDifficulty: 25,
			AbilityOffset: 1.2,
			AbilityWeight: 0.6,
			Jitter:        8,
			Min:           10,
			Max:           240,
		},
		Confidence: ConfidenceConfig{
			DifficultyPenalty: 0.5,
			WrongPenalty:      0.8,
			Jitter:            0.35,
		},
		Errors: DefaultErrorPolicy(),
	}
}

// DefaultErrorPolicy returns topic-conditioned mistake weights: algebra
// skews to sign/algebra slips, derivatives to formula, physics to concept.
func DefaultErrorPolicy() ErrorPolicy {
	physics := ErrorWeights{
		answer.ErrSign: 0.05, answer.ErrAlgebra: 0.10, answer.ErrFormula: 0.25,
		answer.ErrConcept: 0.50, answer.ErrDistraction: 0.10,
	}
	return ErrorPolicy{
		Default: ErrorWeights{
			answer.ErrSign: 0.15, answer.ErrAlgebra: 0.20, answer.ErrFormula: 0.20,
			answer.ErrConcept: 0.25, answer.ErrDistraction: 0.20,
		},
		ByTopic: map[itembank.Topic]ErrorWeights{
			itembank.TopicAlgebra: {
				answer.ErrSign: 0.35, answer.ErrAlgebra: 0.35, answer.ErrFormula: 0.10,
				answer.ErrConcept: 0.05, answer.ErrDistraction: 0.15,
			},
			itembank.TopicDerivatives: {
				answer.ErrSign: 0.10, answer.ErrAlgebra: 0.15, answer.ErrFormula: 0.40,
				answer.ErrConcept: 0.25, answer.ErrDistraction: 0.10,
			},
			itembank.TopicDynamics: physics,
			itembank.TopicEnergy:   physics,
		},
		DifficultySkew: 1.0,
	}
}

// Validate checks the configuration. Returns a combined error describing
// all problems found, or nil if valid.
func (c Config) Validate() error {
	var errs []string
	add := func(format string, args ...any) { errs = append(errs, fmt.Sprintf(format, args...)) }

	if c.Students <= 0 {
		add("students must be > 0, got %d", c.Students)
	}
	if c.Tests <= 0 {
		add("tests must be > 0, got %d", c.Tests)
	}
	if c.QuestionsPerTest <= 0 {
		add("questions_per_test must be > 0, got %d", c.QuestionsPerTest)
	}
	if c.AbilityMean < 0 || c.AbilityMean > 1 {
		add("ability_mean must be in [0, 1], got %g", c.AbilityMean)
	}
	if c.AbilitySpread < 0 {
		add("ability_spread must be >= 0, got %g", c.AbilitySpread)
	}
	if c.SpeedSpread < 0 {
		add("speed_spread must be >= 0, got %g", c.SpeedSpread)
	}
	if c.Precision <= 0 {
		add("precision must be > 0, got %g", c.Precision)
	}
	if c.Noise < 0 || c.Noise >= 0.5 {
		add("noise must be in [0, 0.5), got %g", c.Noise)
	}
	if c.Epsilon <= 0 || c.Epsilon >= 0.5 {
		add("epsilon must be in (0, 0.5), got %g", c.Epsilon)
	}

	t := c.Time
	if t.Base <= 0 {
		add("time.base must be > 0, got %g", t.Base)
	}
	if t.PerDifficulty < 0 {
		add("time.per_difficulty must be >= 0, got %g", t.PerDifficulty)
	}
	if t.AbilityWeight < 0 {
		add("time.ability_weight must be >= 0, got %g", t.AbilityWeight)
	}
	if t.AbilityOffset-t.AbilityWeight <= 0 {
		add("time.ability_offset must exceed time.ability_weight (%g <= %g)", t.AbilityOffset, t.AbilityWeight)
	}
	if t.Jitter < 0 {
		add("time.jitter must be >= 0, got %g", t.Jitter)
	}
	if t.Min <= 0 || t.Max <= t.Min {
		add("time bounds must satisfy 0 < min < max, got [%g, %g]", t.Min, t.Max)
	}

	cf := c.Confidence
	if cf.DifficultyPenalty < 0 || cf.WrongPenalty < 0 || cf.Jitter < 0 {
		add("confidence penalties and jitter must be >= 0")
	}

	errs = append(errs, c.Errors.validate()...)

	if len(errs) > 0 {
		return fmt.Errorf("simulation config invalid:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (p ErrorPolicy) validate() []string {
	var errs []string
	errs = append(errs, p.Default.validate("errors.default")...)

	topics := make([]string, 0, len(p.ByTopic))
	for t := range p.ByTopic {
		topics = append(topics, string(t))
	}
	sort.Strings(topics)
	for _, t := range topics {
		errs = append(errs, p.ByTopic[itembank.Topic(t)].validate("errors.by_topic."+t)...)
	}

	if p.DifficultySkew < 0 {
		errs = append(errs, fmt.Sprintf("errors.difficulty_skew must be >= 0, got %g", p.DifficultySkew))
	}
	return errs
}

// validate requires an exhaustive, non-negative table with a positive total.
func (w ErrorWeights) validate(path string) []string {
	var errs []string
	for k := range w {
		if !k.IsMistake() {
			errs = append(errs, fmt.Sprintf("%s: %q is not a mistake type", path, k))
		}
	}
	total := 0.0
	for _, t := range answer.MistakeTypes() {
		v, ok := w[t]
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: missing weight for %q", path, t))
			continue
		}
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s: weight for %q must be >= 0, got %g", path, t, v))
		}
		total += v
	}
	if total <= 0 {
		errs = append(errs, fmt.Sprintf("%s: weights must have a positive total", path))
	}
	sort.Strings(errs)
	return errs
}

// weightsFor returns the table that applies to a topic.
func (p ErrorPolicy) weightsFor(t itembank.Topic) ErrorWeights {
	if w, ok := p.ByTopic[t]; ok {
		return w
	}
	return p.Default
}
