package recommend

import (
	"fmt"
	"strings"
)

// Weights combine the three deficit signals into the composite score.
type Weights struct {
	Deficit    float64 `yaml:"deficit"`
	ErrorShare float64 `yaml:"error_share"`
	TimeExcess float64 `yaml:"time_excess"`
}

// Config controls candidate selection, scoring and tiering.
type Config struct {
	// TargetAccuracy is the accuracy a topic is measured against.
	TargetAccuracy float64 `yaml:"target_accuracy"`
	// AccuracyFloor admits non-weakness topics below it as candidates.
	AccuracyFloor float64 `yaml:"accuracy_floor"`
	// BaselineTime is the expected mean seconds per question.
	BaselineTime float64 `yaml:"baseline_time"`
	// SlowTime adds a timed-drill action above it.
	SlowTime float64 `yaml:"slow_time"`

	Weights Weights `yaml:"weights"`

	// HighFrom and MediumFrom are inclusive composite cut points.
	HighFrom   float64 `yaml:"high_from"`
	MediumFrom float64 `yaml:"medium_from"`

	// MaxRecommendations caps the list per student. Zero means no cap.
	MaxRecommendations int `yaml:"max_recommendations"`
}

// DefaultConfig returns the standard engine settings.
func DefaultConfig() Config {
	return Config{
		TargetAccuracy: 0.70,
		AccuracyFloor:  0.50,
		BaselineTime:   60,
		SlowTime:       120,
		Weights: Weights{
			Deficit:    0.6,
			ErrorShare: 0.25,
			TimeExcess: 0.15,
		},
		HighFrom:           0.25,
		MediumFrom:         0.12,
		MaxRecommendations: 5,
	}
}

// Validate checks the configuration. Returns a combined error describing
// all problems found, or nil if valid.
func (c Config) Validate() error {
	var errs []string

	if c.TargetAccuracy <= 0 || c.TargetAccuracy > 1 {
		errs = append(errs, fmt.Sprintf("target_accuracy must be in (0, 1], got %g", c.TargetAccuracy))
	}
	if c.AccuracyFloor < 0 || c.AccuracyFloor > 1 {
		errs = append(errs, fmt.Sprintf("accuracy_floor must be in [0, 1], got %g", c.AccuracyFloor))
	}
	if c.BaselineTime <= 0 {
		errs = append(errs, fmt.Sprintf("baseline_time must be > 0, got %g", c.BaselineTime))
	}
	if c.SlowTime < c.BaselineTime {
		errs = append(errs, fmt.Sprintf("slow_time (%g) must be >= baseline_time (%g)", c.SlowTime, c.BaselineTime))
	}

	w := c.Weights
	if w.Deficit < 0 || w.ErrorShare < 0 || w.TimeExcess < 0 {
		errs = append(errs, "weights must be >= 0")
	}
	if w.Deficit+w.ErrorShare+w.TimeExcess <= 0 {
		errs = append(errs, "weights must have a positive total")
	}

	if c.MediumFrom <= 0 || c.HighFrom <= c.MediumFrom {
		errs = append(errs, fmt.Sprintf("tier cut points must satisfy 0 < medium_from < high_from, got %g, %g", c.MediumFrom, c.HighFrom))
	}
	if c.MaxRecommendations < 0 {
		errs = append(errs, fmt.Sprintf("max_recommendations must be >= 0, got %d", c.MaxRecommendations))
	}

	if len(errs) > 0 {
		return fmt.Errorf("recommendation config invalid:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
