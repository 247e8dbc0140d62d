package profile

import (
	"fmt"
	"math"
	"strings"
)

// Thresholds holds the accuracy cut points used by the profiler. All
// lower bounds are inclusive; WeaknessUpTo is an inclusive upper bound.
type Thresholds struct {
	// IntermediateFrom and AdvancedFrom split accuracy into levels.
	IntermediateFrom float64 `yaml:"intermediate_from"`
	AdvancedFrom     float64 `yaml:"advanced_from"`

	// StrengthFrom labels a topic a strength. It takes precedence over
	// every weakness rule.
	StrengthFrom float64 `yaml:"strength_from"`
	// WeaknessUpTo labels a topic a weakness on absolute accuracy.
	WeaknessUpTo float64 `yaml:"weakness_up_to"`
	// RelativeGap labels a topic a weakness when its accuracy is more than
	// this far below the student's overall accuracy. Zero disables it.
	RelativeGap float64 `yaml:"relative_gap"`
}

// DefaultThresholds returns the standard cut points.
func DefaultThresholds() Thresholds {
	return Thresholds{
		IntermediateFrom: 0.50,
		AdvancedFrom:     0.75,
		StrengthFrom:     0.80,
		WeaknessUpTo:     0.55,
		RelativeGap:      0.20,
	}
}

// Validate checks that the cut points are inside [0, 1] and ordered.
// Returns a combined error describing all problems found, or nil if valid.
func (t Thresholds) Validate() error {
	var errs []string

	check := func(name string, v float64) {
		if math.IsNaN(v) || v < 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("%s must be in [0, 1], got %g", name, v))
		}
	}
	check("intermediate_from", t.IntermediateFrom)
	check("advanced_from", t.AdvancedFrom)
	check("strength_from", t.StrengthFrom)
	check("weakness_up_to", t.WeaknessUpTo)
	check("relative_gap", t.RelativeGap)

	if t.IntermediateFrom >= t.AdvancedFrom {
		errs = append(errs, fmt.Sprintf("intermediate_from (%g) must be below advanced_from (%g)", t.IntermediateFrom, t.AdvancedFrom))
	}
	if t.WeaknessUpTo >= t.StrengthFrom {
		errs = append(errs, fmt.Sprintf("weakness_up_to (%g) must be below strength_from (%g)", t.WeaknessUpTo, t.StrengthFrom))
	}

	if len(errs) > 0 {
		return fmt.Errorf("profile thresholds invalid:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// LevelFor returns the level for an accuracy value. NaN counts as 0 and
// out-of-range values are clamped.
func (t Thresholds) LevelFor(accuracy float64) Level {
	a := sanitize(accuracy)
	switch {
	case a >= t.AdvancedFrom:
		return LevelAdvanced
	case a >= t.IntermediateFrom:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}

// LabelFor returns the label of a topic accuracy given the student's
// overall accuracy.
func (t Thresholds) LabelFor(accuracy, studentAccuracy float64) Label {
	a := sanitize(accuracy)
	s := sanitize(studentAccuracy)
	switch {
	case a >= t.StrengthFrom:
		return LabelStrength
	case a <= t.WeaknessUpTo:
		return LabelWeakness
	case t.RelativeGap > 0 && a < s-t.RelativeGap:
		return LabelWeakness
	default:
		return LabelNeutral
	}
}

func sanitize(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
