package profile

// Level is the mastery band of an accuracy value.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// AllLevels returns all levels from lowest to highest.
func AllLevels() []Level {
	return []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}
}

// DisplayName returns a human-readable label for the level.
func (l Level) DisplayName() string {
	switch l {
	case LevelBeginner:
		return "Beginner"
	case LevelIntermediate:
		return "Intermediate"
	case LevelAdvanced:
		return "Advanced"
	default:
		return string(l)
	}
}

// Label tags a topic relative to fixed and student-relative thresholds.
type Label string

const (
	LabelStrength Label = "strength"
	LabelNeutral  Label = "neutral"
	LabelWeakness Label = "weakness"
)

// AllLabels returns all labels.
func AllLabels() []Label {
	return []Label{LabelStrength, LabelNeutral, LabelWeakness}
}

func (l Label) DisplayName() string {
	switch l {
	case LabelStrength:
		return "Strength"
	case LabelNeutral:
		return "Neutral"
	case LabelWeakness:
		return "Weakness"
	default:
		return string(l)
	}
}
