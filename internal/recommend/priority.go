package recommend

// Priority is the urgency tier of a recommendation. Lower is more urgent.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

// AllPriorities returns the tiers from most to least urgent.
func AllPriorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// TierFor maps a composite score to its tier.
func (c Config) TierFor(score float64) Priority {
	switch {
	case score >= c.HighFrom:
		return PriorityHigh
	case score >= c.MediumFrom:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
