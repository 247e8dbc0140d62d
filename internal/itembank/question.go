package itembank

// Topic is a named skill domain, e.g. "algebra".
type Topic string

const (
	TopicAlgebra     Topic = "algebra"
	TopicFunctions   Topic = "functions"
	TopicDerivatives Topic = "derivatives"
	TopicDynamics    Topic = "physics-dynamics"
	TopicEnergy      Topic = "physics-energy"
)

// DisplayName returns a human-readable name for the topic.
func (t Topic) DisplayName() string {
	switch t {
	case TopicAlgebra:
		return "Algebra"
	case TopicFunctions:
		return "Functions"
	case TopicDerivatives:
		return "Derivatives"
	case TopicDynamics:
		return "Physics: Dynamics"
	case TopicEnergy:
		return "Physics: Energy"
	default:
		return string(t)
	}
}

const (
	// MinDifficulty and MaxDifficulty bound the ordinal difficulty scale.
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Question is one item in the bank.
type Question struct {
	ID         string
	Topic      Topic
	Difficulty int
	TestID     string // optional
	Subskill   string // optional
}

// NormalizeDifficulty maps the ordinal difficulty onto [0, 1], clamping
// values outside the scale.
func NormalizeDifficulty(d int) float64 {
	if d <= MinDifficulty {
		return 0
	}
	if d >= MaxDifficulty {
		return 1
	}
	return float64(d-MinDifficulty) / float64(MaxDifficulty-MinDifficulty)
}

// CatalogEntry lists the subskills of one topic.
type CatalogEntry struct {
	Topic     Topic
	Subskills []string
}

// DefaultCatalog returns the topics and subskills used for synthetic banks,
// in display order.
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{Topic: TopicAlgebra, Subskills: []string{"fractions", "signs", "factoring", "linear-equations"}},
		{Topic: TopicFunctions, Subskills: []string{"domain", "graph", "composition"}},
		{Topic: TopicDerivatives, Subskills: []string{"basic-rules", "product-rule", "chain-rule"}},
		{Topic: TopicDynamics, Subskills: []string{"newton", "friction", "forces"}},
		{Topic: TopicEnergy, Subskills: []string{"work", "kinetic-energy", "conservation"}},
	}
}
