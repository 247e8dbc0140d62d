package simulate

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/itembank"
)

// Simulator draws answer records from latent abilities and question
// difficulty. It is not safe for concurrent use: all draws share one
// random source so that a seed reproduces a dataset exactly.
type Simulator struct {
	cfg Config
	rng *rand.Rand
}

// New creates a simulator over an injected random source.
func New(cfg Config, rng *rand.Rand) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("simulate: nil random source")
	}
	return &Simulator{cfg: cfg, rng: rng}, nil
}

// NewSource returns the PCG source used for a seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Probability returns the noise-free probability of a correct answer.
// It increases with ability, decreases with difficulty and is bounded to
// [Epsilon, 1-Epsilon].
func (s *Simulator) Probability(ability float64, difficulty int) float64 {
	a := clamp(ability, 0, 1)
	d := itembank.NormalizeDifficulty(difficulty)
	return clamp(sigmoid(s.cfg.Precision*(a-d)), s.cfg.Epsilon, 1-s.cfg.Epsilon)
}

// Draw simulates one attempt. Ability and speed are clamped rather than
// rejected so generation never fails for a valid configuration.
func (s *Simulator) Draw(studentID string, ability float64, q itembank.Question, speed float64) answer.Record {
	a := clamp(ability, 0, 1)
	d := itembank.NormalizeDifficulty(q.Difficulty)
	speed = clamp(speed, MinSpeed, MaxSpeed)

	p := sigmoid(s.cfg.Precision*(a-d)) + s.cfg.Noise*(2*s.rng.Float64()-1)
	p = clamp(p, s.cfg.Epsilon, 1-s.cfg.Epsilon)
	correct := s.rng.Float64() < p

	errType := answer.ErrNone
	if !correct {
		errType = s.sampleMistake(q.Topic, d)
	}

	return answer.Record{
		StudentID:   studentID,
		QuestionID:  q.ID,
		Correct:     correct,
		ErrorType:   errType,
		TimeSeconds: s.sampleTime(a, d, speed),
		Confidence:  s.sampleConfidence(a, d, correct),
	}
}

func (s *Simulator) sampleMistake(topic itembank.Topic, d float64) answer.ErrorType {
	weights := s.cfg.Errors.weightsFor(topic)
	skew := 1 + s.cfg.Errors.DifficultySkew*d

	mistakes := answer.MistakeTypes()
	w := make([]float64, len(mistakes))
	total := 0.0
	for i, t := range mistakes {
		w[i] = weights[t]
		if t == answer.ErrConcept || t == answer.ErrFormula {
			w[i] *= skew
		}
		total += w[i]
	}

	u := s.rng.Float64() * total
	for i, t := range mistakes {
		u -= w[i]
		if u < 0 && w[i] > 0 {
			return t
		}
	}
	// Rounding left u at or above zero; take the last weighted category.
	for i := len(mistakes) - 1; i >= 0; i-- {
		if w[i] > 0 {
			return mistakes[i]
		}
	}
	return answer.ErrDistraction
}

func (s *Simulator) sampleTime(a, d, speed float64) float64 {
	t := s.cfg.Time
	mean := (t.Base + t.PerDifficulty*d) * (t.AbilityOffset - t.AbilityWeight*a) * speed
	v := clamp(mean+s.rng.NormFloat64()*t.Jitter, t.Min, t.Max)
	return math.Round(v*100) / 100
}

func (s *Simulator) sampleConfidence(a, d float64, correct bool) int {
	c := s.cfg.Confidence
	mean := 1 + 4*a - c.DifficultyPenalty*d
	if !correct {
		mean -= c.WrongPenalty
	}
	v := mean + s.rng.NormFloat64()*c.Jitter
	return answer.ClampConfidence(int(math.Round(v)))
}

// Dataset is a simulated cohort's answers. Latent abilities are not part
// of it.
type Dataset struct {
	Students []string
	Records  []answer.Record
}

// Run simulates every configured student answering every bank question.
// Students draw one ability per bank topic and one speed factor.
func (s *Simulator) Run(bank *itembank.Bank) Dataset {
	topics := bank.Topics()
	questions := bank.All()

	ds := Dataset{
		Students: make([]string, 0, s.cfg.Students),
		Records:  make([]answer.Record, 0, s.cfg.Students*len(questions)),
	}

	for i := 1; i <= s.cfg.Students; i++ {
		id := StudentID(i)
		ds.Students = append(ds.Students, id)

		abilities := make(map[itembank.Topic]float64, len(topics))
		for _, t := range topics {
			abilities[t] = clamp(s.cfg.AbilityMean+s.rng.NormFloat64()*s.cfg.AbilitySpread, 0, 1)
		}
		speed := clamp(1+s.rng.NormFloat64()*s.cfg.SpeedSpread, MinSpeed, MaxSpeed)

		for _, q := range questions {
			ds.Records = append(ds.Records, s.Draw(id, abilities[q.Topic], q, speed))
		}
	}
	return ds
}

// StudentID formats the anonymous identifier of the i-th simulated student.
func StudentID(i int) string {
	return fmt.Sprintf("student_%04d", i)
}

// GenerateBank builds a synthetic bank of Tests x QuestionsPerTest questions
// with topics, subskills and difficulties drawn from the catalog.
func GenerateBank(cfg Config, rng *rand.Rand, catalog []itembank.CatalogEntry) (*itembank.Bank, error) {
	if len(catalog) == 0 {
		return nil, fmt.Errorf("simulate: empty topic catalog")
	}

	questions := make([]itembank.Question, 0, cfg.Tests*cfg.QuestionsPerTest)
	for t := 1; t <= cfg.Tests; t++ {
		testID := fmt.Sprintf("test_%02d", t)
		for n := 1; n <= cfg.QuestionsPerTest; n++ {
			entry := catalog[rng.IntN(len(catalog))]
			subskill := ""
			if len(entry.Subskills) > 0 {
				subskill = entry.Subskills[rng.IntN(len(entry.Subskills))]
			}
			questions = append(questions, itembank.Question{
				ID:         fmt.Sprintf("%s_q_%02d", testID, n),
				Topic:      entry.Topic,
				Difficulty: itembank.MinDifficulty + rng.IntN(itembank.MaxDifficulty-itembank.MinDifficulty+1),
				TestID:     testID,
				Subskill:   subskill,
			})
		}
	}
	return itembank.New(questions)
}

// Generate builds a bank and a cohort from cfg.Seed alone.
func Generate(cfg Config) (*itembank.Bank, Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Dataset{}, err
	}
	rng := NewSource(cfg.Seed)

	bank, err := GenerateBank(cfg, rng, itembank.DefaultCatalog())
	if err != nil {
		return nil, Dataset{}, fmt.Errorf("generate bank: %w", err)
	}
	sim, err := New(cfg, rng)
	if err != nil {
		return nil, Dataset{}, err
	}
	return bank, sim.Run(bank), nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
