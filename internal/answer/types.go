package answer

import (
	"fmt"
	"strings"
)

// ErrorType classifies an answer attempt. ErrNone is reserved for correct
// answers; every other value is a mistake category.
type ErrorType string

const (
	ErrNone        ErrorType = "none"
	ErrSign        ErrorType = "sign"
	ErrAlgebra     ErrorType = "algebra"
	ErrFormula     ErrorType = "formula"
	ErrConcept     ErrorType = "concept"
	ErrDistraction ErrorType = "distraction"
)

// AllErrorTypes returns every category in canonical order, ErrNone first.
func AllErrorTypes() []ErrorType {
	return []ErrorType{ErrNone, ErrSign, ErrAlgebra, ErrFormula, ErrConcept, ErrDistraction}
}

// MistakeTypes returns the non-none categories in canonical order.
func MistakeTypes() []ErrorType {
	return []ErrorType{ErrSign, ErrAlgebra, ErrFormula, ErrConcept, ErrDistraction}
}

// IsMistake reports whether e is a known non-none category.
func (e ErrorType) IsMistake() bool {
	switch e {
	case ErrSign, ErrAlgebra, ErrFormula, ErrConcept, ErrDistraction:
		return true
	default:
		return false
	}
}

// Valid reports whether e belongs to the closed category set.
func (e ErrorType) Valid() bool {
	return e == ErrNone || e.IsMistake()
}

// DisplayName returns a human-readable label for the category.
func (e ErrorType) DisplayName() string {
	switch e {
	case ErrNone:
		return "None"
	case ErrSign:
		return "Sign"
	case ErrAlgebra:
		return "Algebra"
	case ErrFormula:
		return "Formula"
	case ErrConcept:
		return "Concept"
	case ErrDistraction:
		return "Distraction"
	default:
		return string(e)
	}
}

const (
	// DefaultTimeSeconds is used when an answer sheet has no timing column.
	DefaultTimeSeconds = 60.0

	// DefaultConfidence is used when an answer sheet has no confidence column.
	DefaultConfidence = 3

	MinConfidence = 1
	MaxConfidence = 5
)

// Record is one validated attempt by one student on one question.
// Correct is true exactly when ErrorType is ErrNone.
type Record struct {
	StudentID   string
	QuestionID  string
	Correct     bool
	ErrorType   ErrorType
	TimeSeconds float64
	Confidence  int
}

// Check verifies the record invariants. It is used on records that did not
// come through Ingest (for example simulator output in tests).
func (r Record) Check() error {
	switch {
	case strings.TrimSpace(r.StudentID) == "":
		return fmt.Errorf("missing student_id")
	case strings.TrimSpace(r.QuestionID) == "":
		return fmt.Errorf("missing question_id")
	case !r.ErrorType.Valid():
		return fmt.Errorf("unknown error_type %q", r.ErrorType)
	case r.Correct && r.ErrorType != ErrNone:
		return fmt.Errorf("correct answer with error_type %q", r.ErrorType)
	case !r.Correct && r.ErrorType == ErrNone:
		return fmt.Errorf("wrong answer with error_type none")
	case r.TimeSeconds <= 0:
		return fmt.Errorf("time_seconds must be > 0, got %g", r.TimeSeconds)
	case r.Confidence < MinConfidence || r.Confidence > MaxConfidence:
		return fmt.Errorf("confidence must be in [%d, %d], got %d", MinConfidence, MaxConfidence, r.Confidence)
	}
	return nil
}
