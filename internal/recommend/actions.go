package recommend

import (
	"fmt"

	"github.com/alesfias96/student-performance-ai/internal/answer"
)

// actions maps every mistake type to its remediation steps.
var actions = map[answer.ErrorType][]string{
	answer.ErrSign: {
		"Write out every step and finish with a sign check (+/-)",
		"Do 10 short exercises a day focused only on sign handling",
	},
	answer.ErrAlgebra: {
		"Review the basic rules (distribution, fractions, factoring)",
		"Work guided exercises first with the solution, then without",
	},
	answer.ErrFormula: {
		"Build a formula sheet of at most 10 formulas and review it daily",
		"Practice recognizing which formula applies with quick examples",
	},
	answer.ErrConcept: {
		"Revisit the theory with 2-3 simple examples, then raise difficulty",
		"Explain the concept aloud in 60 seconds; if you cannot, it is not clear yet",
	},
	answer.ErrDistraction: {
		"Make a final check mandatory: units, sign, order of magnitude",
		"Slow down by 10%: zero mistakes first, then speed",
	},
}

var practiceAction = []string{
	"Solve 15 exercises on the topic from easy to medium, noting the mistakes",
	"After 2 days, redo the same exercises without looking",
}

const timedDrillAction = "Add 5 timed exercises (60-90s timer) to build automaticity"

// ActionsFor returns the remediation steps for a dominant mistake type.
// ErrNone yields the generic practice steps.
func ActionsFor(e answer.ErrorType) []string {
	if steps, ok := actions[e]; ok {
		return append([]string(nil), steps...)
	}
	return append([]string(nil), practiceAction...)
}

// checkActionTable verifies that every mistake type has steps.
func checkActionTable() error {
	for _, e := range answer.MistakeTypes() {
		if len(actions[e]) == 0 {
			return fmt.Errorf("no remediation steps for error type %q", e)
		}
	}
	return nil
}
