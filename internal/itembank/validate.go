package itembank

import (
	"fmt"
	"strings"
)

// validateQuestions performs all structural checks on a question set.
// Returns a combined error describing all problems found, or nil if valid.
// Difficulty is not range-checked: consumers clamp it.
func validateQuestions(questions []Question) error {
	var errs []string

	if len(questions) == 0 {
		errs = append(errs, "bank has no questions")
	}

	idSet := make(map[string]bool, len(questions))
	for i, q := range questions {
		id := strings.TrimSpace(q.ID)
		if id == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty ID", i))
			continue
		}
		if id != q.ID {
			errs = append(errs, fmt.Sprintf("question %q: ID has surrounding whitespace", q.ID))
		}
		if idSet[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question ID: %q", q.ID))
		}
		idSet[q.ID] = true

		if strings.TrimSpace(string(q.Topic)) == "" {
			errs = append(errs, fmt.Sprintf("question %q: empty topic", q.ID))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("item bank validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
