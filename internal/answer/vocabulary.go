package answer

import (
	"fmt"
	"sort"
	"strings"
)

// Vocabulary maps the spellings found in answer sheets to the closed
// ErrorType set. Keys are lower-case and trimmed.
type Vocabulary map[string]ErrorType

// defaultAliases covers the Italian labels used by the first answer sheets.
var defaultAliases = map[string]ErrorType{
	"segno":       ErrSign,
	"concetto":    ErrConcept,
	"distrazione": ErrDistraction,
	"":            ErrNone,
}

// DefaultVocabulary returns the canonical names plus the built-in aliases.
func DefaultVocabulary() Vocabulary {
	v := make(Vocabulary, len(defaultAliases)+len(AllErrorTypes()))
	for _, t := range AllErrorTypes() {
		v[string(t)] = t
	}
	for k, t := range defaultAliases {
		v[k] = t
	}
	return v
}

// NewVocabulary extends the default vocabulary with extra aliases
// (alias → canonical name). Every target must be a known category.
func NewVocabulary(aliases map[string]string) (Vocabulary, error) {
	v := DefaultVocabulary()

	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []string
	for _, alias := range keys {
		target := ErrorType(strings.ToLower(strings.TrimSpace(aliases[alias])))
		if !target.Valid() {
			errs = append(errs, fmt.Sprintf("alias %q maps to unknown error type %q", alias, aliases[alias]))
			continue
		}
		v[normalizeKey(alias)] = target
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("error vocabulary invalid:\n  %s", strings.Join(errs, "\n  "))
	}
	return v, nil
}

// Parse resolves a raw label. The second result is false for unknown labels.
func (v Vocabulary) Parse(raw string) (ErrorType, bool) {
	t, ok := v[normalizeKey(raw)]
	return t, ok
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
