package config

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://studentperf-config.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func number(lo float64) map[string]any {
	return map[string]any{"type": "number", "minimum": lo}
}

func unit() map[string]any {
	return map[string]any{"type": "number", "minimum": 0, "maximum": 1}
}

func object(props map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

// errorWeights accepts only mistake types; tables replace the default
// table wholesale, so completeness is checked after decoding.
func errorWeights() map[string]any {
	return object(map[string]any{
		"sign":        number(0),
		"algebra":     number(0),
		"formula":     number(0),
		"concept":     number(0),
		"distraction": number(0),
	})
}

// schemaDefinition describes the accepted shape of a config file.
func schemaDefinition() map[string]any {
	return object(map[string]any{
		"simulation": object(map[string]any{
			"seed":               map[string]any{"type": "integer", "minimum": 0},
			"students":           map[string]any{"type": "integer", "minimum": 1},
			"tests":              map[string]any{"type": "integer", "minimum": 1},
			"questions_per_test": map[string]any{"type": "integer", "minimum": 1},
			"ability_mean":       unit(),
			"ability_spread":     number(0),
			"speed_spread":       number(0),
			"precision":          number(0),
			"noise":              number(0),
			"epsilon":            number(0),
			"time": object(map[string]any{
				"base":           number(0),
				"per_difficulty": number(0),
				"ability_offset": number(0),
				"ability_weight": number(0),
				"jitter":         number(0),
				"min":            number(0),
				"max":            number(0),
			}),
			"confidence": object(map[string]any{
				"difficulty_penalty": number(0),
				"wrong_penalty":      number(0),
				"jitter":             number(0),
			}),
			"errors": object(map[string]any{
				"default": errorWeights(),
				"by_topic": map[string]any{
					"type":                 "object",
					"additionalProperties": errorWeights(),
				},
				"difficulty_skew": number(0),
			}),
		}),
		"profile": object(map[string]any{
			"intermediate_from": unit(),
			"advanced_from":     unit(),
			"strength_from":     unit(),
			"weakness_up_to":    unit(),
			"relative_gap":      unit(),
		}),
		"recommend": object(map[string]any{
			"target_accuracy": unit(),
			"accuracy_floor":  unit(),
			"baseline_time":   number(0),
			"slow_time":       number(0),
			"weights": object(map[string]any{
				"deficit":     number(0),
				"error_share": number(0),
				"time_excess": number(0),
			}),
			"high_from":           number(0),
			"medium_from":         number(0),
			"max_recommendations": map[string]any{"type": "integer", "minimum": 0},
		}),
		"vocabulary": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "string"},
		},
		"workers": map[string]any{"type": "integer", "minimum": 0},
	})
}

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a parsed JSON value, so round-trip the Go
		// definition through encoding/json.
		defBytes, err := json.Marshal(schemaDefinition())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, defParsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// validateDocument checks a decoded YAML document against the schema.
func validateDocument(doc any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	// YAML decodes numbers as int/float64; normalise to the JSON model.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config is not representable as JSON: %w", err)
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("%w: schema validation failed: %v", ErrInvalid, err)
	}
	return nil
}
