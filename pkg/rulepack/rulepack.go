// Package rulepack loads external classifier rule packs from JSON files and
// validates them against a schema before they reach the classifier.
package rulepack

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"platform-chatbot/internal/chat/classifier"
)

const packSchema = `{
	"type": "object",
	"required": ["investor_keywords", "entrepreneur_keywords", "intent_rules"],
	"properties": {
		"investor_keywords": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		},
		"entrepreneur_keywords": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		},
		"intent_rules": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["pattern", "intent"],
				"properties": {
					"scope": {"enum": ["any", "investor", "entrepreneur", ""]},
					"pattern": {"type": "string", "minLength": 1},
					"intent": {"type": "string", "minLength": 1}
				}
			}
		}
	}
}`

// Load reads a rule pack from disk, validates it, and compiles it into a
// classifier. An empty path yields the built-in default rules.
func Load(path string) (*classifier.Classifier, error) {
	if path == "" {
		return classifier.New(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule pack %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates and compiles a raw JSON rule pack.
func Parse(data []byte) (*classifier.Classifier, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(packSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile rule pack schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("rule pack is not valid JSON: %w", err)
	}
	if !result.Valid() {
		details := ""
		for i, verr := range result.Errors() {
			if i > 0 {
				details += "; "
			}
			details += verr.String()
		}
		return nil, fmt.Errorf("rule pack failed validation: %s", details)
	}

	var rs classifier.Ruleset
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to decode rule pack: %w", err)
	}
	return classifier.NewFromRuleset(rs)
}
