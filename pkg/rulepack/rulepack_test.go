package rulepack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platform-chatbot/internal/models"
)

const validPack = `{
	"investor_keywords": ["invest", "portfolio"],
	"entrepreneur_keywords": ["startup", "founder"],
	"intent_rules": [
		{"scope": "entrepreneur", "pattern": "need.*funding", "intent": "seeking-funding"},
		{"scope": "any", "pattern": "hello", "intent": "general-inquiry"}
	]
}`

func TestParse_ValidPack(t *testing.T) {
	c, err := Parse([]byte(validPack))
	require.NoError(t, err)

	result := c.Classify("hello", nil)
	assert.Equal(t, models.IntentGeneralInquiry, result.Intent)

	result = c.Classify("my startup needs funding as a founder", nil)
	assert.Equal(t, models.IntentSeekingFunding, result.Intent)
	assert.Equal(t, models.UserTypeEntrepreneur, result.UserType)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		pack string
	}{
		{"not json", `not json`},
		{"missing keyword lists", `{"intent_rules": []}`},
		{"bad scope", `{
			"investor_keywords": [], "entrepreneur_keywords": [],
			"intent_rules": [{"scope": "banker", "pattern": "x", "intent": "y"}]
		}`},
		{"missing pattern", `{
			"investor_keywords": [], "entrepreneur_keywords": [],
			"intent_rules": [{"scope": "any", "intent": "y"}]
		}`},
		{"invalid regexp", `{
			"investor_keywords": [], "entrepreneur_keywords": [],
			"intent_rules": [{"scope": "any", "pattern": "([", "intent": "y"}]
		}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.pack))
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	result := c.Classify("I need funding for my startup", nil)
	assert.Equal(t, models.IntentSeekingFunding, result.Intent)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(validPack), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	result := c.Classify("hello", nil)
	assert.Equal(t, models.IntentGeneralInquiry, result.Intent)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/rules.json")
	assert.Error(t, err)
}
