package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platform-chatbot/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func turnWith(userType models.UserType) models.Turn {
	return models.Turn{
		Message:   "earlier message",
		Intent:    models.IntentGeneralInquiry,
		UserType:  userType,
		Response:  "earlier response",
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestClassify_IntentDetection(t *testing.T) {
	c := New()

	tests := []struct {
		name             string
		message          string
		expectedIntent   models.Intent
		expectedUserType models.UserType
	}{
		{
			name:             "entrepreneur seeking funding",
			message:          "I need funding for my startup",
			expectedIntent:   models.IntentSeekingFunding,
			expectedUserType: models.UserTypeEntrepreneur,
		},
		{
			name:             "entrepreneur scaling with funding",
			message:          "We need funding to scale our startup",
			expectedIntent:   models.IntentSeekingFunding,
			expectedUserType: models.UserTypeEntrepreneur,
		},
		{
			name:             "entrepreneur pitch feedback",
			message:          "Can you review my pitch deck?",
			expectedIntent:   models.IntentPitchFeedback,
			expectedUserType: models.UserTypeEntrepreneur,
		},
		{
			name:             "investor looking for deals",
			message:          "I am looking for investment opportunities",
			expectedIntent:   models.IntentSeekingInvestment,
			expectedUserType: models.UserTypeInvestor,
		},
		{
			name:             "investor portfolio question",
			message:          "How does portfolio management work for my investments?",
			expectedIntent:   models.IntentPortfolioInquiry,
			expectedUserType: models.UserTypeInvestor,
		},
		{
			name:             "greeting",
			message:          "Hello there",
			expectedIntent:   models.IntentGeneralInquiry,
			expectedUserType: models.UserTypeUnknown,
		},
		{
			name:             "platform question",
			message:          "How does this platform work?",
			expectedIntent:   models.IntentPlatformInfo,
			expectedUserType: models.UserTypeUnknown,
		},
		{
			name:             "registration",
			message:          "How do I sign up for an account?",
			expectedIntent:   models.IntentRegistration,
			expectedUserType: models.UserTypeUnknown,
		},
		{
			name:             "scheduling",
			message:          "Can we schedule a meeting next week?",
			expectedIntent:   models.IntentScheduling,
			expectedUserType: models.UserTypeUnknown,
		},
		{
			name:             "unrecognized input",
			message:          "the weather is nice today",
			expectedIntent:   models.IntentUnknown,
			expectedUserType: models.UserTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(tt.message, nil)
			assert.Equal(t, tt.expectedIntent, result.Intent)
			assert.Equal(t, tt.expectedUserType, result.UserType)
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := New()
	message := "I need funding for my startup"

	first := c.Classify(message, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(message, nil))
	}
}

func TestClassify_ConfidenceBounds(t *testing.T) {
	c := New()

	messages := []string{
		"I need funding for my startup",
		"I want to invest in companies",
		"hello",
		"completely unrelated text",
		"as an investor I am raising funding for my startup", // mixed signals
	}

	for _, msg := range messages {
		result := c.Classify(msg, nil)
		assert.GreaterOrEqual(t, result.Confidence, 0.0, "message %q", msg)
		assert.LessOrEqual(t, result.Confidence, 1.0, "message %q", msg)
	}
}

func TestClassify_UserTypeInheritedFromHistory(t *testing.T) {
	c := New()

	history := []models.Turn{turnWith(models.UserTypeInvestor)}
	result := c.Classify("tell me more", history)

	assert.Equal(t, models.UserTypeInvestor, result.UserType)
	assert.Equal(t, 0.0, result.Confidence, "inherited type carries no fresh evidence")
}

func TestClassify_RoleEvidenceBeatsHistory(t *testing.T) {
	c := New()

	history := []models.Turn{turnWith(models.UserTypeInvestor)}
	result := c.Classify("I need funding for my startup", history)

	assert.Equal(t, models.UserTypeEntrepreneur, result.UserType)
	assert.Greater(t, result.Confidence, 0.0)
}

func TestClassify_ScopedRulesRespectUserType(t *testing.T) {
	c := New()

	// "funding" patterns scoped to entrepreneurs must not fire for a message
	// with investor evidence only.
	result := c.Classify("I am an investor interested in funding deals", nil)
	assert.Equal(t, models.UserTypeInvestor, result.UserType)
	assert.NotEqual(t, models.IntentSeekingFunding, result.Intent)
}

// ==========================
// Rule Compilation Tests
// ==========================

func TestNewFromRuleset_InvalidPattern(t *testing.T) {
	_, err := NewFromRuleset(Ruleset{
		IntentRules: []RuleSpec{
			{Scope: "any", Pattern: "([unclosed", Intent: "general-inquiry"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestNewFromRuleset_InvalidScope(t *testing.T) {
	_, err := NewFromRuleset(Ruleset{
		IntentRules: []RuleSpec{
			{Scope: "banker", Pattern: "loan", Intent: "general-inquiry"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown rule scope")
}

func TestNewFromRuleset_FirstMatchWins(t *testing.T) {
	c, err := NewFromRuleset(Ruleset{
		IntentRules: []RuleSpec{
			{Scope: "any", Pattern: "alpha", Intent: "registration"},
			{Scope: "any", Pattern: "alpha", Intent: "scheduling"},
		},
	})
	require.NoError(t, err)

	result := c.Classify("alpha", nil)
	assert.Equal(t, models.Intent("registration"), result.Intent)
}

// ==========================
// Normalization Tests
// ==========================

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Hello World", "hello world"},
		{"strips punctuation", "what's up?!", "what s up"},
		{"collapses whitespace", "a   b\t\nc", "a b c"},
		{"trims", "  hi  ", "hi"},
		{"keeps unicode letters", "Café Münster", "café münster"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}
