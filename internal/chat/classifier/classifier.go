// Package classifier maps free-text messages to a coarse intent and user
// type using ordered keyword/pattern rules. Classification is pure and
// deterministic: the same message and history always produce the same
// result, ties between rules are broken by declaration order, and
// unrecognized input degrades to unknown rather than failing.
package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"platform-chatbot/internal/models"
)

// ScopeAny marks a rule that applies regardless of the detected user type.
const ScopeAny = "any"

// RuleSpec is one uncompiled intent rule. Scope is "investor",
// "entrepreneur", or "any"; Pattern is a regular expression applied to the
// normalized message.
type RuleSpec struct {
	Scope   string `json:"scope"`
	Pattern string `json:"pattern"`
	Intent  string `json:"intent"`
}

// Ruleset is the full uncompiled rule configuration.
type Ruleset struct {
	InvestorKeywords     []string   `json:"investor_keywords"`
	EntrepreneurKeywords []string   `json:"entrepreneur_keywords"`
	IntentRules          []RuleSpec `json:"intent_rules"`
}

// Classification is the result of classifying one message.
type Classification struct {
	Intent   models.Intent
	UserType models.UserType
	// Confidence is the share of matched role keywords attributed to the
	// returned user type, in [0,1]. It is 0 when the type was inherited
	// from history or is unknown.
	Confidence float64
}

type intentRule struct {
	scope   models.UserType // UserTypeUnknown means any
	pattern *regexp.Regexp
	intent  models.Intent
}

// Classifier holds compiled, immutable rule tables.
type Classifier struct {
	investorKeywords     []string
	entrepreneurKeywords []string
	rules                []intentRule
}

// New compiles the default rule tables.
func New() *Classifier {
	c, err := NewFromRuleset(DefaultRuleset())
	if err != nil {
		// The default ruleset is compiled in and covered by tests.
		panic(fmt.Sprintf("default ruleset failed to compile: %v", err))
	}
	return c
}

// NewFromRuleset compiles a ruleset, preserving rule declaration order.
func NewFromRuleset(rs Ruleset) (*Classifier, error) {
	c := &Classifier{
		investorKeywords:     rs.InvestorKeywords,
		entrepreneurKeywords: rs.EntrepreneurKeywords,
	}

	for i, spec := range rs.IntentRules {
		scope, err := parseScope(spec.Scope)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: invalid pattern %q: %w", i, spec.Pattern, err)
		}
		c.rules = append(c.rules, intentRule{
			scope:   scope,
			pattern: re,
			intent:  models.Intent(spec.Intent),
		})
	}

	return c, nil
}

func parseScope(s string) (models.UserType, error) {
	switch s {
	case ScopeAny, "":
		return models.UserTypeUnknown, nil
	case string(models.UserTypeInvestor):
		return models.UserTypeInvestor, nil
	case string(models.UserTypeEntrepreneur):
		return models.UserTypeEntrepreneur, nil
	default:
		return models.UserTypeUnknown, fmt.Errorf("unknown rule scope %q", s)
	}
}

// Classify derives (intent, user type, confidence) for a message. History
// is only consulted to inherit a previously detected user type when the
// current message carries no role evidence of its own.
func (c *Classifier) Classify(message string, history []models.Turn) Classification {
	normalized := Normalize(message)

	userType, confidence := c.scoreUserType(normalized)
	if !userType.Known() {
		if prev := lastKnownUserType(history); prev.Known() {
			userType = prev
			confidence = 0
		}
	}

	intent := c.matchIntent(normalized, userType)

	return Classification{
		Intent:     intent,
		UserType:   userType,
		Confidence: confidence,
	}
}

// scoreUserType counts role keyword hits; the higher score wins, a tie is
// unknown. Confidence is the winner's share of all hits.
func (c *Classifier) scoreUserType(normalized string) (models.UserType, float64) {
	investorScore := countKeywords(normalized, c.investorKeywords)
	entrepreneurScore := countKeywords(normalized, c.entrepreneurKeywords)
	total := investorScore + entrepreneurScore

	switch {
	case investorScore > entrepreneurScore:
		return models.UserTypeInvestor, float64(investorScore) / float64(total)
	case entrepreneurScore > investorScore:
		return models.UserTypeEntrepreneur, float64(entrepreneurScore) / float64(total)
	default:
		return models.UserTypeUnknown, 0
	}
}

// matchIntent walks the rule table in declaration order. Rules scoped to a
// user type are skipped unless that type was detected; the first applicable
// match wins.
func (c *Classifier) matchIntent(normalized string, userType models.UserType) models.Intent {
	for _, rule := range c.rules {
		if rule.scope.Known() && rule.scope != userType {
			continue
		}
		if rule.pattern.MatchString(normalized) {
			return rule.intent
		}
	}
	return models.IntentUnknown
}

func countKeywords(normalized string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		if strings.Contains(normalized, kw) {
			score++
		}
	}
	return score
}

func lastKnownUserType(history []models.Turn) models.UserType {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].UserType.Known() {
			return history[i].UserType
		}
	}
	return models.UserTypeUnknown
}

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
var whitespace = regexp.MustCompile(`\s+`)

// Normalize lowercases the message, strips punctuation, and collapses
// whitespace.
func Normalize(message string) string {
	s := strings.ToLower(message)
	s = punctuation.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
