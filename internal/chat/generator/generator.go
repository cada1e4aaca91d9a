// Package generator turns a classification into a reply and a short list
// of follow-up suggestions. Selection is table-driven: a template keyed by
// (intent, user type), then (intent, any), then a generic clarification
// fallback. The returned response is never empty.
package generator

import (
	"platform-chatbot/internal/models"
)

const maxSuggestions = 5

type templateKey struct {
	intent   models.Intent
	userType models.UserType
}

// Generator holds immutable template and suggestion tables.
type Generator struct {
	templates               map[templateKey]string
	suggestions             map[models.Intent][]string
	roleFallbackSuggestions map[models.UserType][]string
}

// New builds a generator from the default tables.
func New() *Generator {
	return &Generator{
		templates:               defaultTemplates(),
		suggestions:             defaultSuggestions(),
		roleFallbackSuggestions: defaultRoleSuggestions(),
	}
}

// Generate selects the response template and suggestion list for the
// classification. History is accepted for parity with the classifier
// contract; the default tables do not vary by history.
func (g *Generator) Generate(intent models.Intent, userType models.UserType, history []models.Turn) (string, []string) {
	response := g.lookupTemplate(intent, userType)
	suggestions := g.lookupSuggestions(intent, userType)
	return response, suggestions
}

func (g *Generator) lookupTemplate(intent models.Intent, userType models.UserType) string {
	if tpl, ok := g.templates[templateKey{intent, userType}]; ok {
		return tpl
	}
	if tpl, ok := g.templates[templateKey{intent, models.UserTypeUnknown}]; ok {
		return tpl
	}
	return fallbackResponse(userType)
}

// lookupSuggestions returns the intent's list, or the role fallback list,
// truncated to five entries and never padded.
func (g *Generator) lookupSuggestions(intent models.Intent, userType models.UserType) []string {
	list, ok := g.suggestions[intent]
	if !ok || len(list) == 0 {
		list = g.roleFallbackSuggestions[userType]
	}
	if len(list) > maxSuggestions {
		list = list[:maxSuggestions]
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}
