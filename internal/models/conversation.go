package models

import "time"

// Intent is a coarse classification of what the user wants.
type Intent string

const (
	IntentSeekingFunding    Intent = "seeking-funding"
	IntentSeekingInvestment Intent = "seeking-investment"
	IntentPitchFeedback     Intent = "pitch-feedback"
	IntentBusinessAdvice    Intent = "business-advice"
	IntentPortfolioInquiry  Intent = "portfolio-inquiry"
	IntentMarketAnalysis    Intent = "market-analysis"
	IntentPlatformInfo      Intent = "platform-info"
	IntentRegistration      Intent = "registration"
	IntentScheduling        Intent = "scheduling"
	IntentGeneralInquiry    Intent = "general-inquiry"
	IntentUnknown           Intent = "unknown"
)

// UserType is a coarse classification of the user's role on the platform.
type UserType string

const (
	UserTypeInvestor     UserType = "investor"
	UserTypeEntrepreneur UserType = "entrepreneur"
	UserTypeUnknown      UserType = "unknown"
)

// Known reports whether the user type has been inferred.
func (u UserType) Known() bool {
	return u == UserTypeInvestor || u == UserTypeEntrepreneur
}

// Turn is one message/response exchange. Immutable once created.
type Turn struct {
	Message     string    `json:"message" db:"message"`
	Intent      Intent    `json:"intent" db:"intent"`
	UserType    UserType  `json:"user_type" db:"user_type"`
	Response    string    `json:"response" db:"response"`
	Suggestions []string  `json:"suggestions" db:"suggestions"`
	Timestamp   time.Time `json:"timestamp" db:"created_at"`
}

// Conversation is an ordered sequence of turns sharing one identifier,
// plus the state derived from them.
type Conversation struct {
	ID           string    `json:"id" db:"id"`
	Turns        []Turn    `json:"turns" db:"-"`
	UserType     UserType  `json:"user_type" db:"user_type"`
	LastIntent   Intent    `json:"last_intent" db:"last_intent"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	LastActivity time.Time `json:"last_activity" db:"last_activity"`
}

// IsIdle reports whether the conversation has seen no activity for ttl.
func (c *Conversation) IsIdle(ttl time.Duration, now time.Time) bool {
	return now.Sub(c.LastActivity) > ttl
}

// LastTurn returns the most recent turn, or nil for a fresh conversation.
func (c *Conversation) LastTurn() *Turn {
	if len(c.Turns) == 0 {
		return nil
	}
	return &c.Turns[len(c.Turns)-1]
}
