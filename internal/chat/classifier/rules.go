package classifier

// DefaultRuleset returns the built-in rule tables. Order matters: within a
// scope the first matching rule wins, and scoped rules are declared before
// the shared ones so role-specific phrasing takes precedence.
func DefaultRuleset() Ruleset {
	return Ruleset{
		InvestorKeywords: []string{
			"invest", "portfolio", "capital", "funding round", "due diligence", "returns",
		},
		EntrepreneurKeywords: []string{
			"startup", "raise money", "pitch", "business idea", "need funding", "scale",
		},
		IntentRules: []RuleSpec{
			// Investor-scoped rules.
			{Scope: "investor", Pattern: `looking for.*startup`, Intent: "seeking-investment"},
			{Scope: "investor", Pattern: `investment.*opportunit`, Intent: "seeking-investment"},
			{Scope: "investor", Pattern: `seed.*round`, Intent: "seeking-investment"},
			{Scope: "investor", Pattern: `series.*funding`, Intent: "seeking-investment"},
			{Scope: "investor", Pattern: `startup.*invest`, Intent: "seeking-investment"},
			{Scope: "investor", Pattern: `due.*diligence`, Intent: "seeking-investment"},
			{Scope: "investor", Pattern: `invest.*in.*startup`, Intent: "seeking-investment"},
			{Scope: "investor", Pattern: `find.*startup`, Intent: "seeking-investment"},
			{Scope: "investor", Pattern: `portfolio.*track`, Intent: "portfolio-inquiry"},
			{Scope: "investor", Pattern: `investment.*performance`, Intent: "portfolio-inquiry"},
			{Scope: "investor", Pattern: `return.*investment`, Intent: "portfolio-inquiry"},
			{Scope: "investor", Pattern: `portfolio.*management`, Intent: "portfolio-inquiry"},
			{Scope: "investor", Pattern: `market.*trend`, Intent: "market-analysis"},
			{Scope: "investor", Pattern: `industry.*analysis`, Intent: "market-analysis"},
			{Scope: "investor", Pattern: `sector.*growth`, Intent: "market-analysis"},
			{Scope: "investor", Pattern: `market.*size`, Intent: "market-analysis"},
			{Scope: "investor", Pattern: `competition.*analysis`, Intent: "market-analysis"},

			// Entrepreneur-scoped rules.
			{Scope: "entrepreneur", Pattern: `need.*funding`, Intent: "seeking-funding"},
			{Scope: "entrepreneur", Pattern: `raise.*capital`, Intent: "seeking-funding"},
			{Scope: "entrepreneur", Pattern: `looking.*investor`, Intent: "seeking-funding"},
			{Scope: "entrepreneur", Pattern: `seed.*money`, Intent: "seeking-funding"},
			{Scope: "entrepreneur", Pattern: `venture.*capital`, Intent: "seeking-funding"},
			{Scope: "entrepreneur", Pattern: `angel.*investor`, Intent: "seeking-funding"},
			{Scope: "entrepreneur", Pattern: `seeking.*funding`, Intent: "seeking-funding"},
			{Scope: "entrepreneur", Pattern: `need.*investment`, Intent: "seeking-funding"},
			{Scope: "entrepreneur", Pattern: `pitch.*deck`, Intent: "pitch-feedback"},
			{Scope: "entrepreneur", Pattern: `business.*plan`, Intent: "pitch-feedback"},
			{Scope: "entrepreneur", Pattern: `present.*idea`, Intent: "pitch-feedback"},
			{Scope: "entrepreneur", Pattern: `pitch.*help`, Intent: "pitch-feedback"},
			{Scope: "entrepreneur", Pattern: `investor.*presentation`, Intent: "pitch-feedback"},
			{Scope: "entrepreneur", Pattern: `business.*advice`, Intent: "business-advice"},
			{Scope: "entrepreneur", Pattern: `startup.*help`, Intent: "business-advice"},
			{Scope: "entrepreneur", Pattern: `scale.*business`, Intent: "business-advice"},
			{Scope: "entrepreneur", Pattern: `growth.*strategy`, Intent: "business-advice"},
			{Scope: "entrepreneur", Pattern: `business.*model`, Intent: "business-advice"},

			// Shared rules, checked for every user type.
			{Scope: "any", Pattern: `how.*platform.*work`, Intent: "platform-info"},
			{Scope: "any", Pattern: `what.*this.*platform`, Intent: "platform-info"},
			{Scope: "any", Pattern: `platform.*feature`, Intent: "platform-info"},
			{Scope: "any", Pattern: `how.*use.*platform`, Intent: "platform-info"},
			{Scope: "any", Pattern: `sign.*up`, Intent: "registration"},
			{Scope: "any", Pattern: `register`, Intent: "registration"},
			{Scope: "any", Pattern: `create.*account`, Intent: "registration"},
			{Scope: "any", Pattern: `join.*platform`, Intent: "registration"},
			{Scope: "any", Pattern: `schedule.*meeting`, Intent: "scheduling"},
			{Scope: "any", Pattern: `book.*appointment`, Intent: "scheduling"},
			{Scope: "any", Pattern: `arrange.*call`, Intent: "scheduling"},
			{Scope: "any", Pattern: `set.*meeting`, Intent: "scheduling"},
			{Scope: "any", Pattern: `^(hello|hi|hey)\b`, Intent: "general-inquiry"},
			{Scope: "any", Pattern: `\bhelp\b`, Intent: "general-inquiry"},
			{Scope: "any", Pattern: `what can you do`, Intent: "general-inquiry"},
			{Scope: "any", Pattern: `get.*started`, Intent: "general-inquiry"},
		},
	}
}
