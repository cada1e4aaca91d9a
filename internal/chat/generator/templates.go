package generator

import "platform-chatbot/internal/models"

func defaultTemplates() map[templateKey]string {
	return map[templateKey]string{
		{models.IntentSeekingInvestment, models.UserTypeInvestor}: "I can help you discover promising startups. " +
			"Current deal flow is strongest in AI/ML, FinTech, HealthTech, and enterprise SaaS, " +
			"with opportunities from pre-seed through Series A. " +
			"Tell me your investment focus and ticket size and I will narrow the list, " +
			"filter by funding stage, or set up meetings with founders.",

		{models.IntentPortfolioInquiry, models.UserTypeInvestor}: "I can help you track and manage your investment portfolio: " +
			"current value and performance, ROI by stage, sector diversification, " +
			"and upcoming rounds from your portfolio companies. " +
			"What portfolio information are you looking for?",

		{models.IntentMarketAnalysis, models.UserTypeInvestor}: "Here is the latest market picture: AI/ML funding keeps growing fastest, " +
			"sustainability and remote-work tooling remain strong, and FinTech regulation is opening new opportunities. " +
			"Which market segment or trend interests you most?",

		{models.IntentSeekingFunding, models.UserTypeEntrepreneur}: "I can help you connect with the right investors. " +
			"To match you well I need to know your stage (idea, MVP, revenue, or growth), " +
			"your industry, how much you are raising, and what the funds are for. " +
			"Angels typically cover smaller checks, seed and Series A funds the larger ones. " +
			"Tell me about your startup and funding needs.",

		{models.IntentPitchFeedback, models.UserTypeEntrepreneur}: "Happy to help with your pitch. A strong deck covers the problem and solution, " +
			"market size, business model, traction, competition, team, financials, and the ask. " +
			"Keep it to 10-12 slides and lead with the problem you solve. " +
			"What specific help do you need with your pitch?",

		{models.IntentBusinessAdvice, models.UserTypeEntrepreneur}: "I can help with business strategy: model validation, go-to-market, " +
			"hiring, customer acquisition, and scaling operations. " +
			"I can also connect you with mentors and founders who have faced the same challenges. " +
			"What specific challenge are you facing?",

		// Shared templates apply to any user type.
		{models.IntentPlatformInfo, models.UserTypeUnknown}: "This platform connects investors and entrepreneurs. " +
			"Entrepreneurs find relevant investors, get pitch feedback, and access mentorship; " +
			"investors discover vetted startups and manage deal flow. " +
			"Tell me whether you are an investor or an entrepreneur and what you are looking for, and I will get you started.",

		{models.IntentRegistration, models.UserTypeUnknown}: "Registration takes a few minutes: choose your role (investor or entrepreneur), " +
			"complete your profile, and verify your identity. " +
			"A professional email and a short background description are all you need to start. " +
			"Which role describes you best?",

		{models.IntentScheduling, models.UserTypeUnknown}: "I can help you schedule meetings with potential matches, " +
			"from short intro calls to pitch presentations and due-diligence sessions. " +
			"Tell me who you want to meet, the purpose, and your preferred times, " +
			"and I will check availability and send the invites.",

		{models.IntentGeneralInquiry, models.UserTypeUnknown}: "Welcome! I help investors find opportunities and entrepreneurs secure funding. " +
			"Are you an investor or an entrepreneur?",
	}
}

// fallbackResponse is the generic clarification prompt used when no
// template matches. It is never empty for any user type.
func fallbackResponse(userType models.UserType) string {
	var greeting string
	switch userType {
	case models.UserTypeInvestor:
		greeting = "As an investor"
	case models.UserTypeEntrepreneur:
		greeting = "As an entrepreneur"
	default:
		greeting = "Whether you are an investor or an entrepreneur"
	}

	return greeting + ", I am here to help you succeed on the platform. " +
		"I can find relevant connections, share industry insights, schedule meetings, " +
		"and offer strategic guidance. " +
		"Could you tell me more specifically what you are looking for? " +
		"For example: funding or investment opportunities, pitch preparation, or platform features."
}

func defaultSuggestions() map[models.Intent][]string {
	return map[models.Intent][]string{
		models.IntentSeekingInvestment: {
			"Show me startup opportunities in tech",
			"What's the average ROI in Series A rounds?",
			"Schedule a meeting with promising startups",
			"Analyze market trends in fintech",
		},
		models.IntentPortfolioInquiry: {
			"Show my portfolio performance",
			"Which investments need attention?",
			"Any upcoming rounds in my portfolio?",
		},
		models.IntentMarketAnalysis: {
			"Analyze market trends in fintech",
			"Which sectors are growing fastest?",
			"Show me funding landscape data",
		},
		models.IntentSeekingFunding: {
			"Help me prepare my pitch deck",
			"Find investors interested in my industry",
			"What funding stage am I ready for?",
			"Connect me with mentors",
		},
		models.IntentPitchFeedback: {
			"Review my pitch deck structure",
			"How long should my pitch be?",
			"Practice investor Q&A with me",
			"Tailor my pitch for seed investors",
		},
		models.IntentBusinessAdvice: {
			"Help me validate my business model",
			"How do I build a go-to-market strategy?",
			"Connect me with mentors",
		},
		models.IntentPlatformInfo: {
			"I'm an investor looking for opportunities",
			"I'm an entrepreneur seeking funding",
			"How do I get started?",
		},
		models.IntentRegistration: {
			"Register me as an investor",
			"Register me as an entrepreneur",
			"What do I need to sign up?",
		},
		models.IntentScheduling: {
			"Schedule an intro call",
			"Book a pitch presentation",
			"Arrange a due diligence meeting",
		},
	}
}

// defaultRoleSuggestions covers intents without their own list, including
// unknown.
func defaultRoleSuggestions() map[models.UserType][]string {
	return map[models.UserType][]string{
		models.UserTypeInvestor: {
			"Show me startup opportunities in tech",
			"What's the average ROI in Series A rounds?",
			"Schedule a meeting with promising startups",
			"Analyze market trends in fintech",
		},
		models.UserTypeEntrepreneur: {
			"Help me prepare my pitch deck",
			"Find investors interested in my industry",
			"What funding stage am I ready for?",
			"Connect me with mentors",
		},
		models.UserTypeUnknown: {
			"I'm an investor looking for opportunities",
			"I'm an entrepreneur seeking funding",
			"Tell me about this platform",
			"How do I get started?",
		},
	}
}
