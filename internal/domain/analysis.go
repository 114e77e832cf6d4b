package domain

// InputClassification is the deterministic kind of a raw analysis input.
type InputClassification string

const (
	ClassPhoneNumber InputClassification = "phone"
	ClassURL         InputClassification = "url"
	ClassFreeText    InputClassification = "text"
)

// IsContact reports whether the classification is looked up by identifier
// rather than scored by keywords.
func (c InputClassification) IsContact() bool {
	return c == ClassPhoneNumber || c == ClassURL
}

// VerdictState is the per-analysis outcome of aggregating matched reports.
type VerdictState string

const (
	StateNoData        VerdictState = "NO_DATA"
	StatePendingOnly   VerdictState = "PENDING_ONLY"
	StateApprovedFound VerdictState = "APPROVED_FOUND"
)

// Message is the short user-facing line for the state.
func (s VerdictState) Message() string {
	switch s {
	case StatePendingOnly:
		return "under review"
	case StateApprovedFound:
		return "reported scam"
	default:
		return "no scams found"
	}
}

// AnalysisResult is derived fresh for every analysis and never persisted.
type AnalysisResult struct {
	Input          string              `json:"input"`
	Classification InputClassification `json:"classification"`
	State          VerdictState        `json:"state"`
	Message        string              `json:"message"`
	RiskLevel      RiskLevel           `json:"riskLevel"`

	// Score is driven by approved reports only (0-100).
	Score int `json:"score"`

	// KeywordScore and MatchedKeywords are informational for free text.
	KeywordScore    int      `json:"keywordScore"`
	MatchedKeywords []string `json:"matchedKeywords"`

	Approved           []*ScamReport `json:"approved"`
	Pending            []*ScamReport `json:"pending"`
	RecommendedActions []string      `json:"recommendedActions"`
}

// RecommendedActions returns the advice shown next to a verdict of the given level.
func RecommendedActions(level RiskLevel) []string {
	switch level {
	case RiskHigh:
		return []string{
			"Don't respond or click any links",
			"Block the sender immediately",
			"Report to relevant authorities",
			"Consider reporting to the community",
		}
	case RiskMedium:
		return []string{
			"Be very cautious about any requests",
			"Never share personal information",
			"Research the sender before engaging",
			"Consider reporting for community awareness",
		}
	default:
		return []string{
			"While this appears safe, always stay vigilant",
			"Never share sensitive information online",
			"If something feels suspicious, trust your instincts",
		}
	}
}
