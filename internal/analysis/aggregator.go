package analysis

import "github.com/rgdevment/scam-shield/internal/domain"

const (
	highReportWeight   = 30
	mediumReportWeight = 15
	reportWeight       = 10

	highScoreThreshold   = 50
	mediumScoreThreshold = 20
)

// Aggregate reduces matched reports into a verdict. Only approved reports
// move the score; pending ones are surfaced as "under review". A keyword
// score, when present, is carried for display and never raises the risk.
func Aggregate(approved, pending []*domain.ScamReport, keywords *KeywordScore) domain.AnalysisResult {
	if approved == nil {
		approved = []*domain.ScamReport{}
	}
	if pending == nil {
		pending = []*domain.ScamReport{}
	}

	res := domain.AnalysisResult{
		RiskLevel:       domain.RiskLow,
		Approved:        approved,
		Pending:         pending,
		MatchedKeywords: []string{},
	}
	if keywords != nil {
		res.KeywordScore = keywords.Score
		res.MatchedKeywords = keywords.Matched()
	}

	switch {
	case len(approved) > 0:
		res.State = domain.StateApprovedFound
		res.Score, res.RiskLevel = scoreApproved(approved)
	case len(pending) > 0:
		res.State = domain.StatePendingOnly
	default:
		res.State = domain.StateNoData
	}

	res.Message = res.State.Message()
	res.RecommendedActions = domain.RecommendedActions(res.RiskLevel)
	return res
}

func scoreApproved(approved []*domain.ScamReport) (int, domain.RiskLevel) {
	var high, medium int
	for _, r := range approved {
		switch r.RiskLevel {
		case domain.RiskHigh:
			high++
		case domain.RiskMedium:
			medium++
		}
	}

	score := min(maxScore, highReportWeight*high+mediumReportWeight*medium+reportWeight*len(approved))

	switch {
	case high > 0 || score >= highScoreThreshold:
		return score, domain.RiskHigh
	case medium > 0 || score >= mediumScoreThreshold:
		return score, domain.RiskMedium
	default:
		return score, domain.RiskLow
	}
}
