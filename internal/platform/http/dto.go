package http

import (
	"strings"

	"github.com/rgdevment/scam-shield/internal/analysis"
	"github.com/rgdevment/scam-shield/internal/domain"
)

// AnalyzeRequest is the body of POST /v1/analysis.
type AnalyzeRequest struct {
	Input string `json:"input"`
	Kind  string `json:"kind"`
}

// ToRequest maps the optional kind hint onto an engine request.
func (r *AnalyzeRequest) ToRequest() (analysis.Request, error) {
	switch strings.ToLower(strings.TrimSpace(r.Kind)) {
	case "", string(domain.ClassURL), string(domain.ClassFreeText):
		return analysis.Request{Input: r.Input}, nil
	case string(domain.ClassPhoneNumber):
		return analysis.Request{Input: r.Input, ExpectPhone: true}, nil
	default:
		return analysis.Request{}, domain.NewValidationError("kind", "must be one of phone, url, text")
	}
}

// AnalyzeResponse is the session an analysis request settles into.
type AnalyzeResponse struct {
	Status domain.SessionStatus   `json:"status"`
	Seq    uint64                 `json:"seq"`
	Result *domain.AnalysisResult `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// CreateReportRequest is the JSON form of a submission. Multipart submissions
// carry the same fields as form values plus a "screenshot" file.
type CreateReportRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	ContactInfo string `json:"contactInfo"`
}

type ModerationRequest struct {
	Status    string `json:"status"`
	RiskLevel string `json:"riskLevel"`
}

func (r *ModerationRequest) Validate() error {
	if strings.TrimSpace(r.Status) == "" {
		return domain.NewValidationError("status", "is required")
	}
	return nil
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
