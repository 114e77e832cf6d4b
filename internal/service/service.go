package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/rgdevment/scam-shield/internal/analysis"
	"github.com/rgdevment/scam-shield/internal/domain"
)

type Service interface {
	Analyze(ctx context.Context, req analysis.Request) (*domain.AnalysisResult, error)

	SubmitReport(ctx context.Context, in SubmitReportInput) (*domain.ScamReport, error)

	GetReport(ctx context.Context, id uuid.UUID) (*domain.ScamReport, error)

	SimilarReports(ctx context.Context, id uuid.UUID) ([]*domain.ScamReport, error)

	// ListReports is the public explorer: approved reports only.
	ListReports(ctx context.Context, q domain.ListQuery) (domain.Page, error)

	RecentReports(ctx context.Context) ([]*domain.ScamReport, error)

	ReporterReports(ctx context.Context, reporterID string) ([]*domain.ScamReport, error)

	ConfirmReport(ctx context.Context, id uuid.UUID, userID string) (*domain.ScamReport, error)

	ModerateReport(ctx context.Context, id uuid.UUID, status string, riskLevel string) (*domain.ScamReport, error)
}
