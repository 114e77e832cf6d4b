package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/rgdevment/scam-shield/internal/domain"
)

type Repository interface {
	Save(ctx context.Context, r *domain.ScamReport) error

	// Get returns domain.ErrReportNotFound when id does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.ScamReport, error)

	FindEqual(ctx context.Context, field domain.IndexField, value string, limit int) ([]*domain.ScamReport, error)

	FindPrefix(ctx context.Context, field domain.IndexField, prefix string, limit int) ([]*domain.ScamReport, error)

	List(ctx context.Context, q domain.ListQuery) (domain.Page, error)

	IncrementReportCount(ctx context.Context, id uuid.UUID) (int, error)

	// UpdateModeration sets the status and, when level is non-empty, the risk level.
	UpdateModeration(ctx context.Context, id uuid.UUID, status domain.ReportStatus, level domain.RiskLevel) error
}

// ScreenshotStore persists report evidence images and returns their public URL.
type ScreenshotStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// ConfirmationGuard records which users confirmed which report.
type ConfirmationGuard interface {
	// Acquire returns false if userID already confirmed reportID.
	Acquire(ctx context.Context, reportID uuid.UUID, userID string) (bool, error)

	Release(ctx context.Context, reportID uuid.UUID, userID string) error
}

// ActivityRecorder counts report lifecycle actions.
type ActivityRecorder interface {
	ObserveReportAction(action string)
}
