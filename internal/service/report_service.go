package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/rgdevment/scam-shield/internal/analysis"
	"github.com/rgdevment/scam-shield/internal/domain"
	"github.com/rgdevment/scam-shield/pkg/logging"
)

const (
	maxTitleLen      = 200
	maxContentLen    = 5000
	similarLimit     = 3
	recentLimit      = 5
	reporterLimit    = 10
	maxScreenshotLen = 10 << 20
)

// Screenshot is an optional image attached to a submission.
type Screenshot struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// SubmitReportInput carries a new report from an authenticated user.
type SubmitReportInput struct {
	Title        string
	Content      string
	Category     string
	ContactInfo  string
	ReporterID   string
	ReporterName string
	Screenshot   *Screenshot
}

// Dependencies are the collaborators of the report service. Only Repo and
// Engine are required.
type Dependencies struct {
	Repo        Repository
	Engine      *analysis.Engine
	Screenshots ScreenshotStore
	Guard       ConfirmationGuard
	Activity    ActivityRecorder
	Logger      *logging.Logger
}

// reportService is the concrete implementation of the Service interface.
// It is unexported to force usage of the interface.
type reportService struct {
	repo        Repository
	engine      *analysis.Engine
	screenshots ScreenshotStore
	guard       ConfirmationGuard
	activity    ActivityRecorder
	logger      *logging.Logger
}

// NewReportService initializes the logic layer with its dependencies.
func NewReportService(deps Dependencies) Service {
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	if deps.Engine == nil {
		deps.Engine = analysis.NewEngine(deps.Repo, nil, deps.Logger, nil)
	}
	return &reportService{
		repo:        deps.Repo,
		engine:      deps.Engine,
		screenshots: deps.Screenshots,
		guard:       deps.Guard,
		activity:    deps.Activity,
		logger:      deps.Logger,
	}
}

func (s *reportService) Analyze(ctx context.Context, req analysis.Request) (*domain.AnalysisResult, error) {
	return s.engine.Analyze(ctx, req)
}

// SubmitReport validates a submission, uploads its screenshot and stores it as pending.
func (s *reportService) SubmitReport(ctx context.Context, in SubmitReportInput) (*domain.ScamReport, error) {
	if strings.TrimSpace(in.ReporterID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := validateSubmission(in); err != nil {
		return nil, err
	}

	contact := strings.TrimSpace(in.ContactInfo)
	var country string
	if contact != "" && analysis.LooksLikePhone(contact) {
		if err := analysis.ValidatePhoneNumber(contact); err != nil {
			return nil, err
		}
		country = s.engine.Normalizer().CountryCode(contact)
	}

	report := domain.NewReport(in.Title, in.Content, domain.Category(strings.TrimSpace(in.Category)), contact, in.ReporterID, in.ReporterName)
	report.CountryCode = country

	if in.Screenshot != nil {
		url, err := s.uploadScreenshot(ctx, in.Screenshot)
		if err != nil {
			return nil, err
		}
		report.ScreenshotURL = url
	}

	if err := s.repo.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	s.observe("submitted")
	s.logger.Info("report submitted",
		"report_id", report.ID.String(),
		"category", report.Category,
		"has_contact", report.ContactInfo != "",
		"has_screenshot", report.ScreenshotURL != "",
	)
	return report, nil
}

func validateSubmission(in SubmitReportInput) error {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	switch {
	case title == "":
		return domain.NewValidationError("title", "is required")
	case utf8.RuneCountInString(title) > maxTitleLen:
		return domain.NewValidationError("title", "must be at most %d characters", maxTitleLen)
	case content == "":
		return domain.NewValidationError("content", "is required")
	case utf8.RuneCountInString(content) > maxContentLen:
		return domain.NewValidationError("content", "must be at most %d characters", maxContentLen)
	case strings.TrimSpace(in.Category) == "":
		return domain.NewValidationError("category", "is required")
	case !domain.Category(strings.TrimSpace(in.Category)).IsSubmittable():
		return domain.NewValidationError("category", "%q is not a known category", in.Category)
	}
	return nil
}

func (s *reportService) uploadScreenshot(ctx context.Context, shot *Screenshot) (string, error) {
	if s.screenshots == nil {
		return "", domain.NewValidationError("screenshot", "screenshot uploads are not enabled")
	}
	if !strings.HasPrefix(strings.ToLower(shot.ContentType), "image/") {
		return "", domain.NewValidationError("screenshot", "must be an image, got %q", shot.ContentType)
	}
	body := io.LimitReader(shot.Body, maxScreenshotLen+1)
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read screenshot: %w", err)
	}
	if len(data) > maxScreenshotLen {
		return "", domain.NewValidationError("screenshot", "must be at most %d bytes", maxScreenshotLen)
	}

	url, err := s.screenshots.Upload(ctx, shot.Name, shot.ContentType, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("upload screenshot: %w", err)
	}
	return url, nil
}

func (s *reportService) GetReport(ctx context.Context, id uuid.UUID) (*domain.ScamReport, error) {
	return s.repo.Get(ctx, id)
}

// SimilarReports returns other reports filed under the same category.
func (s *reportService) SimilarReports(ctx context.Context, id uuid.UUID) ([]*domain.ScamReport, error) {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	candidates, err := s.repo.FindEqual(ctx, domain.FieldCategory, string(report.Category), similarLimit+1)
	if err != nil {
		return nil, fmt.Errorf("find similar reports: %w", err)
	}

	similar := make([]*domain.ScamReport, 0, similarLimit)
	for _, c := range candidates {
		if c.ID == id {
			continue
		}
		similar = append(similar, c)
		if len(similar) == similarLimit {
			break
		}
	}
	return similar, nil
}

func (s *reportService) ListReports(ctx context.Context, q domain.ListQuery) (domain.Page, error) {
	q.Status = domain.StatusApproved
	q.ReporterID = ""
	return s.repo.List(ctx, q.Normalize())
}

func (s *reportService) RecentReports(ctx context.Context) ([]*domain.ScamReport, error) {
	page, err := s.repo.List(ctx, domain.ListQuery{Sort: domain.SortLatest, Limit: recentLimit})
	if err != nil {
		return nil, err
	}
	return page.Reports, nil
}

func (s *reportService) ReporterReports(ctx context.Context, reporterID string) ([]*domain.ScamReport, error) {
	if strings.TrimSpace(reporterID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	page, err := s.repo.List(ctx, domain.ListQuery{ReporterID: reporterID, Sort: domain.SortLatest, Limit: reporterLimit})
	if err != nil {
		return nil, err
	}
	return page.Reports, nil
}

// ConfirmReport adds one to the report count, once per user. Failures are not retried.
func (s *reportService) ConfirmReport(ctx context.Context, id uuid.UUID, userID string) (*domain.ScamReport, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.guard != nil {
		acquired, err := s.guard.Acquire(ctx, id, userID)
		if err != nil {
			return nil, fmt.Errorf("confirmation guard: %w", err)
		}
		if !acquired {
			return nil, domain.ErrAlreadyConfirmed
		}
	}

	count, err := s.repo.IncrementReportCount(ctx, id)
	if err != nil {
		if s.guard != nil {
			if rerr := s.guard.Release(ctx, id, userID); rerr != nil {
				s.logger.Warn("failed to release confirmation", "report_id", id.String(), "error", rerr)
			}
		}
		return nil, fmt.Errorf("confirm report: %w", err)
	}

	report.ReportCount = count
	s.observe("confirmed")
	return report, nil
}

// ModerateReport transitions a report's status and optionally its risk level.
func (s *reportService) ModerateReport(ctx context.Context, id uuid.UUID, status string, riskLevel string) (*domain.ScamReport, error) {
	st, ok := domain.ParseReportStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	var level domain.RiskLevel
	if strings.TrimSpace(riskLevel) != "" {
		if level, ok = domain.ParseRiskLevel(riskLevel); !ok {
			return nil, domain.NewValidationError("riskLevel", "%q is not a risk level", riskLevel)
		}
	}

	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateModeration(ctx, id, st, level); err != nil {
		return nil, fmt.Errorf("moderate report: %w", err)
	}

	s.observe("moderated")
	s.logger.Info("report moderated", "report_id", id.String(), "status", st, "risk_level", level)
	return s.repo.Get(ctx, id)
}

func (s *reportService) observe(action string) {
	if s.activity != nil {
		s.activity.ObserveReportAction(action)
	}
}
