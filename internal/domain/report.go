package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RiskLevel is the coarse classification shown to end users.
// Using a custom type prevents string typos in the business logic.
type RiskLevel string

// ReportStatus is the moderation state of a report.
type ReportStatus string

// Category is the kind of scam a report describes.
type Category string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

const (
	StatusPending  ReportStatus = "pending"
	StatusApproved ReportStatus = "approved"
)

const (
	CategoryJob        Category = "job"
	CategoryBanking    Category = "banking"
	CategoryWebsite    Category = "website"
	CategoryLottery    Category = "lottery"
	CategoryBetting    Category = "betting"
	CategoryShopping   Category = "shopping"
	CategoryInvestment Category = "investment"
	CategoryOther      Category = "other"

	// CategoryUnknown is assigned at the storage boundary to rows without a category.
	CategoryUnknown Category = "Uncategorized"
)

var submittableCategories = map[Category]bool{
	CategoryJob: true, CategoryBanking: true, CategoryWebsite: true, CategoryLottery: true,
	CategoryBetting: true, CategoryShopping: true, CategoryInvestment: true, CategoryOther: true,
}

// IsSubmittable reports whether users may file a new report under c.
func (c Category) IsSubmittable() bool {
	return submittableCategories[c]
}

// ParseRiskLevel accepts any casing and surrounding whitespace.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch RiskLevel(strings.ToLower(strings.TrimSpace(s))) {
	case RiskHigh:
		return RiskHigh, true
	case RiskMedium:
		return RiskMedium, true
	case RiskLow:
		return RiskLow, true
	}
	return "", false
}

// ParseReportStatus trims stored values before comparing; anything else is not a status.
func ParseReportStatus(s string) (ReportStatus, bool) {
	switch ReportStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusApproved:
		return StatusApproved, true
	}
	return "", false
}

// ScamReport is a user submission about a phone number, URL or message.
type ScamReport struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Category    Category     `json:"category"`
	RiskLevel   RiskLevel    `json:"riskLevel"`
	ReportCount int          `json:"reportCount"`
	Status      ReportStatus `json:"status"`
	ContactInfo string       `json:"contactInfo,omitempty"`

	// CountryCode is the ISO 3166-1 alpha-2 region of a phone ContactInfo, when resolvable.
	CountryCode string `json:"countryCode,omitempty"`

	ReporterID    string    `json:"reporterId,omitempty"`
	ReporterName  string    `json:"reporterName,omitempty"`
	ScreenshotURL string    `json:"screenshotUrl,omitempty"`
	CreatedAt     time.Time `json:"timestamp"`
}

// IsApproved reports whether the report counts toward a public verdict.
func (r *ScamReport) IsApproved() bool {
	return r.Status == StatusApproved
}

// NewReport is a factory for a freshly submitted report.
// Submissions always start as pending, medium risk, with a single report.
func NewReport(title, content string, cat Category, contactInfo, reporterID, reporterName string) *ScamReport {
	if strings.TrimSpace(reporterName) == "" {
		reporterName = "Anonymous"
	}
	return &ScamReport{
		ID:           uuid.New(),
		Title:        strings.TrimSpace(title),
		Content:      strings.TrimSpace(content),
		Category:     cat,
		RiskLevel:    RiskMedium,
		ReportCount:  1,
		Status:       StatusPending,
		ContactInfo:  strings.TrimSpace(contactInfo),
		ReporterID:   reporterID,
		ReporterName: reporterName,
		CreatedAt:    time.Now().UTC(),
	}
}
