package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReportRecord is the loosely typed shape of a report as it comes out of a store.
// Every adapter converts rows through ParseReport so defaults are applied once.
type ReportRecord struct {
	ID            uuid.UUID
	Title         string
	Content       string
	Category      string
	RiskLevel     string
	ReportCount   int
	Status        string
	ContactInfo   string
	CountryCode   string
	ReporterID    string
	ReporterName  string
	ScreenshotURL string
	CreatedAt     time.Time
}

// ParseReport produces a strictly typed ScamReport from a stored record.
// Unknown or missing status defaults to pending, unknown risk to medium.
func ParseReport(rec ReportRecord, now time.Time) *ScamReport {
	r := &ScamReport{
		ID:            rec.ID,
		Title:         strings.TrimSpace(rec.Title),
		Content:       rec.Content,
		Category:      Category(strings.TrimSpace(rec.Category)),
		ReportCount:   rec.ReportCount,
		ContactInfo:   strings.TrimSpace(rec.ContactInfo),
		CountryCode:   rec.CountryCode,
		ReporterID:    rec.ReporterID,
		ReporterName:  rec.ReporterName,
		ScreenshotURL: rec.ScreenshotURL,
		CreatedAt:     rec.CreatedAt,
	}

	if r.Title == "" {
		r.Title = "Untitled Report"
	}
	if strings.TrimSpace(r.Content) == "" {
		r.Content = "No content provided"
	}
	if r.Category == "" {
		r.Category = CategoryUnknown
	}
	if lvl, ok := ParseRiskLevel(rec.RiskLevel); ok {
		r.RiskLevel = lvl
	} else {
		r.RiskLevel = RiskMedium
	}
	if st, ok := ParseReportStatus(rec.Status); ok {
		r.Status = st
	} else {
		r.Status = StatusPending
	}
	if r.ReportCount < 1 {
		r.ReportCount = 1
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now.UTC()
	}
	return r
}

// Record flattens a report back into its storage shape.
func (r *ScamReport) Record() ReportRecord {
	return ReportRecord{
		ID:            r.ID,
		Title:         r.Title,
		Content:       r.Content,
		Category:      string(r.Category),
		RiskLevel:     string(r.RiskLevel),
		ReportCount:   r.ReportCount,
		Status:        string(r.Status),
		ContactInfo:   r.ContactInfo,
		CountryCode:   r.CountryCode,
		ReporterID:    r.ReporterID,
		ReporterName:  r.ReporterName,
		ScreenshotURL: r.ScreenshotURL,
		CreatedAt:     r.CreatedAt,
	}
}
