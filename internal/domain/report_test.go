package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/rgdevment/scam-shield/internal/domain"
)

func TestParseReportDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := domain.ParseReport(domain.ReportRecord{ID: uuid.New()}, now)

	assert.Equal(t, "Untitled Report", r.Title)
	assert.Equal(t, "No content provided", r.Content)
	assert.Equal(t, domain.CategoryUnknown, r.Category)
	assert.Equal(t, domain.RiskMedium, r.RiskLevel)
	assert.Equal(t, domain.StatusPending, r.Status)
	assert.Equal(t, 1, r.ReportCount)
	assert.Equal(t, now, r.CreatedAt)
}

func TestParseReportNormalizesStoredValues(t *testing.T) {
	created := time.Date(2025, 11, 5, 8, 30, 0, 0, time.UTC)
	r := domain.ParseReport(domain.ReportRecord{
		ID:          uuid.New(),
		Title:       "  Fake courier  ",
		Content:     "Pay the customs fee",
		Category:    " shopping ",
		RiskLevel:   "HIGH",
		ReportCount: 7,
		Status:      " approved ",
		ContactInfo: " 4155551234 ",
		CreatedAt:   created,
	}, time.Now())

	assert.Equal(t, "Fake courier", r.Title)
	assert.Equal(t, domain.CategoryShopping, r.Category)
	assert.Equal(t, domain.RiskHigh, r.RiskLevel)
	assert.Equal(t, domain.StatusApproved, r.Status)
	assert.True(t, r.IsApproved())
	assert.Equal(t, 7, r.ReportCount)
	assert.Equal(t, "4155551234", r.ContactInfo)
	assert.Equal(t, created, r.CreatedAt)
}

func TestParseReportUnknownStatusIsPending(t *testing.T) {
	for _, status := range []string{"", "rejected", "APPROVED?"} {
		r := domain.ParseReport(domain.ReportRecord{Status: status, RiskLevel: "extreme", ReportCount: -3}, time.Now())
		assert.Equal(t, domain.StatusPending, r.Status, status)
		assert.Equal(t, domain.RiskMedium, r.RiskLevel)
		assert.Equal(t, 1, r.ReportCount)
	}
}

func TestRecordRoundTripKeepsTypedValues(t *testing.T) {
	orig := domain.NewReport("Job offer", "Pay for training", domain.CategoryJob, "+14155551234", "user-1", "")
	back := domain.ParseReport(orig.Record(), time.Now())

	assert.Equal(t, orig, back)
}

func TestNewReport(t *testing.T) {
	r := domain.NewReport(" Title ", " Body ", domain.CategoryBanking, " 4155551234 ", "uid", "")

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, "Title", r.Title)
	assert.Equal(t, "Body", r.Content)
	assert.Equal(t, domain.RiskMedium, r.RiskLevel)
	assert.Equal(t, domain.StatusPending, r.Status)
	assert.Equal(t, 1, r.ReportCount)
	assert.Equal(t, "4155551234", r.ContactInfo)
	assert.Equal(t, "Anonymous", r.ReporterName)
	assert.WithinDuration(t, time.Now().UTC(), r.CreatedAt, time.Minute)
}

func TestCategoryIsSubmittable(t *testing.T) {
	assert.True(t, domain.CategoryLottery.IsSubmittable())
	assert.False(t, domain.CategoryUnknown.IsSubmittable())
	assert.False(t, domain.Category("crypto").IsSubmittable())
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("submit: %w", domain.NewValidationError("title", "is required"))

	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "submit: title: is required", err.Error())
	assert.False(t, domain.IsValidation(errors.New("boom")))
	assert.Equal(t, "plain", (&domain.ValidationError{Message: "plain"}).Error())
}
