package analysis_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgdevment/scam-shield/internal/analysis"
	"github.com/rgdevment/scam-shield/internal/domain"
	"github.com/rgdevment/scam-shield/pkg/logging"
)

func newEngine(finder analysis.ReportFinder, rec analysis.Recorder) *analysis.Engine {
	return analysis.NewEngine(finder, analysis.NewNormalizer("US"), logging.Discard(), rec)
}

func TestEngineScenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("A. approved high risk phone report", func(t *testing.T) {
		finder := NewFakeFinder(domain.ReportRecord{
			Title: "IRS impersonation", ContactInfo: "4155551234", RiskLevel: "high", Status: "approved",
		})
		res, err := newEngine(finder, nil).Analyze(ctx, analysis.Request{Input: "+14155551234"})

		require.NoError(t, err)
		assert.Equal(t, domain.ClassPhoneNumber, res.Classification)
		assert.Equal(t, domain.StateApprovedFound, res.State)
		assert.Equal(t, domain.RiskHigh, res.RiskLevel)
		assert.Equal(t, 40, res.Score)
		assert.Len(t, res.Approved, 1)
		assert.Empty(t, res.MatchedKeywords)
	})

	t.Run("B. pending URL report is under review", func(t *testing.T) {
		finder := NewFakeFinder(domain.ReportRecord{
			Title: "Fake bank", ContactInfo: "fakebank.com/login", Status: "pending",
		})
		res, err := newEngine(finder, nil).Analyze(ctx, analysis.Request{Input: "https://fakebank.com/login"})

		require.NoError(t, err)
		assert.Equal(t, domain.ClassURL, res.Classification)
		assert.Equal(t, domain.StatePendingOnly, res.State)
		assert.Equal(t, "under review", res.Message)
		assert.Equal(t, domain.RiskLow, res.RiskLevel)
		assert.Zero(t, res.Score)
		assert.Len(t, res.Pending, 1)
	})

	t.Run("C. keyword-heavy text without reports stays low", func(t *testing.T) {
		finder := NewFakeFinder()
		res, err := newEngine(finder, nil).Analyze(ctx, analysis.Request{
			Input: "You won a lottery! Claim your prize now, send bitcoin wallet details",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.ClassFreeText, res.Classification)
		assert.Subset(t, res.MatchedKeywords, []string{"bitcoin", "wallet", "lottery", "won", "prize", "claim"})
		assert.Equal(t, 30, res.KeywordScore)
		assert.Equal(t, domain.StateNoData, res.State)
		assert.Equal(t, domain.RiskLow, res.RiskLevel)
		assert.Zero(t, res.Score)

		for _, c := range finder.Calls() {
			assert.Equal(t, domain.FieldContent, c.Field)
		}
	})

	t.Run("D. repository failure degrades to no data", func(t *testing.T) {
		rec := &countingRecorder{}
		finder := NewFakeFinder().Fail(errors.New("scylla: timeout"))
		res, err := newEngine(finder, rec).Analyze(ctx, analysis.Request{Input: "+14155551234"})

		require.NoError(t, err)
		assert.Equal(t, domain.StateNoData, res.State)
		assert.Equal(t, domain.RiskLow, res.RiskLevel)
		assert.Zero(t, res.Score)
		assert.Empty(t, res.Approved)
		assert.Empty(t, res.Pending)
		assert.Equal(t, []string{"phone/NO_DATA"}, rec.analyses)
	})
}

func TestEngineURLWithQueryMatchesPathReport(t *testing.T) {
	finder := NewFakeFinder(
		domain.ReportRecord{Title: "Fake login", ContactInfo: "fakebank.com/login", RiskLevel: "high", Status: "approved"},
		domain.ReportRecord{Title: "Fake bank", ContactInfo: "fakebank.com", RiskLevel: "low", Status: "approved"},
	)
	res, err := newEngine(finder, nil).Analyze(context.Background(), analysis.Request{Input: "https://fakebank.com/login?x=1"})

	require.NoError(t, err)
	assert.Equal(t, domain.ClassURL, res.Classification)
	assert.Equal(t, domain.StateApprovedFound, res.State)
	require.Len(t, res.Approved, 2)
	assert.Equal(t, domain.RiskHigh, res.RiskLevel)
	assert.Equal(t, 50, res.Score)
}

func TestEngineFreeTextFindsSimilarReports(t *testing.T) {
	finder := NewFakeFinder(
		domain.ReportRecord{Content: "Bitcoin doubling scheme on telegram", Status: "approved", RiskLevel: "high"},
	)
	res, err := newEngine(finder, nil).Analyze(context.Background(), analysis.Request{Input: "send bitcoin to double it"})

	require.NoError(t, err)
	assert.Equal(t, domain.StateApprovedFound, res.State)
	assert.Equal(t, domain.RiskHigh, res.RiskLevel)
	assert.Equal(t, 40, res.Score)
	assert.Equal(t, 5, res.KeywordScore)
}

func TestEngineValidationFailsFast(t *testing.T) {
	cases := []struct {
		Name string
		Req  analysis.Request
	}{
		{"empty input", analysis.Request{Input: "   "}},
		{"short phone", analysis.Request{Input: "555-1234", ExpectPhone: true}},
		{"long phone", analysis.Request{Input: "+1234567890123456", ExpectPhone: true}},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			finder := NewFakeFinder()
			res, err := newEngine(finder, nil).Analyze(context.Background(), tc.Req)

			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, domain.IsValidation(err))
			assert.Empty(t, finder.Calls(), "no repository call after a validation error")
		})
	}
}
