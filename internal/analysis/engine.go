package analysis

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rgdevment/scam-shield/internal/domain"
	"github.com/rgdevment/scam-shield/pkg/logging"
)

const tracerName = "scamshield/analysis"

// Recorder receives analysis telemetry. Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveAnalysis(classification, state string, seconds float64)
	ObserveRepositoryError(operation string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAnalysis(string, string, float64) {}
func (nopRecorder) ObserveRepositoryError(string)           {}

// Request is one analysis invocation.
type Request struct {
	Input string

	// ExpectPhone asks for explicit phone validation before any lookup.
	ExpectPhone bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithTracerProvider records analysis spans on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracer = tp.Tracer(tracerName)
	}
}

// Engine runs the scam-likelihood analysis. It holds no per-request state,
// so one Engine serves concurrent requests.
type Engine struct {
	normalizer *Normalizer
	scorer     *KeywordScorer
	matcher    *Matcher
	recorder   Recorder
	logger     *logging.Logger
	tracer     trace.Tracer
}

// NewEngine wires the analysis pipeline over finder.
func NewEngine(finder ReportFinder, normalizer *Normalizer, logger *logging.Logger, recorder Recorder, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if normalizer == nil {
		normalizer = NewNormalizer("")
	}
	e := &Engine{
		normalizer: normalizer,
		scorer:     NewKeywordScorer(),
		matcher:    NewMatcher(finder, logger, recorder),
		recorder:   recorder,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.matcher.tracer = e.tracer
	return e
}

// Normalizer exposes the engine's normalizer for callers that validate contact info.
func (e *Engine) Normalizer() *Normalizer {
	return e.normalizer
}

// Analyze classifies the input, looks up matching reports and aggregates a verdict.
// Only validation errors are returned; repository trouble degrades to "no scams found".
func (e *Engine) Analyze(ctx context.Context, req Request) (*domain.AnalysisResult, error) {
	start := time.Now()
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return nil, domain.NewValidationError("input", "content to check is required")
	}
	if req.ExpectPhone {
		if err := ValidatePhoneNumber(input); err != nil {
			return nil, err
		}
	}

	class := e.normalizer.Classify(input)
	ctx, span := e.tracer.Start(ctx, "analysis.analyze", trace.WithAttributes(
		attribute.String("scamshield.classification", string(class)),
	))
	defer span.End()

	var result domain.AnalysisResult
	if class.IsContact() {
		forms := e.normalizer.CanonicalForms(input, class)
		matches := e.matcher.FindReports(ctx, forms, class)
		result = Aggregate(matches.Approved, matches.Pending, nil)
	} else {
		kw := e.scorer.Score(input)
		matches := e.matcher.FindReports(ctx, kw.Matched(), class)
		result = Aggregate(matches.Approved, matches.Pending, &kw)
	}
	result.Input = input
	result.Classification = class

	span.SetAttributes(
		attribute.String("scamshield.state", string(result.State)),
		attribute.Int("scamshield.score", result.Score),
	)
	e.recorder.ObserveAnalysis(string(class), string(result.State), time.Since(start).Seconds())
	e.logger.Debug("analysis complete",
		"classification", class,
		"state", result.State,
		"risk_level", result.RiskLevel,
		"approved", len(result.Approved),
		"pending", len(result.Pending),
	)
	return &result, nil
}
