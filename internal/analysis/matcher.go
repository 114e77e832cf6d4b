package analysis

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rgdevment/scam-shield/internal/domain"
	"github.com/rgdevment/scam-shield/pkg/logging"
)

const (
	maxContactMatches = 10
	maxKeywordLookups = 5
	perKeywordLimit   = 3
)

// ReportFinder is the read side of the report repository used by the matcher.
type ReportFinder interface {
	// FindEqual returns reports whose field equals value exactly.
	FindEqual(ctx context.Context, field domain.IndexField, value string, limit int) ([]*domain.ScamReport, error)

	// FindPrefix returns reports whose field lies in [prefix, prefix+PrefixSentinel].
	FindPrefix(ctx context.Context, field domain.IndexField, prefix string, limit int) ([]*domain.ScamReport, error)
}

// MatchSet is the reports found for one analysis, partitioned by moderation status.
type MatchSet struct {
	Approved []*domain.ScamReport
	Pending  []*domain.ScamReport
}

// Total is the combined number of matched reports.
func (m MatchSet) Total() int {
	return len(m.Approved) + len(m.Pending)
}

// Matcher looks up previously submitted reports for normalized input.
// Repository failures never escape: they are logged and yield an empty set.
type Matcher struct {
	finder   ReportFinder
	logger   *logging.Logger
	recorder Recorder
	tracer   trace.Tracer
}

// NewMatcher builds a Matcher over finder.
func NewMatcher(finder ReportFinder, logger *logging.Logger, recorder Recorder) *Matcher {
	if logger == nil {
		logger = logging.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Matcher{finder: finder, logger: logger, recorder: recorder, tracer: otel.Tracer(tracerName)}
}

// FindReports queries the repository with canonical forms (phone/URL) or
// matched keywords (free text).
func (m *Matcher) FindReports(ctx context.Context, keys []string, class domain.InputClassification) MatchSet {
	ctx, span := m.tracer.Start(ctx, "analysis.find_reports", trace.WithAttributes(
		attribute.String("scamshield.classification", string(class)),
		attribute.Int("scamshield.keys", len(keys)),
	))
	defer span.End()

	acc := newAccumulator()
	var err error
	switch class {
	case domain.ClassPhoneNumber, domain.ClassURL:
		err = m.findByContact(ctx, acc, keys, class)
	case domain.ClassFreeText:
		err = m.findByKeywords(ctx, acc, keys)
	}
	if err != nil {
		span.RecordError(err)
		return MatchSet{Approved: []*domain.ScamReport{}, Pending: []*domain.ScamReport{}}
	}
	return acc.partition()
}

func (m *Matcher) findByContact(ctx context.Context, acc *accumulator, forms []string, class domain.InputClassification) error {
	for _, form := range forms {
		if acc.len() >= maxContactMatches {
			break
		}
		reports, err := m.finder.FindEqual(ctx, domain.FieldContactInfo, form, maxContactMatches)
		if err != nil {
			return m.fail("find_equal", form, err)
		}
		acc.add(reports, maxContactMatches)
	}

	if class != domain.ClassURL || acc.len() > 0 || len(forms) == 0 {
		return nil
	}

	// Reports saved with an unusual path or fragment still share the host.
	host := Hostname(forms[0])
	if host == "" {
		return nil
	}
	reports, err := m.finder.FindPrefix(ctx, domain.FieldContactInfo, host, maxContactMatches)
	if err != nil {
		return m.fail("find_prefix", host, err)
	}
	acc.add(reports, maxContactMatches)
	return nil
}

func (m *Matcher) findByKeywords(ctx context.Context, acc *accumulator, keywords []string) error {
	distinct := newOrderedSet()
	for _, kw := range keywords {
		distinct.add(kw)
	}
	lookups := distinct.list()
	if len(lookups) > maxKeywordLookups {
		lookups = lookups[:maxKeywordLookups]
	}

	for _, kw := range lookups {
		reports, err := m.finder.FindPrefix(ctx, domain.FieldContent, kw, perKeywordLimit)
		if err != nil {
			return m.fail("find_prefix", kw, err)
		}
		acc.add(reports, 0)
	}
	return nil
}

func (m *Matcher) fail(op, key string, err error) error {
	m.logger.Warn("report lookup failed, treating as no matches",
		slog.String("operation", op),
		slog.String("key", key),
		slog.Any("error", err),
	)
	m.recorder.ObserveRepositoryError(op)
	return err
}

// accumulator merges lookup results, deduplicating by report ID.
type accumulator struct {
	seen    map[uuid.UUID]struct{}
	reports []*domain.ScamReport
}

func newAccumulator() *accumulator {
	return &accumulator{seen: make(map[uuid.UUID]struct{})}
}

// add appends unseen reports; a positive limit caps the total.
func (a *accumulator) add(reports []*domain.ScamReport, limit int) {
	for _, r := range reports {
		if r == nil {
			continue
		}
		if limit > 0 && len(a.reports) >= limit {
			return
		}
		if _, ok := a.seen[r.ID]; ok {
			continue
		}
		a.seen[r.ID] = struct{}{}
		a.reports = append(a.reports, r)
	}
}

func (a *accumulator) len() int {
	return len(a.reports)
}

func (a *accumulator) partition() MatchSet {
	set := MatchSet{Approved: []*domain.ScamReport{}, Pending: []*domain.ScamReport{}}
	for _, r := range a.reports {
		if r.IsApproved() {
			set.Approved = append(set.Approved, r)
		} else {
			set.Pending = append(set.Pending, r)
		}
	}
	return set
}
