package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rgdevment/scam-shield/internal/domain"
	"github.com/rgdevment/scam-shield/internal/service"
)

// Repository is an in-memory report store for local development and tests.
// Rows are kept in their storage shape and parsed on every read, like the
// Scylla adapter.
type Repository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]domain.ReportRecord
	err     error
}

var _ service.Repository = (*Repository)(nil)

// NewRepository creates an empty store.
func NewRepository() *Repository {
	return &Repository{records: make(map[uuid.UUID]domain.ReportRecord)}
}

// WithError makes every subsequent call fail with err.
func (r *Repository) WithError(err error) *Repository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
	return r
}

// Seed stores raw records as-is, bypassing validation.
func (r *Repository) Seed(records ...domain.ReportRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		r.records[rec.ID] = rec
	}
}

func (r *Repository) Save(_ context.Context, report *domain.ScamReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records[report.ID] = report.Record()
	return nil
}

func (r *Repository) Get(_ context.Context, id uuid.UUID) (*domain.ScamReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return domain.ParseReport(rec, time.Now()), nil
}

func (r *Repository) FindEqual(_ context.Context, field domain.IndexField, value string, limit int) ([]*domain.ScamReport, error) {
	return r.scan(field, limit, func(v string) bool { return v == value })
}

func (r *Repository) FindPrefix(_ context.Context, field domain.IndexField, prefix string, limit int) ([]*domain.ScamReport, error) {
	upper := prefix + domain.PrefixSentinel
	return r.scan(field, limit, func(v string) bool { return v >= prefix && v <= upper })
}

// scan walks the index for field in (value, id) order, mirroring a clustered index.
func (r *Repository) scan(field domain.IndexField, limit int, match func(string) bool) ([]*domain.ScamReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}

	type entry struct {
		value  string
		report *domain.ScamReport
	}
	now := time.Now()
	var entries []entry
	for _, rec := range r.records {
		report := domain.ParseReport(rec, now)
		v := domain.IndexValue(report, field)
		if v != "" && match(v) {
			entries = append(entries, entry{value: v, report: report})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].value != entries[j].value {
			return entries[i].value < entries[j].value
		}
		return entries[i].report.ID.String() < entries[j].report.ID.String()
	})

	out := make([]*domain.ScamReport, 0, len(entries))
	for _, e := range entries {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, e.report)
	}
	return out, nil
}

func (r *Repository) List(_ context.Context, q domain.ListQuery) (domain.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return domain.Page{}, r.err
	}
	now := time.Now()
	all := make([]*domain.ScamReport, 0, len(r.records))
	for _, rec := range r.records {
		all = append(all, domain.ParseReport(rec, now))
	}
	return domain.ApplyListQuery(all, q), nil
}

func (r *Repository) IncrementReportCount(_ context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	rec, ok := r.records[id]
	if !ok {
		return 0, domain.ErrReportNotFound
	}
	if rec.ReportCount < 1 {
		rec.ReportCount = 1
	}
	rec.ReportCount++
	r.records[id] = rec
	return rec.ReportCount, nil
}

func (r *Repository) UpdateModeration(_ context.Context, id uuid.UUID, status domain.ReportStatus, level domain.RiskLevel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	rec, ok := r.records[id]
	if !ok {
		return domain.ErrReportNotFound
	}
	rec.Status = string(status)
	if level != "" {
		rec.RiskLevel = string(level)
	}
	r.records[id] = rec
	return nil
}
