package analysis_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rgdevment/scam-shield/internal/domain"
)

type lookup struct {
	Op    string
	Field domain.IndexField
	Value string
	Limit int
}

// FakeFinder is an in-process ReportFinder that records every lookup.
type FakeFinder struct {
	mu      sync.Mutex
	reports []*domain.ScamReport
	calls   []lookup
	err     error
}

func NewFakeFinder(records ...domain.ReportRecord) *FakeFinder {
	f := &FakeFinder{}
	for _, rec := range records {
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		f.reports = append(f.reports, domain.ParseReport(rec, time.Now()))
	}
	return f
}

func (f *FakeFinder) Fail(err error) *FakeFinder {
	f.err = err
	return f
}

func (f *FakeFinder) Calls() []lookup {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]lookup(nil), f.calls...)
}

func (f *FakeFinder) FindEqual(_ context.Context, field domain.IndexField, value string, limit int) ([]*domain.ScamReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, lookup{Op: "equal", Field: field, Value: value, Limit: limit})
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.ScamReport
	for _, r := range f.reports {
		if len(out) >= limit {
			break
		}
		if fieldValue(r, field) == value {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *FakeFinder) FindPrefix(_ context.Context, field domain.IndexField, prefix string, limit int) ([]*domain.ScamReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, lookup{Op: "prefix", Field: field, Value: prefix, Limit: limit})
	if f.err != nil {
		return nil, f.err
	}
	upper := prefix + domain.PrefixSentinel
	var out []*domain.ScamReport
	for _, r := range f.reports {
		if len(out) >= limit {
			break
		}
		v := fieldValue(r, field)
		if v >= prefix && v <= upper {
			out = append(out, r)
		}
	}
	return out, nil
}

func fieldValue(r *domain.ScamReport, field domain.IndexField) string {
	switch field {
	case domain.FieldContactInfo:
		return r.ContactInfo
	case domain.FieldContent:
		return strings.ToLower(r.Content)
	}
	return ""
}
