package domain

import (
	"sort"
	"strings"
)

// SortOrder selects listing order.
type SortOrder string

const (
	SortLatest   SortOrder = "latest"
	SortReported SortOrder = "reported"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// IndexField names a report attribute that stores can look up by value or prefix.
type IndexField string

const (
	FieldContactInfo IndexField = "contact_info"
	FieldContent     IndexField = "content"
	FieldCategory    IndexField = "category"
	FieldReporter    IndexField = "reporter_id"
	FieldStatus      IndexField = "status"
)

// PrefixSentinel sorts after any string sharing the prefix it is appended to.
const PrefixSentinel = "\uf8ff"

// ListQuery describes an explorer/profile listing.
type ListQuery struct {
	Status     ReportStatus
	Category   Category
	RiskLevel  RiskLevel
	ReporterID string
	Search     string
	Sort       SortOrder
	Offset     int
	Limit      int
}

// Normalize clamps paging and defaults the sort order.
func (q ListQuery) Normalize() ListQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Sort != SortReported {
		q.Sort = SortLatest
	}
	q.Search = strings.ToLower(strings.TrimSpace(q.Search))
	return q
}

// Matches reports whether r passes the query filters.
func (q ListQuery) Matches(r *ScamReport) bool {
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if q.Category != "" && r.Category != q.Category {
		return false
	}
	if q.RiskLevel != "" && r.RiskLevel != q.RiskLevel {
		return false
	}
	if q.ReporterID != "" && r.ReporterID != q.ReporterID {
		return false
	}
	if q.Search != "" {
		term := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(r.Title), term) && !strings.Contains(strings.ToLower(r.Content), term) {
			return false
		}
	}
	return true
}

// Page is one slice of a listing.
type Page struct {
	Reports []*ScamReport `json:"reports"`
	Offset  int           `json:"offset"`
	HasMore bool          `json:"hasMore"`
}

// ApplyListQuery filters, sorts and pages candidates in memory.
func ApplyListQuery(candidates []*ScamReport, q ListQuery) Page {
	q = q.Normalize()

	filtered := make([]*ScamReport, 0, len(candidates))
	for _, r := range candidates {
		if q.Matches(r) {
			filtered = append(filtered, r)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if q.Sort == SortReported && a.ReportCount != b.ReportCount {
			return a.ReportCount > b.ReportCount
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	page := Page{Reports: []*ScamReport{}, Offset: q.Offset}
	if q.Offset >= len(filtered) {
		return page
	}
	end := q.Offset + q.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	page.Reports = filtered[q.Offset:end]
	page.HasMore = end < len(filtered)
	return page
}

const maxIndexedContentRunes = 256

// IndexedFields lists every field stores maintain a lookup index for.
var IndexedFields = []IndexField{FieldContactInfo, FieldContent, FieldCategory, FieldReporter, FieldStatus}

// IndexValue is the key under which r is indexed for field. Content is
// indexed lower-cased and truncated so keyword prefixes match regardless of case.
func IndexValue(r *ScamReport, field IndexField) string {
	switch field {
	case FieldContactInfo:
		return strings.TrimSpace(r.ContactInfo)
	case FieldContent:
		v := []rune(strings.ToLower(strings.TrimSpace(r.Content)))
		if len(v) > maxIndexedContentRunes {
			v = v[:maxIndexedContentRunes]
		}
		return string(v)
	case FieldCategory:
		return string(r.Category)
	case FieldReporter:
		return r.ReporterID
	case FieldStatus:
		return string(r.Status)
	}
	return ""
}
