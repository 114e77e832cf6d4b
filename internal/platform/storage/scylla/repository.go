package scylla

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"github.com/rgdevment/scam-shield/internal/domain"
	"github.com/rgdevment/scam-shield/internal/service"
	"github.com/rgdevment/scam-shield/pkg/logging"
)

const (
	reportColumns = `id, title, content, category, risk_level, report_count, status,
		contact_info, country_code, reporter_id, reporter_name, screenshot_url, created_at`

	// listWindow bounds how many candidate rows a listing reads before
	// filtering, sorting and paging in memory.
	listWindow = 500

	// maxIDsPerQuery keeps IN restrictions under the cluster's
	// max_partition_key_restrictions_per_query default of 100.
	maxIDsPerQuery = 100
)

type scyllaRepository struct {
	session *gocql.Session
	logger  *logging.Logger
}

func NewScyllaRepository(session *gocql.Session, logger *logging.Logger) service.Repository {
	if logger == nil {
		logger = logging.Default()
	}
	return &scyllaRepository{
		session: session,
		logger:  logger,
	}
}

func Connect(keyspace string, timeout time.Duration, hosts ...string) (*gocql.Session, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.ProtoVersion = 4
	cluster.Timeout = timeout
	cluster.ConnectTimeout = timeout

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to scylla: %w", err)
	}
	return session, nil
}

func (r *scyllaRepository) Save(ctx context.Context, report *domain.ScamReport) error {
	id := gocql.UUID(report.ID)

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`
        INSERT INTO reports (`+reportColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		report.Title,
		report.Content,
		string(report.Category),
		string(report.RiskLevel),
		report.ReportCount,
		string(report.Status),
		report.ContactInfo,
		report.CountryCode,
		report.ReporterID,
		report.ReporterName,
		report.ScreenshotURL,
		report.CreatedAt,
	)
	for _, row := range indexRows(report) {
		batch.Query(`INSERT INTO report_index (bucket, value, report_id) VALUES (?, ?, ?)`,
			row.bucket, row.value, id)
	}

	if err := r.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("scylla: failed to save report: %w", err)
	}
	return nil
}

func (r *scyllaRepository) Get(ctx context.Context, id uuid.UUID) (*domain.ScamReport, error) {
	var rec domain.ReportRecord
	var rowID gocql.UUID

	err := r.session.Query(`SELECT `+reportColumns+` FROM reports WHERE id = ?`, gocql.UUID(id)).
		WithContext(ctx).
		Scan(recordDest(&rowID, &rec)...)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scylla: failed to get report: %w", err)
	}
	rec.ID = uuid.UUID(rowID)
	return domain.ParseReport(rec, time.Now()), nil
}

func (r *scyllaRepository) FindEqual(ctx context.Context, field domain.IndexField, value string, limit int) ([]*domain.ScamReport, error) {
	ids, err := r.indexIDs(ctx,
		`SELECT report_id FROM report_index WHERE bucket = ? AND value = ? LIMIT ?`,
		indexBucket(field, value), value, limit)
	if err != nil {
		return nil, err
	}
	return r.fetch(ctx, ids)
}

func (r *scyllaRepository) FindPrefix(ctx context.Context, field domain.IndexField, prefix string, limit int) ([]*domain.ScamReport, error) {
	lower, upper := prefixBounds(prefix)
	ids, err := r.indexIDs(ctx,
		`SELECT report_id FROM report_index WHERE bucket = ? AND value >= ? AND value <= ? LIMIT ?`,
		indexBucket(field, prefix), lower, upper, limit)
	if err != nil {
		return nil, err
	}
	return r.fetch(ctx, ids)
}

// List narrows candidates through the most selective index available, then
// filters, sorts and pages them in memory.
func (r *scyllaRepository) List(ctx context.Context, q domain.ListQuery) (domain.Page, error) {
	q = q.Normalize()

	var (
		reports []*domain.ScamReport
		err     error
	)
	switch {
	case q.ReporterID != "":
		reports, err = r.FindEqual(ctx, domain.FieldReporter, q.ReporterID, listWindow)
	case q.Status != "":
		reports, err = r.FindEqual(ctx, domain.FieldStatus, string(q.Status), listWindow)
	default:
		reports, err = r.scan(ctx, listWindow)
	}
	if err != nil {
		return domain.Page{}, err
	}
	return domain.ApplyListQuery(reports, q), nil
}

// IncrementReportCount bumps the counter with a compare-and-set so concurrent
// confirmations never overwrite each other.
func (r *scyllaRepository) IncrementReportCount(ctx context.Context, id uuid.UUID) (int, error) {
	counter := reportCounter{store: cqlCountStore{session: r.session}, logger: r.logger}
	return counter.increment(ctx, gocql.UUID(id))
}

func (r *scyllaRepository) UpdateModeration(ctx context.Context, id uuid.UUID, status domain.ReportStatus, level domain.RiskLevel) error {
	report, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	rowID := gocql.UUID(id)

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	if level != "" {
		batch.Query(`UPDATE reports SET status = ?, risk_level = ? WHERE id = ?`, string(status), string(level), rowID)
	} else {
		batch.Query(`UPDATE reports SET status = ? WHERE id = ?`, string(status), rowID)
	}
	if report.Status != status {
		batch.Query(`DELETE FROM report_index WHERE bucket = ? AND value = ? AND report_id = ?`,
			indexBucket(domain.FieldStatus, string(report.Status)), string(report.Status), rowID)
		batch.Query(`INSERT INTO report_index (bucket, value, report_id) VALUES (?, ?, ?)`,
			indexBucket(domain.FieldStatus, string(status)), string(status), rowID)
	}

	if err := r.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("scylla: failed to moderate report: %w", err)
	}
	return nil
}

func (r *scyllaRepository) indexIDs(ctx context.Context, stmt string, args ...interface{}) ([]gocql.UUID, error) {
	iter := r.session.Query(stmt, args...).WithContext(ctx).Iter()

	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("scylla: failed to read report index: %w", err)
	}
	return ids, nil
}

// fetch loads reports by id, keeping the order of ids.
func (r *scyllaRepository) fetch(ctx context.Context, ids []gocql.UUID) ([]*domain.ScamReport, error) {
	if len(ids) == 0 {
		return []*domain.ScamReport{}, nil
	}
	reports := make([]*domain.ScamReport, 0, len(ids))
	for _, chunk := range chunkIDs(ids, maxIDsPerQuery) {
		iter := r.session.Query(`SELECT `+reportColumns+` FROM reports WHERE id IN ?`, chunk).WithContext(ctx).Iter()
		found, err := scanReports(iter)
		if err != nil {
			return nil, err
		}
		reports = append(reports, found...)
	}
	return orderByIDs(reports, ids), nil
}

func (r *scyllaRepository) scan(ctx context.Context, limit int) ([]*domain.ScamReport, error) {
	iter := r.session.Query(`SELECT `+reportColumns+` FROM reports LIMIT ?`, limit).WithContext(ctx).Iter()
	return scanReports(iter)
}

func scanReports(iter *gocql.Iter) ([]*domain.ScamReport, error) {
	now := time.Now()
	reports := []*domain.ScamReport{}

	var rec domain.ReportRecord
	var rowID gocql.UUID
	dest := recordDest(&rowID, &rec)
	for iter.Scan(dest...) {
		rec.ID = uuid.UUID(rowID)
		reports = append(reports, domain.ParseReport(rec, now))
		rec = domain.ReportRecord{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("scylla: failed to iterate reports: %w", err)
	}
	return reports, nil
}

// recordDest lists scan targets in reportColumns order.
func recordDest(id *gocql.UUID, rec *domain.ReportRecord) []interface{} {
	return []interface{}{
		id,
		&rec.Title,
		&rec.Content,
		&rec.Category,
		&rec.RiskLevel,
		&rec.ReportCount,
		&rec.Status,
		&rec.ContactInfo,
		&rec.CountryCode,
		&rec.ReporterID,
		&rec.ReporterName,
		&rec.ScreenshotURL,
		&rec.CreatedAt,
	}
}

type indexRow struct {
	field  domain.IndexField
	bucket string
	value  string
}

func indexRows(report *domain.ScamReport) []indexRow {
	rows := make([]indexRow, 0, len(domain.IndexedFields))
	for _, field := range domain.IndexedFields {
		if v := domain.IndexValue(report, field); v != "" {
			rows = append(rows, indexRow{field: field, bucket: indexBucket(field, v), value: v})
		}
	}
	return rows
}

// indexBucket is the report_index partition holding value. Content and
// contact info are split by their first rune; any non-empty prefix of a
// value lands in the same bucket as the value itself.
func indexBucket(field domain.IndexField, value string) string {
	switch field {
	case domain.FieldContent, domain.FieldContactInfo:
		r, size := utf8.DecodeRuneInString(value)
		if size == 0 {
			return string(field)
		}
		return string(field) + ":" + string(r)
	}
	return string(field)
}

func prefixBounds(prefix string) (string, string) {
	return prefix, prefix + domain.PrefixSentinel
}

func chunkIDs(ids []gocql.UUID, size int) [][]gocql.UUID {
	var chunks [][]gocql.UUID
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

func orderByIDs(reports []*domain.ScamReport, ids []gocql.UUID) []*domain.ScamReport {
	byID := make(map[uuid.UUID]*domain.ScamReport, len(reports))
	for _, r := range reports {
		byID[r.ID] = r
	}
	out := make([]*domain.ScamReport, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[uuid.UUID(id)]; ok {
			out = append(out, r)
			delete(byID, uuid.UUID(id))
		}
	}
	return out
}
