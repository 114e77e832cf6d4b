package scylla

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocql/gocql"

	"github.com/rgdevment/scam-shield/internal/domain"
	"github.com/rgdevment/scam-shield/pkg/logging"
)

const maxCASAttempts = 5

// countStore reads and conditionally writes the raw report_count column.
// A nil count means the column is null.
type countStore interface {
	readCount(ctx context.Context, id gocql.UUID) (*int, error)
	casCount(ctx context.Context, id gocql.UUID, expected *int, next int) (bool, error)
}

type cqlCountStore struct {
	session *gocql.Session
}

func (s cqlCountStore) readCount(ctx context.Context, id gocql.UUID) (*int, error) {
	var count *int
	err := s.session.Query(`SELECT report_count FROM reports WHERE id = ?`, id).WithContext(ctx).Scan(&count)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scylla: failed to read report count: %w", err)
	}
	return count, nil
}

func (s cqlCountStore) casCount(ctx context.Context, id gocql.UUID, expected *int, next int) (bool, error) {
	var q *gocql.Query
	if expected == nil {
		q = s.session.Query(`UPDATE reports SET report_count = ? WHERE id = ? IF report_count = null`, next, id)
	} else {
		q = s.session.Query(`UPDATE reports SET report_count = ? WHERE id = ? IF report_count = ?`, next, id, *expected)
	}
	applied, err := q.WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return false, fmt.Errorf("scylla: failed to increment report count: %w", err)
	}
	return applied, nil
}

// reportCounter increments report_count with a lightweight transaction,
// comparing against the stored value rather than its parsed default.
type reportCounter struct {
	store  countStore
	logger *logging.Logger
}

func (c reportCounter) increment(ctx context.Context, id gocql.UUID) (int, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		current, err := c.store.readCount(ctx, id)
		if err != nil {
			return 0, err
		}
		next := storedCount(current) + 1
		applied, err := c.store.casCount(ctx, id, current, next)
		if err != nil {
			return 0, err
		}
		if applied {
			return next, nil
		}
		c.logger.Debug("report count changed concurrently, retrying",
			"report_id", id.String(), "attempt", attempt+1)
	}
	return 0, fmt.Errorf("scylla: report count contention on %s", id)
}

// storedCount is the count a reader sees for a raw column value.
func storedCount(raw *int) int {
	if raw == nil || *raw < 1 {
		return 1
	}
	return *raw
}
