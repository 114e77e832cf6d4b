package scylla

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"
)

// Schema holds the tables the repository expects inside its keyspace.
// report_index is a manual secondary index clustered by value so equality
// and prefix lookups are range scans. Its partition is the field name, split
// by the value's first rune for free-form fields (see indexBucket).
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS reports (
		id uuid PRIMARY KEY,
		title text,
		content text,
		category text,
		risk_level text,
		report_count int,
		status text,
		contact_info text,
		country_code text,
		reporter_id text,
		reporter_name text,
		screenshot_url text,
		created_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS report_index (
		bucket text,
		value text,
		report_id uuid,
		PRIMARY KEY ((bucket), value, report_id)
	)`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, session *gocql.Session) error {
	for _, stmt := range Schema {
		if err := session.Query(stmt).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("scylla: failed to apply schema: %w", err)
		}
	}
	return nil
}
