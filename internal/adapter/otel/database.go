package otel

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/neomorfeo/sendstack/internal/adapter/sqlite"
)

// OpenDB opens the order database with OpenTelemetry instrumentation: a span
// per statement and connection pool metrics. The handle gets the same
// single-connection and WAL setup as sqlite.Open, so the order store, the
// payload store and River can share it.
func OpenDB(dataSourceName string) (*sql.DB, error) {
	attrs := otelsql.WithAttributes(semconv.DBSystemSqlite)

	db, err := otelsql.Open("sqlite", dataSourceName, attrs,
		otelsql.WithSpanOptions(otelsql.SpanOptions{OmitConnResetSession: true}),
	)
	if err != nil {
		return nil, fmt.Errorf("opening instrumented database: %w", err)
	}

	if err := sqlite.Configure(db); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := otelsql.RegisterDBStatsMetrics(db, attrs); err != nil {
		db.Close()
		return nil, fmt.Errorf("registering db stats metrics: %w", err)
	}

	return db, nil
}
