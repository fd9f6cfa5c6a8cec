package otel_test

import (
	"context"
	"testing"
	"time"

	adapter "github.com/neomorfeo/sendstack/internal/adapter/otel"
	"github.com/neomorfeo/sendstack/internal/adapter/sqlite"
	"github.com/neomorfeo/sendstack/internal/clock"
	"github.com/neomorfeo/sendstack/internal/domain"
)

func TestOpenDB_TracesStatements(t *testing.T) {
	exporter := setupTestTracer(t)

	db, err := adapter.OpenDB(t.TempDir() + "/traced.db")
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	repo, err := sqlite.NewFromDB(db)
	if err != nil {
		t.Fatalf("NewFromDB: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}

	exporter.Reset()
	if _, err := repo.Exists(context.Background(), "cs_1"); err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if len(exporter.GetSpans()) == 0 {
		t.Error("expected at least one SQL span")
	}

	store := sqlite.NewPayloadStore(db, clock.NewSystem())
	if _, err := store.PurgeExpired(context.Background(), time.Now()); err != nil {
		t.Fatalf("PurgeExpired on shared handle: %v", err)
	}
	if _, err := store.Get(context.Background(), "missing"); err != domain.ErrPayloadNotFound {
		t.Errorf("Get = %v, want ErrPayloadNotFound", err)
	}
}
