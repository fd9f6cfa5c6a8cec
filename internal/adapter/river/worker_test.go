package river_test

import (
	"context"
	"sync"
	"testing"
	"time"

	goriver "github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	riveradapter "github.com/neomorfeo/sendstack/internal/adapter/river"
	"github.com/neomorfeo/sendstack/internal/clock"
	"github.com/neomorfeo/sendstack/internal/domain"
)

// purgeRecorder is a PayloadStore that only records purge calls.
type purgeRecorder struct {
	mu    sync.Mutex
	calls []time.Time
}

func (p *purgeRecorder) Put(context.Context, domain.TransientPayload) error { return nil }

func (p *purgeRecorder) Get(context.Context, string) (domain.TransientPayload, error) {
	return domain.TransientPayload{}, domain.ErrPayloadNotFound
}

func (p *purgeRecorder) Delete(context.Context, string) error { return nil }

func (p *purgeRecorder) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, now)
	return 3, nil
}

func (p *purgeRecorder) first() (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return time.Time{}, false
	}
	return p.calls[0], true
}

func TestPurgePayloads_RunsOnStart(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &purgeRecorder{}

	client := setupClient(t, db, riveradapter.Deps{
		Payloads:      store,
		Clock:         clock.NewFixed(now),
		PurgeInterval: time.Hour,
	})

	subscribeChan, subscribeCancel := client.Subscribe(goriver.EventKindJobCompleted)
	defer subscribeCancel()
	startClient(t, client)

	deadline := time.After(10 * time.Second)
	for {
		select {
		case event := <-subscribeChan:
			if event.Job.Kind != "payload.purge" {
				continue
			}
			if event.Job.State != rivertype.JobStateCompleted {
				t.Errorf("job state = %s, want %s", event.Job.State, rivertype.JobStateCompleted)
			}
			at, ok := store.first()
			if !ok {
				t.Fatal("purge job completed without calling PurgeExpired")
			}
			if !at.Equal(now) {
				t.Errorf("purge time = %v, want %v", at, now)
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for purge job")
		}
	}
}
