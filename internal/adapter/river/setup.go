package river

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"

	"github.com/neomorfeo/sendstack/internal/clock"
	"github.com/neomorfeo/sendstack/internal/domain"
)

// Deps are the collaborators the workers need.
type Deps struct {
	Payloads      domain.PayloadStore
	Clock         clock.Clock
	Logger        *slog.Logger
	PurgeInterval time.Duration
}

// Setup creates a River client with the order and purge workers registered,
// schedules the periodic purge and runs River's internal migrations. The
// caller must call client.Start() to begin processing jobs and client.Stop()
// for graceful shutdown.
func Setup(ctx context.Context, db *sql.DB, deps Deps) (*Client, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}
	if deps.PurgeInterval <= 0 {
		deps.PurgeInterval = 15 * time.Minute
	}

	driver := riversqlite.New(db)

	// Run River's own migrations (creates river_job, river_leader, etc.).
	// These are separate from the app's goose migrations.
	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		return nil, fmt.Errorf("creating river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return nil, fmt.Errorf("running river migrations: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &OrderEventWorker{logger: deps.Logger})

	var periodic []*river.PeriodicJob
	if deps.Payloads != nil {
		river.AddWorker(workers, &PurgePayloadsWorker{
			payloads: deps.Payloads,
			clock:    deps.Clock,
			logger:   deps.Logger,
		})
		periodic = append(periodic, river.NewPeriodicJob(
			river.PeriodicInterval(deps.PurgeInterval),
			func() (river.JobArgs, *river.InsertOpts) { return PurgePayloadsArgs{}, nil },
			&river.PeriodicJobOpts{RunOnStart: true},
		))
	}

	client, err := river.NewClient(driver, &river.Config{
		Logger: deps.Logger,
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 2},
		},
		PeriodicJobs: periodic,
		Workers:      workers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return client, nil
}
