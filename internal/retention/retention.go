// Package retention runs the scheduled cleanup of lapsed profile-access
// tokens. Stale token pairs on profiles are cleared and expired grants purged
// so personal data does not outlive its purpose.
package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"jassari/internal/accesstoken"
	"jassari/internal/membership/store/profiles"
)

// Job owns the cron schedule for token cleanup.
type Job struct {
	cron   *cron.Cron
	store  profiles.Store
	grants accesstoken.Store
	logger *slog.Logger
}

// New builds the job on the given cron schedule (standard five-field spec).
func New(store profiles.Store, grants accesstoken.Store, schedule string, logger *slog.Logger) (*Job, error) {
	j := &Job{
		cron:   cron.New(),
		store:  store,
		grants: grants,
		logger: logger,
	}
	if _, err := j.cron.AddFunc(schedule, j.run); err != nil {
		return nil, err
	}
	return j, nil
}

// Start launches the scheduler in its own goroutine.
func (j *Job) Start() {
	j.cron.Start()
}

// Stop halts scheduling and returns a context that is done once any running
// job has finished.
func (j *Job) Stop() context.Context {
	return j.cron.Stop()
}

// RunOnce executes one cleanup pass immediately.
func (j *Job) RunOnce(ctx context.Context) {
	now := time.Now()

	cleared, err := j.store.ClearLapsedAccessTokens(ctx, now)
	if err != nil {
		j.logger.ErrorContext(ctx, "failed to clear lapsed profile access tokens", "error", err.Error())
	}

	purged, err := j.grants.PurgeExpired(ctx, now)
	if err != nil {
		j.logger.ErrorContext(ctx, "failed to purge expired grants", "error", err.Error())
	}

	j.logger.InfoContext(ctx, "retention cleanup finished",
		"profiles_cleared", cleared,
		"grants_purged", purged,
	)
}

func (j *Job) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	j.RunOnce(ctx)
}
