package preview

import (
	"context"
	"log/slog"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

const scheduledJobName = "scheduled-build"

// Daemon rebuilds the site on a cron schedule.
type Daemon struct {
	schedule string
	build    BuildFunc
	status   *Status
}

// NewDaemon returns a Daemon running build on the five-field cron
// expression schedule and recording outcomes in status.
func NewDaemon(schedule string, build BuildFunc, status *Status) *Daemon {
	if status == nil {
		status = &Status{}
	}
	return &Daemon{schedule: schedule, build: build, status: status}
}

// Run schedules builds until ctx is done. With buildNow a build runs
// immediately as well. A scheduled build that is due while the previous
// one still runs is skipped.
func (d *Daemon) Run(ctx context.Context, buildNow bool) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return errors.InternalError("create scheduler").WithCause(err).Build()
	}

	job, err := s.NewJob(
		gocron.CronJob(d.schedule, false),
		gocron.NewTask(func() { d.runBuild(ctx) }),
		gocron.WithName(scheduledJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return errors.ConfigError("invalid daemon schedule").
			WithCause(err).
			WithContext("schedule", d.schedule).
			UserAction().
			Build()
	}

	observability.InfoContext(ctx, "Starting scheduler", logfields.ScheduleName(d.schedule))
	s.Start()
	if next, err := job.NextRun(); err == nil {
		observability.InfoContext(ctx, "Next scheduled build", logfields.ScheduleName(scheduledJobName), slog.Time("next_run", next))
	}
	if buildNow {
		if err := job.RunNow(); err != nil {
			observability.WarnContext(ctx, "Failed to start immediate build", logfields.Error(err))
		}
	}

	<-ctx.Done()
	observability.InfoContext(ctx, "Stopping scheduler")
	if err := s.Shutdown(); err != nil {
		return errors.InternalError("stop scheduler").WithCause(err).Build()
	}
	return nil
}

func (d *Daemon) runBuild(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	res, err := d.build(ctx)
	d.status.Record(res, err)
	if err != nil {
		observability.ErrorContext(ctx, "Scheduled build failed", logfields.Error(err))
	}
}
