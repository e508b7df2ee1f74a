package observability

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// StageTimer measures one build stage and logs its outcome when ended.
type StageTimer struct {
	ctx   context.Context
	name  string
	start time.Time
	now   func() time.Time
}

// StartStage tags ctx with the stage name and starts timing it.
func StartStage(ctx context.Context, name string) (context.Context, *StageTimer) {
	ctx = WithStage(ctx, name)
	DebugContext(ctx, "Stage started")
	return ctx, &StageTimer{ctx: ctx, name: name, start: time.Now(), now: time.Now}
}

// Name returns the stage name.
func (s *StageTimer) Name() string { return s.name }

// End logs the stage duration, or the error if the stage failed, and returns the duration.
func (s *StageTimer) End(err error) time.Duration {
	d := s.now().Sub(s.start)
	ms := logfields.DurationMS(float64(d.Microseconds()) / 1000)
	if err != nil {
		ErrorContext(s.ctx, "Stage failed", ms, logfields.Error(err))
		return d
	}
	DebugContext(s.ctx, "Stage completed", ms)
	return d
}
