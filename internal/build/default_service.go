package build

import (
	"context"
	derrors "errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/linkverify"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/notify"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

// Stage names, as logged and recorded in metrics.
const (
	StageLoad     = "load"
	StagePages    = "pages"
	StageAssets   = "assets"
	StageVerify   = "verify"
	StageCompress = "compress"
	StagePersist  = "persist"
)

// Service executes builds. Optional collaborators are injected with the
// With* methods; the zero configuration only writes the site.
type Service struct {
	recorder  metrics.Recorder
	registry  *prom.Registry
	history   history.Store
	publisher notify.Publisher
	now       func() time.Time
	newID     func() string
}

// NewService creates a Service with no metrics, history or notifications.
func NewService() *Service {
	return &Service{
		recorder:  metrics.NoopRecorder{},
		publisher: notify.Noop{},
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// WithRecorder sets the metrics recorder. When reg is non-nil and a metrics
// textfile is configured, reg is written there after every build.
func (s *Service) WithRecorder(rec metrics.Recorder, reg *prom.Registry) *Service {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	s.recorder = rec
	s.registry = reg
	return s
}

// WithHistory records every build in store.
func (s *Service) WithHistory(store history.Store) *Service {
	s.history = store
	return s
}

// WithPublisher announces every build through p.
func (s *Service) WithPublisher(p notify.Publisher) *Service {
	if p == nil {
		p = notify.Noop{}
	}
	s.publisher = p
	return s
}

// WithClock replaces time.Now (for tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Run executes the complete build. The returned Result is never nil; its
// Status tells failed builds from builds that only had section failures.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	start := s.now()
	res := &Result{StartTime: start, BuildID: s.newID()}
	ctx = observability.WithBuildID(ctx, res.BuildID)

	var err error
	if req.Config == nil {
		err = errors.ConfigError("config required").Build()
	} else {
		res.OutputPath = req.Config.Paths.Output
		err = s.run(ctx, req, res)
	}

	res.EndTime = s.now()
	res.Duration = res.EndTime.Sub(start)
	res.Status = statusOf(err, res)
	s.recorder.IncBuildOutcome(res.Status.outcome())
	s.recorder.ObserveBuildDuration(res.Duration)

	if req.Config != nil {
		s.report(ctx, req.Config, res, err)
	}
	if err == nil {
		observability.InfoContext(ctx, "Build finished",
			logfields.Count(res.Pages),
			logfields.DurationMS(float64(res.Duration.Microseconds())/1000),
			logfields.Version(strconv.Itoa(res.Version)))
	}
	return res, err
}

func (s *Service) run(ctx context.Context, req Request, res *Result) error {
	cfg := req.Config
	var site *loadedSite
	err := s.stage(ctx, StageLoad, func(ctx context.Context) error {
		var err error
		site, err = loadSite(ctx, cfg, req.Increment, req.Strict || cfg.Structure.Strict, s.recorder)
		return err
	})
	if err != nil {
		return err
	}
	res.Site = site.props.Name
	res.Version = site.props.Version

	var used []string
	if err := s.stage(ctx, StagePages, func(ctx context.Context) error {
		out, err := writePages(ctx, cfg, site)
		if err != nil {
			return err
		}
		res.Pages = out.pages
		res.Ignored = out.ignored
		res.Failures = out.failures
		used = out.stylesheets
		return nil
	}); err != nil {
		return err
	}
	res.Stylesheets = used
	s.recorder.SetStylesheetsUsed(len(used))

	if err := s.stage(ctx, StageAssets, func(ctx context.Context) error {
		return writeAssets(ctx, cfg, site.templates, used)
	}); err != nil {
		return err
	}

	if cfg.Build.VerifyLinks {
		if err := s.stage(ctx, StageVerify, func(ctx context.Context) error {
			report, err := linkverify.Verify(ctx, cfg.Paths.Output, cfg.Build.Concurrency)
			if err != nil {
				return err
			}
			res.BrokenLinks = len(report.Broken)
			return nil
		}); err != nil {
			return err
		}
	}

	if cfg.Build.Compress {
		if err := s.stage(ctx, StageCompress, func(ctx context.Context) error {
			return CompressTree(ctx, cfg.Paths.Output, cfg.Build.Concurrency)
		}); err != nil {
			return err
		}
	}

	// Only an incremented version needs persisting.
	if !req.Increment {
		return nil
	}
	return s.stage(ctx, StagePersist, func(context.Context) error {
		return site.props.Save(cfg.PropertiesPath())
	})
}

// stage runs fn as a named, timed stage.
func (s *Service) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, timer := observability.StartStage(ctx, name)
	err := fn(ctx)
	d := timer.End(err)
	s.recorder.ObserveStageDuration(name, d)
	switch {
	case err == nil:
		s.recorder.IncStageResult(name, metrics.ResultSuccess)
	case derrors.Is(err, context.Canceled):
		s.recorder.IncStageResult(name, metrics.ResultCanceled)
	default:
		s.recorder.IncStageResult(name, metrics.ResultFatal)
	}
	return err
}

func statusOf(err error, res *Result) Status {
	switch {
	case err == nil && (res.Failures > 0 || res.BrokenLinks > 0):
		return StatusWarning
	case err == nil:
		return StatusSuccess
	case derrors.Is(err, context.Canceled), derrors.Is(err, context.DeadlineExceeded):
		return StatusCanceled
	default:
		return StatusFailed
	}
}

// report records the build in history, publishes it and writes the metrics
// textfile. Failures here are logged, never returned.
func (s *Service) report(ctx context.Context, cfg *config.Config, res *Result, buildErr error) {
	errText := ""
	if buildErr != nil {
		errText = buildErr.Error()
	}
	// The build context may already be canceled.
	rctx := context.WithoutCancel(ctx)

	if s.history != nil {
		rec := history.Record{
			BuildID:     res.BuildID,
			StartedAt:   res.StartTime,
			Duration:    res.Duration,
			Outcome:     string(res.Status),
			Version:     res.Version,
			Pages:       res.Pages,
			Failures:    res.Failures,
			BrokenLinks: res.BrokenLinks,
			Error:       errText,
		}
		if err := s.history.Add(rctx, rec); err != nil {
			observability.WarnContext(ctx, "Failed to record build history", logfields.Error(err))
		}
	}

	ev := &notify.BuildEvent{
		BuildID:     res.BuildID,
		Site:        res.Site,
		Version:     res.Version,
		Outcome:     string(res.Status),
		Pages:       res.Pages,
		Failures:    res.Failures,
		BrokenLinks: res.BrokenLinks,
		Output:      res.OutputPath,
		Error:       errText,
		StartedAt:   res.StartTime,
		DurationMS:  res.Duration.Milliseconds(),
	}
	if err := s.publisher.Publish(rctx, ev); err != nil {
		observability.WarnContext(ctx, "Failed to publish build event", logfields.Error(err))
	}

	if path := cfg.Monitoring.Metrics.Textfile; path != "" && s.registry != nil {
		if err := metrics.WriteTextfile(s.registry, path); err != nil {
			observability.WarnContext(ctx, "Failed to write metrics textfile", logfields.Path(path), logfields.Error(err))
		}
	}
}
