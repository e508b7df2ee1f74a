package preview

import (
	"context"
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/properties"
)

// Options configure Preview and Serve.
type Options struct {
	Config *config.Config
	Build  BuildFunc
	// Registry, when set, is exposed on /metrics.
	Registry *prom.Registry
	// Addr overrides ":<preview.port>".
	Addr string
	// Ready, when set, is called with the bound address once serving.
	Ready func(addr string)
}

func (o Options) addr() string {
	if o.Addr != "" {
		return o.Addr
	}
	return fmt.Sprintf(":%d", o.Config.Preview.Port)
}

// Preview builds the site, serves it and rebuilds on every change to the
// content or templates until ctx is done. A failed build keeps the previous
// output online.
func Preview(ctx context.Context, opts Options) error {
	if opts.Config == nil || opts.Build == nil {
		return errors.ConfigError("preview needs a config and a build function").Build()
	}
	cfg := opts.Config
	status := &Status{}
	runBuild := func(ctx context.Context) {
		res, err := opts.Build(ctx)
		status.Record(res, err)
		if err != nil {
			observability.WarnContext(ctx, "Rebuild failed", logfields.Error(err))
		}
	}
	runBuild(ctx)

	watcher, err := NewWatcher([]string{cfg.Paths.Content, cfg.Paths.Templates}, buildOutputs(cfg)...)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	srv, err := Listen(opts.addr(), NewHandler(cfg.Paths.Output, opts.Registry, status))
	if err != nil {
		return err
	}
	observability.InfoContext(ctx, "Preview server listening", logfields.URL("http://"+srv.Addr()))
	if opts.Ready != nil {
		opts.Ready(srv.Addr())
	}

	rebuilder := NewRebuilder(cfg.Preview.DebounceInterval(), func(ctx context.Context) {
		observability.InfoContext(ctx, "Change detected; rebuilding site")
		runBuild(ctx)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx) })
	g.Go(func() error {
		rebuilder.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return watcher.Run(gctx, func(string) { rebuilder.Request() })
	})
	return g.Wait()
}

// buildOutputs are the files a build writes inside the watched directories.
func buildOutputs(cfg *config.Config) []string {
	props := cfg.PropertiesPath()
	return []string{props, properties.TempPath(props)}
}

// Serve runs the daemon and, with serve set, the HTTP server for its
// output alongside it.
func Serve(ctx context.Context, opts Options, schedule string, buildNow, serve bool) error {
	if opts.Config == nil || opts.Build == nil {
		return errors.ConfigError("daemon needs a config and a build function").Build()
	}
	status := &Status{}
	daemon := NewDaemon(schedule, opts.Build, status)
	if !serve {
		return daemon.Run(ctx, buildNow)
	}

	srv, err := Listen(opts.addr(), NewHandler(opts.Config.Paths.Output, opts.Registry, status))
	if err != nil {
		return err
	}
	observability.InfoContext(ctx, "Serving site", logfields.URL("http://"+srv.Addr()))
	if opts.Ready != nil {
		opts.Ready(srv.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx) })
	g.Go(func() error { return daemon.Run(gctx, buildNow) })
	return g.Wait()
}
