// Package commands holds the sitebuilder command-line interface.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/notify"
)

// Global is shared with every command.
type Global struct {
	Out io.Writer
}

// CLI definition and global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"sitebuilder.yaml" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log format (text|json); defaults to monitoring.logging.format" enum:",text,json" default:""`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build     BuildCmd     `cmd:"" help:"Build the site"`
	Structure StructureCmd `cmd:"" help:"Assign page ids and file content according to the structure table"`
	Init      InitCmd      `cmd:"" help:"Write an example configuration and the default templates"`
	Preview   PreviewCmd   `cmd:"" help:"Serve the site and rebuild it on every change"`
	Daemon    DaemonCmd    `cmd:"" help:"Rebuild the site on a schedule"`
	History   HistoryCmd   `cmd:"" help:"List recent builds"`
	Verify    VerifyCmd    `cmd:"" help:"Check internal links of the generated site"`
}

// AfterApply runs after flag parsing and sets up logging until a
// configuration refines it.
func (c *CLI) AfterApply() error {
	setupLogging(c.Verbose, config.NormalizeLogFormat(c.LogFormat), config.LogLevelInfo)
	return nil
}

func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	format := cfg.Monitoring.Logging.Format
	if c.LogFormat != "" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}
	setupLogging(c.Verbose, format, cfg.Monitoring.Logging.Level)
	return cfg, nil
}

func setupLogging(verbose bool, format config.LogFormat, level config.LogLevel) {
	opts := &slog.HandlerOptions{Level: slogLevel(level)}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if format == config.LogFormatJSON {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func slogLevel(l config.LogLevel) slog.Level {
	switch l {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// services is a build service wired to the collaborators cfg enables.
type services struct {
	build    *build.Service
	registry *prom.Registry
	closers  []func() error
}

func newServices(ctx context.Context, cfg *config.Config) (*services, error) {
	s := &services{build: build.NewService()}

	if cfg.Monitoring.Metrics.Enabled || cfg.Monitoring.Metrics.Textfile != "" {
		s.registry = prom.NewRegistry()
		s.build.WithRecorder(metrics.NewPrometheusRecorder(s.registry), s.registry)
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		s.build.WithHistory(store)
		s.closers = append(s.closers, store.Close)
	}

	pub, err := notify.New(cfg.Notify.NATSURL, cfg.Notify.Subject)
	if err != nil {
		// Builds proceed without notifications when the broker is unreachable.
		slog.WarnContext(ctx, "Build notifications disabled", logfields.URL(cfg.Notify.NATSURL), logfields.Error(err))
		pub = notify.Noop{}
	}
	s.build.WithPublisher(pub)
	s.closers = append(s.closers, pub.Close)
	return s, nil
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			slog.Warn("Failed to close service", logfields.Error(err))
		}
	}
}
