package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/preview"
)

// PreviewCmd implements the 'preview' command. Preview builds never
// increment the site version.
type PreviewCmd struct {
	Port int `help:"Port to serve on; defaults to preview.port"`
}

func (p *PreviewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := newServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	return preview.Preview(ctx, previewOptions(cfg, svc, p.Port, false))
}

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	Now   bool `help:"Build once immediately"`
	Serve bool `help:"Serve the output, /healthz and /metrics on preview.port"`
	Port  int  `help:"Port to serve on; defaults to preview.port"`
}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := newServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	return preview.Serve(ctx, previewOptions(cfg, svc, d.Port, true), cfg.Daemon.Schedule, d.Now, d.Serve)
}

func previewOptions(cfg *config.Config, svc *services, port int, increment bool) preview.Options {
	opts := preview.Options{
		Config:   cfg,
		Registry: svc.registry,
		Build: func(ctx context.Context) (*build.Result, error) {
			return svc.build.Run(ctx, build.Request{Config: cfg, Increment: increment})
		},
	}
	if port > 0 {
		opts.Addr = fmt.Sprintf(":%d", port)
	}
	return opts
}
