package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	NoIncrement bool `name:"no-increment" help:"Keep the site version unchanged"`
	Strict      bool `help:"Treat structure warnings such as duplicate crossref codes as errors"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
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

	res, err := svc.build.Run(ctx, build.Request{
		Config:    cfg,
		Increment: !b.NoIncrement,
		Strict:    b.Strict,
	})
	if err != nil {
		return err
	}
	printResult(g, res)
	return nil
}

func printResult(g *Global, res *build.Result) {
	_, _ = fmt.Fprintf(g.Out, "Built %s version %d: %d pages", res.Site, res.Version, res.Pages)
	if res.Ignored > 0 {
		_, _ = fmt.Fprintf(g.Out, ", %d files ignored", res.Ignored)
	}
	_, _ = fmt.Fprintf(g.Out, " in %s\n", res.Duration.Round(time.Millisecond))
	if res.Failures > 0 {
		_, _ = fmt.Fprintf(g.Out, "%d sections failed to render\n", res.Failures)
	}
	if res.BrokenLinks > 0 {
		_, _ = fmt.Fprintf(g.Out, "%d broken links\n", res.BrokenLinks)
	}
	_, _ = fmt.Fprintf(g.Out, "Output written to %s\n", res.OutputPath)
}
