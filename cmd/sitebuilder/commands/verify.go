package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/linkverify"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct{}

func (v *VerifyCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	rep, err := linkverify.Verify(context.Background(), cfg.Paths.Output, cfg.Build.Concurrency)
	if err != nil {
		return err
	}
	for _, b := range rep.Broken {
		_, _ = fmt.Fprintf(g.Out, "%s: %s (%s)\n", b.Page, b.URL, b.Reason)
	}
	_, _ = fmt.Fprintf(g.Out, "Checked %d links on %d pages, %d broken\n", rep.Checked, rep.Pages, len(rep.Broken))
	if !rep.OK() {
		return errors.ValidationError("broken internal links").WithContext("count", len(rep.Broken)).Build()
	}
	return nil
}
