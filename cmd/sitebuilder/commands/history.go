package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `short:"n" help:"Number of builds to list" default:"20"`
	Build string `name:"build" help:"Show a single build by id"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return errors.ConfigError("build history is disabled (set history.enabled)").UserAction().Build()
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	var recs []history.Record
	if h.Build != "" {
		rec, err := store.Get(ctx, h.Build)
		if err != nil {
			return err
		}
		recs = []history.Record{rec}
	} else if recs, err = store.Recent(ctx, h.Limit); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tBUILD\tOUTCOME\tVERSION\tPAGES\tFAILURES\tBROKEN\tDURATION")
	for _, r := range recs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.StartedAt.Local().Format(time.DateTime), r.BuildID, r.Outcome, r.Version,
			r.Pages, r.Failures, r.BrokenLinks, r.Duration.Round(time.Millisecond))
		if r.Error != "" && h.Build != "" {
			_, _ = fmt.Fprintf(tw, "\terror: %s\n", r.Error)
		}
	}
	return tw.Flush()
}
