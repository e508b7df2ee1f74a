package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/scaffold"
)

// StructureCmd implements the 'structure' command.
type StructureCmd struct {
	Prune bool `help:"Delete content files whose page id is not in the structure table"`
}

func (s *StructureCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}
	rep, err := scaffold.Run(context.Background(), cfg.Paths.Content, cfg.StructurePath(), scaffold.Options{
		Sheet: cfg.Structure.Sheet,
		Prune: s.Prune,
	})
	if err != nil {
		return err
	}

	if rep.NewTable {
		_, _ = fmt.Fprintf(g.Out, "Created structure table %s\n", cfg.StructurePath())
	}
	for _, id := range rep.AssignedIDs {
		_, _ = fmt.Fprintf(g.Out, "Assigned page id %s\n", id)
	}
	for _, m := range rep.Renamed {
		_, _ = fmt.Fprintf(g.Out, "Renamed %s -> %s\n", m.From, m.To)
	}
	for _, p := range rep.Created {
		_, _ = fmt.Fprintf(g.Out, "Created %s\n", p)
	}
	for _, p := range rep.Deleted {
		_, _ = fmt.Fprintf(g.Out, "Deleted %s\n", p)
	}
	if n := len(rep.Unknown) - len(rep.Deleted); n > 0 {
		_, _ = fmt.Fprintf(g.Out, "%d files have an unknown page id (use --prune to delete them)\n", n)
	}
	for _, p := range rep.Duplicates {
		_, _ = fmt.Fprintf(g.Out, "Duplicate page id in %s\n", p)
	}
	return nil
}
