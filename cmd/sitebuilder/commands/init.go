package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	_, _ = fmt.Fprintf(g.Out, "Writing configuration to %s\n", root.Config)
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}
	written, err := templates.ExportDefaults(cfg.Paths.Templates)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "export default templates").
			WithContext("path", cfg.Paths.Templates).
			Build()
	}
	for _, f := range written {
		_, _ = fmt.Fprintf(g.Out, "Wrote %s\n", filepath.Join(cfg.Paths.Templates, filepath.Base(f)))
	}
	_, _ = fmt.Fprintln(g.Out, "Run 'sitebuilder structure' to create the structure table and page stubs")
	return nil
}
