package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	helpers "git.home.luguber.info/inful/sitebuilder/internal/testutil/testutils"
)

// run executes the CLI with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("sitebuilder"), kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	err = ctx.Run(&Global{Out: &out}, &cli)
	return out.String(), err
}

func TestCLI_InitStructureBuild(t *testing.T) {
	t.Setenv("SITEBUILDER_NATS_URL", "")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sitebuilder.yaml")

	out, err := run(t, "--config", cfgPath, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Writing configuration to")
	helpers.NewFileAssertions(t, dir).
		AssertFileExists("sitebuilder.yaml").
		AssertDirExists("content").
		AssertFileExists("templates/base.html")

	_, err = run(t, "--config", cfgPath, "init")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	out, err = run(t, "--config", cfgPath, "structure")
	require.NoError(t, err)
	assert.Contains(t, out, "Created structure table")
	assert.Contains(t, out, "Created 01_home/010101 - home.md")
	helpers.NewFileAssertions(t, dir).
		AssertFileExists("content/structure.xlsx").
		AssertFileExists("content/01_home/010101 - home.md")

	out, err = run(t, "--config", cfgPath, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "version 1: 1 pages")
	helpers.NewFileAssertions(t, dir).
		AssertFileContains("output/index.html", "This page has no content yet.").
		AssertFileExists("output/sitemap.html").
		AssertFileExists("content/properties.yaml")

	out, err = run(t, "--config", cfgPath, "build", "--no-increment")
	require.NoError(t, err)
	assert.Contains(t, out, "version 1: 1 pages")

	out, err = run(t, "--config", cfgPath, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "0 broken")

	out, err = run(t, "--config", cfgPath, "history", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "OUTCOME")
	assert.Equal(t, 2, bytes.Count([]byte(out), []byte("success")))
}

func TestCLI_MissingConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "build")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}
