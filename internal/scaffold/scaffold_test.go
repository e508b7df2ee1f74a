package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/structure"
	helpers "git.home.luguber.info/inful/sitebuilder/internal/testutil/testutils"
)

func putFile(t *testing.T, root, rel, body string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o600))
}

func fixedID(ids ...string) func() string {
	return func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		row  structure.Row
		want string
	}{
		{structure.Row{SectionOrder: 1, Section: "Home", ChapterOrder: 1, GroupOrder: 1, PageOrder: 1, Page: "Home"}, "01_home/010101 - home.md"},
		{structure.Row{SectionOrder: 2, Section: "Guide", ChapterOrder: 3, Chapter: "Set Up", GroupOrder: 1, PageOrder: 12, Page: "Install"}, "02_guide/030112 - set up - install.md"},
		{structure.Row{SectionOrder: 4, Section: "Ops", ChapterOrder: 1, GroupOrder: 1, PageOrder: 1, Page: "In/Out"}, "04_ops/010101 - in-out.md"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, filepath.ToSlash(FileName(tt.row)))
		})
	}
}

func TestRun_RenamesAndCreates(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "structure.csv")
	require.NoError(t, structure.WriteTable(table, "", []structure.Row{
		{PageID: "AAAAA", SectionOrder: 1, Section: "Home", ChapterOrder: 1, GroupOrder: 1, PageOrder: 1, Page: "Home"},
		{PageID: "BBBBB", SectionOrder: 2, Section: "Guide", ChapterOrder: 1, Chapter: "Setup", GroupOrder: 1, PageOrder: 1, Page: "Install"},
		{SectionOrder: 2, Section: "Guide", ChapterOrder: 1, Chapter: "Setup", GroupOrder: 1, PageOrder: 2, Page: "Configure"},
	}))
	putFile(t, dir, "home.md", "AAAAA\nWelcome\n")
	putFile(t, dir, "misc/old.md", "BBBBB\nInstall it\n")
	putFile(t, dir, "misc/copy.md", "BBBBB\nagain\n")
	putFile(t, dir, "stray.md", "ZZZZZ\n")
	putFile(t, dir, "readme.md", "no line break")
	putFile(t, dir, "notes.md", "LONGER-ID\nx\n")

	rep, err := Run(context.Background(), dir, table, Options{NewID: fixedID("AAAAA", "NEW01")})
	require.NoError(t, err)

	assert.Equal(t, []string{"NEW01"}, rep.AssignedIDs)
	assert.Equal(t, []Move{
		{From: "home.md", To: "01_home/010101 - home.md"},
		{From: "misc/copy.md", To: "02_guide/010101 - setup - install.md"},
	}, rep.Renamed)
	assert.Equal(t, []string{"misc/old.md"}, rep.Duplicates)
	assert.Equal(t, []string{"stray.md"}, rep.Unknown)
	assert.Empty(t, rep.Deleted)
	assert.Equal(t, []string{"02_guide/010102 - setup - configure.md"}, rep.Created)
	assert.False(t, rep.NewTable)

	helpers.NewFileAssertions(t, dir).
		AssertFileContains("01_home/010101 - home.md", "Welcome").
		AssertFileContains("02_guide/010102 - setup - configure.md", "NEW01\n").
		AssertFileExists("stray.md").
		AssertFileExists("readme.md").
		AssertFileExists("misc/old.md").
		AssertNotExists("home.md")

	rows, err := structure.ReadTable(table, "")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "NEW01", rows[2].PageID)

	again, err := Run(context.Background(), dir, table, Options{})
	require.NoError(t, err)
	assert.Empty(t, again.Renamed)
	assert.Empty(t, again.Created)
	assert.Empty(t, again.AssignedIDs)
}

func TestRun_Prune(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "structure.csv")
	require.NoError(t, structure.WriteTable(table, "", []structure.Row{
		{PageID: "AAAAA", SectionOrder: 1, Section: "Home", ChapterOrder: 1, GroupOrder: 1, PageOrder: 1, Page: "Home"},
	}))
	putFile(t, dir, "stray.md", "ZZZZZ\n")

	rep, err := Run(context.Background(), dir, table, Options{Prune: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"stray.md"}, rep.Deleted)
	helpers.NewFileAssertions(t, dir).AssertNotExists("stray.md")
}

func TestRun_MissingTableStartsWithHome(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "structure.xlsx")

	rep, err := Run(context.Background(), dir, table, Options{NewID: fixedID("HOME1")})
	require.NoError(t, err)
	assert.True(t, rep.NewTable)
	assert.Equal(t, []string{"01_home/010101 - home.md"}, rep.Created)

	rows, err := structure.ReadTable(table, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "HOME1", rows[0].PageID)
	assert.Equal(t, "Home", rows[0].Page)
}

func TestRandomID(t *testing.T) {
	id := RandomID()
	assert.Len(t, id, structure.IDLength)
	assert.NotEqual(t, id, RandomID())
}
