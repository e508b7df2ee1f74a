package linkverify

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinksFromReader(t *testing.T) {
	doc := `<html><head><link rel="stylesheet" href="../css/styles_base.css"></head>
<body>
<a href="../index.html"><b>Home</b></a>
<img src="../images/logo.png" alt="Logo">
<iframe src="../iframes/map.html"></iframe>
<a href="https://example.com/">out</a>
<a>no href</a>
</body></html>`

	links, err := ExtractLinksFromReader(strings.NewReader(doc))
	require.NoError(t, err)

	want := []Link{
		{URL: "../css/styles_base.css", Text: "stylesheet", Tag: "link", Attribute: "href", IsInternal: true},
		{URL: "../index.html", Text: "Home", Tag: "a", Attribute: "href", IsInternal: true},
		{URL: "../images/logo.png", Text: "Logo", Tag: "img", Attribute: "src", IsInternal: true},
		{URL: "../iframes/map.html", Tag: "iframe", Attribute: "src", IsInternal: true},
		{URL: "https://example.com/", Text: "out", Tag: "a", Attribute: "href", IsInternal: false},
	}
	if diff := cmp.Diff(want, links); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestShouldVerifyLink(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"guide/install.html", true},
		{"/index.html", true},
		{"#top", false},
		{"mailto:team@example.com", false},
		{"javascript:void(0)", false},
		{"https://example.com/x.html", false},
		{"//cdn.example.com/x.js", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			link := Link{URL: tt.url, IsInternal: isInternalLink(tt.url)}
			assert.Equal(t, tt.want, ShouldVerifyLink(link))
		})
	}
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		page, ref  string
		want, fail string
	}{
		{"guide/setup/install.html", "../../index.html", "index.html", ""},
		{"guide/setup/install.html", "configure.html#step-2", "guide/setup/configure.html", ""},
		{"guide/setup/install.html", "/css/styles_base.css", "css/styles_base.css", ""},
		{"guide/install.html", "../docs/", "docs/index.html", ""},
		{"index.html", "?q=1", "", ""},
		{"index.html", "../secret.html", "", "points outside the site"},
	}
	for _, tt := range tests {
		t.Run(tt.page+"->"+tt.ref, func(t *testing.T) {
			got, reason := localPath(tt.page, tt.ref)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.fail, reason)
		})
	}
}

func write(t *testing.T, dir, rel, body string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o600))
}

func TestVerify(t *testing.T) {
	out := t.TempDir()
	write(t, out, "index.html", `<a href="guide/install.html">Install</a><a href="sitemap.html">Sitemap</a>`)
	write(t, out, "guide/install.html", `<link rel="stylesheet" href="../css/styles_card.css">
<a href="../index.html">Home</a><img src="../images/missing.png" alt="gone"><a href="#top">top</a>`)
	write(t, out, "css/styles_card.css", "")

	report, err := Verify(context.Background(), out, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Pages)
	assert.Equal(t, 5, report.Checked)
	assert.False(t, report.OK())
	want := []BrokenLink{
		{Page: "guide/install.html", URL: "../images/missing.png", Tag: "img", Text: "gone", Reason: "file not found"},
		{Page: "index.html", URL: "sitemap.html", Tag: "a", Text: "Sitemap", Reason: "file not found"},
	}
	if diff := cmp.Diff(want, report.Broken); diff != "" {
		t.Errorf("broken links mismatch (-want +got):\n%s", diff)
	}
}

func TestVerify_CleanSite(t *testing.T) {
	out := t.TempDir()
	write(t, out, "index.html", `<a href="index.html">self</a>`)

	report, err := Verify(context.Background(), out, 0)
	require.NoError(t, err)
	assert.True(t, report.OK())
}
