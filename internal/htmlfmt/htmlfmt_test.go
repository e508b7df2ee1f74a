package htmlfmt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettifyIndentsElements(t *testing.T) {
	src := `<!DOCTYPE html><html><head><title>T</title></head><body><div class="a"><p>hi  </p><br></div></body></html>`

	got, err := Prettify(src)
	require.NoError(t, err)

	want := strings.Join([]string{
		"<!DOCTYPE html>",
		"<html>",
		" <head>",
		"  <title>",
		"   T",
		"  </title>",
		" </head>",
		" <body>",
		`  <div class="a">`,
		"   <p>",
		"    hi",
		"   </p>",
		"   <br>",
		"  </div>",
		" </body>",
		"</html>",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestPrettifyKeepsPreformatted(t *testing.T) {
	src := "<html><body><pre>a\n  b</pre></body></html>"

	got, err := Prettify(src)
	require.NoError(t, err)
	assert.Contains(t, got, "  <pre>a\n  b</pre>\n")
}

func TestPrettifyEscapes(t *testing.T) {
	src := `<html><body><a href="x?a=1&amp;b=2" title="say &quot;hi&quot;">1 &lt; 2 &amp; 3</a><!-- note --></body></html>`

	got, err := Prettify(src)
	require.NoError(t, err)
	assert.Contains(t, got, `<a href="x?a=1&amp;b=2" title="say &quot;hi&quot;">`)
	assert.Contains(t, got, "1 &lt; 2 &amp; 3")
	assert.Contains(t, got, "<!-- note -->")
}

func TestPrettifyIsStable(t *testing.T) {
	src := "<html><body><main><h1>Title</h1><p>one <em>two</em></p></main></body></html>"

	once, err := Prettify(src)
	require.NoError(t, err)
	twice, err := Prettify(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestComment(t *testing.T) {
	assert.Equal(t, "<!-- built by x -->\n", Comment("built by x"))
	assert.Equal(t, "<!-- a - - b -->\n", Comment("a -- b"))
}
