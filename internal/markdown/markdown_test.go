package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_HardWraps(t *testing.T) {
	c := MustNew()
	out, err := c.Convert("first line\nsecond line")
	require.NoError(t, err)
	assert.Equal(t, "<p>first line<br />\nsecond line</p>\n", out)
}

func TestConvert_RawHTMLPassesThrough(t *testing.T) {
	c := MustNew()
	out, err := c.Convert("<div class=\"x\">kept</div>\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="x">kept</div>`)
}

func TestConvertInline(t *testing.T) {
	c := MustNew()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain cell untouched", "hello", "hello"},
		{"bold converted", "**bold**", "<p><strong>bold</strong></p>"},
		{"embedded newline converted", "a\nb", "<p>a<br />b</p>"},
		{"code converted", "`x`", "<p><code>x</code></p>"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ConvertInline(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_Extensions(t *testing.T) {
	c, err := New("Table", "table", " strikethrough ")
	require.NoError(t, err)
	out, err := c.Convert("~~gone~~")
	require.NoError(t, err)
	assert.Contains(t, out, "<del>gone</del>")

	_, err = New("mermaid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown markdown extension")
	assert.Panics(t, func() { MustNew("mermaid") })
}

func TestHasMarkup(t *testing.T) {
	assert.False(t, HasMarkup("plain text, 42"))
	assert.True(t, HasMarkup("# heading"))
	assert.True(t, HasMarkup("line\nbreak"))
}
