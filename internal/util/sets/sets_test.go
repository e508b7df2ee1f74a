package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := New("b", "a")
	s.Add("c")
	s.Delete("b")

	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("b"))
	assert.Equal(t, []string{"a", "c"}, Sorted(s))
}

func TestOrdered_KeepsFirstInsertion(t *testing.T) {
	var o Ordered[string]
	assert.True(t, o.Add("styles_table.css", "styles_card.css"))
	assert.False(t, o.Add("styles_table.css"))
	o.Add("styles_iframe.css")

	assert.Equal(t, []string{"styles_table.css", "styles_card.css", "styles_iframe.css"}, o.Items())
	assert.Equal(t, 3, o.Len())
	assert.True(t, o.Has("styles_card.css"))
}

func TestOrdered_Merge(t *testing.T) {
	a := NewOrdered("x", "y")
	b := NewOrdered("z", "x", "w")
	a.Merge(b)
	a.Merge(nil)

	assert.Equal(t, []string{"x", "y", "z", "w"}, a.Items())
}
