package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wstorey/web615-lab9/internal/render"
)

func TestExcerptStripsMarkup(t *testing.T) {
	content := "<p>First paragraph.</p> <br /> <p>Second   paragraph.</p>"
	assert.Equal(t, "First paragraph. Second paragraph.", render.Excerpt(content, 200))
}

func TestExcerptDropsScriptAndStyle(t *testing.T) {
	content := "<style>p{color:red}</style><script>alert(1)</script><p>Body text</p>"
	assert.Equal(t, "Body text", render.Excerpt(content, 200))
}

func TestExcerptTruncates(t *testing.T) {
	got := render.Excerpt("<p>one two three four</p>", 7)
	assert.Equal(t, "one two...", got)
}

func TestExcerptPlainText(t *testing.T) {
	assert.Equal(t, "no markup here", render.Excerpt("no  markup\nhere", 200))
}

func TestExcerptZeroLength(t *testing.T) {
	assert.Equal(t, "", render.Excerpt("<p>anything</p>", 0))
}
