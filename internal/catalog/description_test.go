package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptionRenderer(t *testing.T) {
	r := NewDescriptionRenderer()

	t.Run("renders markdown", func(t *testing.T) {
		html := string(r.Render("A **bold** start"))
		assert.Contains(t, html, "<strong>bold</strong>")
	})

	t.Run("strips scripts", func(t *testing.T) {
		html := string(r.Render("hello <script>alert(1)</script>\n\n[x](javascript:alert(1))"))
		assert.NotContains(t, html, "<script>")
		assert.NotContains(t, html, "javascript:")
	})

	t.Run("empty stays empty", func(t *testing.T) {
		assert.Empty(t, r.Render(""))
	})
}
