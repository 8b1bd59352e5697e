package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHTML(t *testing.T) {
	clean := SanitizeHTML(`<p onclick="alert(1)">Hi</p><script>alert(2)</script>`)

	assert.Contains(t, clean, "<p>Hi</p>")
	assert.NotContains(t, clean, "script")
	assert.NotContains(t, clean, "onclick")
}

func TestSanitizeHTMLKeepsSafeMarkup(t *testing.T) {
	input := `<a href="https://example.com">link</a><table><tr><td>cell</td></tr></table>`
	clean := SanitizeHTML(input)

	assert.Contains(t, clean, `href="https://example.com"`)
	assert.Contains(t, clean, "<td>cell</td>")
}

func TestSanitizeHTMLDropsUnsafeSchemes(t *testing.T) {
	clean := SanitizeHTML(`<a href="javascript:alert(1)">x</a>`)

	assert.NotContains(t, clean, "javascript")
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain text", StripHTML("<b>plain</b> <i>text</i>"))
}
