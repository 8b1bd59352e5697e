package utils

import (
	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy removes all markup.
	StrictPolicy *bluemonday.Policy
	// UGCPolicy keeps the markup an email body may safely carry.
	UGCPolicy *bluemonday.Policy
)

func init() {
	StrictPolicy = bluemonday.StrictPolicy()

	UGCPolicy = bluemonday.UGCPolicy()

	// Additional elements commonly found in email HTML
	UGCPolicy.AllowElements("p", "br", "div", "span", "h1", "h2", "h3", "h4", "h5", "h6")
	UGCPolicy.AllowElements("strong", "em", "u", "s", "code", "pre")
	UGCPolicy.AllowElements("ul", "ol", "li")
	UGCPolicy.AllowElements("blockquote")
	UGCPolicy.AllowElements("a", "img")
	UGCPolicy.AllowElements("table", "thead", "tbody", "tr", "th", "td")

	UGCPolicy.AllowAttrs("href").OnElements("a")
	UGCPolicy.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")
	UGCPolicy.AllowAttrs("class", "id").Globally()
	UGCPolicy.AllowAttrs("style").OnElements("span", "div", "p")

	UGCPolicy.RequireParseableURLs(true)
	UGCPolicy.AllowURLSchemes("http", "https", "mailto")
}

// SanitizeHTML sanitizes an HTML email body before it is cached or served.
func SanitizeHTML(html string) string {
	return UGCPolicy.Sanitize(html)
}

// StripHTML removes all HTML tags from content.
func StripHTML(html string) string {
	return StrictPolicy.Sanitize(html)
}
