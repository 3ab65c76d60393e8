package payload

import (
	"net/url"
	"strings"
)

// url.QueryEscape also escapes these, which URI component encoding keeps as is.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent percent-encodes s for use as a URI query parameter value.
// Spaces become %20; letters, digits and -_.!~*'() are left alone.
func EncodeURIComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
