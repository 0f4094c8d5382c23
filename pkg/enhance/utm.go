package enhance

import (
	"net/url"
	"strings"
)

// AddUTMParams appends utm_source, utm_medium, and utm_campaign query
// parameters to a URL. The append is unconditional and deterministic; the
// caller is responsible for not double-appending.
func AddUTMParams(rawURL, source, medium, campaign string) string {
	separator := "?"
	if strings.Contains(rawURL, "?") {
		separator = "&"
	}
	return rawURL + separator +
		"utm_source=" + url.QueryEscape(source) +
		"&utm_medium=" + url.QueryEscape(medium) +
		"&utm_campaign=" + url.QueryEscape(campaign)
}
