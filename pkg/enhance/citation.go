package enhance

import (
	"regexp"
	"strings"
)

// citationDomain doubles as the idempotence marker: content already citing
// a DOI link is returned unchanged.
const citationDomain = "doi.org"

const citationLink = `<a href="https://doi.org/10.1111/jomf.12077" rel="noopener" target="_blank">(Gottman Institute longitudinal research)</a>`

// citationHookRe matches the first phrase worth anchoring a citation to.
var citationHookRe = regexp.MustCompile(`(?i)research shows|studies show|psychological|psychology`)

// InsertAuthoritativeCitation appends an inline citation link to the first
// occurrence of a research-claim phrase ("research shows", "studies show",
// "psychology", "psychological"). No-op when no phrase is found, and
// idempotent on the DOI domain.
func InsertAuthoritativeCitation(html string) string {
	if strings.Contains(html, citationDomain) {
		return html
	}

	loc := citationHookRe.FindStringIndex(html)
	if loc == nil {
		return html
	}

	return html[:loc[1]] + " " + citationLink + html[loc[1]:]
}
