package generation

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// titleForKeyword builds a readable article title from a keyword phrase.
func titleForKeyword(keyword string) string {
	return fmt.Sprintf("%s: A Practical Guide for Couples", titleCaser.String(strings.TrimSpace(keyword)))
}

// fallbackArticle produces template content when the AI backend is
// unavailable. It carries a full section structure so the enhancer chain
// has headings to anchor on, and a research-claim phrase for the citation.
func fallbackArticle(keyword string) string {
	title := titleForKeyword(keyword)
	topic := strings.ToLower(strings.TrimSpace(keyword))

	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n", title)
	fmt.Fprintf(&b, "<p>Few topics come up as often in couples counseling as %s. Research shows that how partners handle it predicts relationship satisfaction better than how often it comes up at all.</p>\n", topic)

	fmt.Fprintf(&b, "<h2>Why %s matters</h2>\n", topic)
	fmt.Fprintf(&b, "<p>Every couple runs into %s sooner or later. What separates thriving relationships from struggling ones is not avoiding the topic but building a shared way of working through it.</p>\n", topic)

	b.WriteString("<h2>Common patterns to watch for</h2>\n")
	fmt.Fprintf(&b, "<p>Partners often fall into repeating loops around %s: one person raises it, the other withdraws, and the loop tightens. Naming the pattern out loud is the first step toward breaking it.</p>\n", topic)

	b.WriteString("<h2>Practical steps you can take this week</h2>\n")
	b.WriteString("<p>Pick a calm moment, agree on a time limit, and take turns describing what you each observed without assigning motive. Small, repeatable conversations beat one big confrontation.</p>\n")

	b.WriteString("<h2>FAQ</h2>\n")
	fmt.Fprintf(&b, "<p><strong>How long does it take to see change?</strong> Most couples who practice a weekly check-in about %s report a noticeable shift within a month.</p>\n", topic)

	return b.String()
}
