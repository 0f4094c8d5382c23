package enhance

import (
	"fmt"
	"strings"
)

// InsertQuizCallout splices a quiz call-to-action block after the second
// top-level section heading (or the last one when the article has fewer
// than three). The insertion is idempotent: content already linking to
// /quiz or mentioning the relationship assessment is returned unchanged.
// Content with no section headings is also returned unchanged; there is
// no reliable insertion point, which is a known limitation rather than an
// error.
func InsertQuizCallout(html, keyword, slug string) string {
	lower := strings.ToLower(html)
	if strings.Contains(lower, "/quiz") || strings.Contains(lower, "relationship assessment") {
		return html
	}

	ends := sectionHeadingEnds(html)
	if len(ends) == 0 {
		return html
	}

	// Second heading when at least three sections exist, otherwise the last.
	idx := len(ends) - 1
	if len(ends) >= 3 {
		idx = 1
	}

	quizURL := AddUTMParams("/quiz", "blog", "inline-callout", slug)
	block := fmt.Sprintf(`
<div class="quiz-callout">
<h3>How healthy is your relationship?</h3>
<p>Reading about %s is a great start. Take our free 5-minute relationship assessment and get a personalized profile of your relationship strengths and blind spots.</p>
<p><a class="quiz-callout-cta" href="%s">Take the free quiz</a></p>
</div>
`, keyword, quizURL)

	return insertAt(html, block, ends[idx])
}
