package enhance

import "regexp"

var (
	sectionHeadingRe = regexp.MustCompile(`(?is)<h2[^>]*>.*?</h2>`)
	anyHeadingRe     = regexp.MustCompile(`(?is)<h[1-6][^>]*>.*?</h[1-6]>`)
	paragraphRe      = regexp.MustCompile(`(?is)<p[^>]*>.*?</p>`)
	faqHeadingRe     = regexp.MustCompile(`(?is)<h[2-3][^>]*>[^<]*(frequently asked|faq)[^<]*</h[2-3]>`)
)

// sectionHeadingEnds returns the end offset of every top-level section
// heading (<h2>) in document order.
func sectionHeadingEnds(html string) []int {
	matches := sectionHeadingRe.FindAllStringIndex(html, -1)
	ends := make([]int, len(matches))
	for i, m := range matches {
		ends[i] = m[1]
	}
	return ends
}

// insertAt splices block into html at the given offset.
func insertAt(html, block string, offset int) string {
	return html[:offset] + block + html[offset:]
}
