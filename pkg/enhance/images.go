package enhance

import (
	"fmt"
	"strings"
)

// Image is a stock photo asset ready for embedding.
type Image struct {
	URL          string `json:"url"`
	Alt          string `json:"alt"`
	Photographer string `json:"photographer,omitempty"`
	SourceURL    string `json:"source_url,omitempty"`
}

// EmbedImages splices image figures into article HTML and returns the
// updated content plus the images actually used (for structured data).
//
// Placement: the first image goes after the first heading, falling back to
// after the first paragraph, falling back to the top of the content. Each
// remaining image goes after a successive section heading, one per
// heading, stopping when either images or headings run out. An image whose
// URL already appears in the content is skipped, never duplicated.
func EmbedImages(html string, images []Image) (string, []Image) {
	if len(images) == 0 {
		return html, nil
	}

	var used []Image
	remaining := make([]Image, 0, len(images))
	for _, img := range images {
		if img.URL == "" || strings.Contains(html, img.URL) {
			continue
		}
		remaining = append(remaining, img)
	}
	if len(remaining) == 0 {
		return html, nil
	}

	// Lead image: first heading, else first paragraph, else prepend.
	lead := remaining[0]
	block := imageFigure(lead)
	switch {
	case anyHeadingRe.MatchString(html):
		loc := anyHeadingRe.FindStringIndex(html)
		html = insertAt(html, block, loc[1])
	case paragraphRe.MatchString(html):
		loc := paragraphRe.FindStringIndex(html)
		html = insertAt(html, block, loc[1])
	default:
		html = block + html
	}
	used = append(used, lead)
	remaining = remaining[1:]

	// Body images: one per section heading. Offsets are recomputed after
	// each insertion since the splice shifts everything after it.
	headingIdx := 0
	for _, img := range remaining {
		ends := sectionHeadingEnds(html)
		if headingIdx >= len(ends) {
			break
		}
		html = insertAt(html, imageFigure(img), ends[headingIdx])
		used = append(used, img)
		headingIdx++
	}

	return html, used
}

func imageFigure(img Image) string {
	credit := ""
	if img.Photographer != "" {
		credit = fmt.Sprintf(`<figcaption>Photo by %s</figcaption>`, img.Photographer)
	}
	return fmt.Sprintf(`
<figure class="article-image"><img src="%s" alt="%s" loading="lazy">%s</figure>
`, img.URL, img.Alt, credit)
}
