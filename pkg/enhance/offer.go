package enhance

import (
	"fmt"
	"strings"
)

// offerMarker makes InsertLeadMagnetOffer idempotent: its presence in the
// input short-circuits the insertion.
const offerMarker = `class="lead-magnet-offer"`

// leadMagnet is one of the fixed downloadable offers.
type leadMagnet struct {
	keywords []string
	title    string
	pitch    string
	asset    string
}

// leadMagnets are matched by keyword substring, first match wins; offer 0
// is the default when nothing matches.
var leadMagnets = []leadMagnet{
	{
		keywords: nil, // default
		title:    "The Communication Repair Kit",
		pitch:    "12 scripts for turning your next argument into a real conversation.",
		asset:    "communication-repair-kit",
	},
	{
		keywords: []string{"conflict", "argument", "fight"},
		title:    "The Fair Fight Checklist",
		pitch:    "A one-page checklist couples use to keep disagreements productive.",
		asset:    "fair-fight-checklist",
	},
	{
		keywords: []string{"trust", "betrayal", "jealous"},
		title:    "The Trust Rebuilding Roadmap",
		pitch:    "A step-by-step 30-day plan for repairing broken trust.",
		asset:    "trust-rebuilding-roadmap",
	},
}

// InsertLeadMagnetOffer splices a downloadable-offer block into the
// article. The offer is selected by keyword substring match (first match
// wins, defaulting to the first offer). The block is inserted immediately
// before the FAQ heading when one exists, otherwise appended at the end of
// the content. Idempotent on the offer marker.
func InsertLeadMagnetOffer(html, keyword, slug string) string {
	if strings.Contains(html, offerMarker) {
		return html
	}

	offer := leadMagnets[0]
	lowerKeyword := strings.ToLower(keyword)
	for _, candidate := range leadMagnets[1:] {
		matched := false
		for _, kw := range candidate.keywords {
			if strings.Contains(lowerKeyword, kw) {
				matched = true
				break
			}
		}
		if matched {
			offer = candidate
			break
		}
	}

	downloadURL := AddUTMParams("/download/"+offer.asset, "blog", "lead-magnet", slug)
	block := fmt.Sprintf(`
<div %s>
<h3>Free download: %s</h3>
<p>%s</p>
<p><a href="%s">Get the free guide</a></p>
</div>
`, offerMarker, offer.title, offer.pitch, downloadURL)

	if loc := faqHeadingRe.FindStringIndex(html); loc != nil {
		return insertAt(html, block, loc[0])
	}
	return html + block
}
