package adapter

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hirewatch-dev/hirewatch/internal/model"
)

// listingSelectors are tried in order; the first one that matches anything
// wins. Covers the card markup seen on the hiring pages we watch.
var listingSelectors = []string{
	".job-tile",
	".job-item",
	".job-result",
	`[data-test="job-card"]`,
	".job-card",
	".opening-job",
	".job-posting",
}

var titleSelectors = []string{"h3", "h2", ".job-title", ".title", `[data-test="job-title"]`}
var locationSelectors = []string{".location", ".job-location", `[data-test="job-location"]`}
var dateSelectors = []string{".date", ".posted-date", ".job-date", `[data-test="job-date"]`}

// extractPostings pulls job listings out of a rendered page using the
// selector heuristics above. base resolves relative links. Elements without
// a recognizable title are skipped; everything else is left to the quality
// filter downstream.
func extractPostings(doc *goquery.Document, base *url.URL) []model.RawPosting {
	nodes := findListingNodes(doc)

	var out []model.RawPosting
	nodes.Each(func(_ int, sel *goquery.Selection) {
		raw, ok := extractOne(sel, base)
		if ok {
			out = append(out, raw)
		}
	})
	return out
}

func findListingNodes(doc *goquery.Document) *goquery.Selection {
	for _, selector := range listingSelectors {
		if nodes := doc.Find(selector); nodes.Length() > 0 {
			return nodes
		}
	}

	// Fallback: any div/article whose class mentions "job".
	return doc.Find("div, article").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		return strings.Contains(strings.ToLower(class), "job")
	})
}

func extractOne(sel *goquery.Selection, base *url.URL) (model.RawPosting, bool) {
	title := firstText(sel, titleSelectors)
	if title == "" {
		return model.RawPosting{}, false
	}

	link := ""
	if href, ok := sel.Find("a").First().Attr("href"); ok {
		if u, err := base.Parse(href); err == nil {
			link = u.String()
		}
	}

	desc := strings.TrimSpace(sel.Find(".description, .job-description, .excerpt").First().Text())

	return model.RawPosting{
		Title:       title,
		Location:    firstText(sel, locationSelectors),
		URL:         link,
		Description: desc,
		PostedDate:  firstText(sel, dateSelectors),
	}, true
}

func firstText(sel *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		if node := sel.Find(s).First(); node.Length() > 0 {
			if text := strings.TrimSpace(node.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}
