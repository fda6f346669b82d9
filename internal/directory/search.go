package directory

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tastelondon/enrich-cli/internal/model"
)

// venuePathMarker identifies links to individual venue pages in search
// results. Everything else on the results page (geo pages, ads, filters)
// is noise.
const venuePathMarker = "/Restaurant_Review"

// Search queries the directory for the restaurant and returns candidate
// listings in result order, deduplicated by venue URL.
func (c *Client) Search(ctx context.Context, name, city string) ([]model.Listing, error) {
	if strings.TrimSpace(name) == "" {
		return nil, eris.New("directory: search name is empty")
	}

	q := name
	if city != "" {
		q += " " + city
	}
	searchURL := c.opts.BaseURL + "/Search?q=" + url.QueryEscape(q)

	doc, err := c.fetchDoc(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	listings := parseSearchResults(doc, c.opts.BaseURL)
	zap.L().Debug("directory search complete",
		zap.String("name", name),
		zap.String("city", city),
		zap.Int("candidates", len(listings)),
	)
	return listings, nil
}

// parseSearchResults extracts venue listings from a search results page,
// keeping only links into venue pages.
func parseSearchResults(doc *goquery.Document, baseURL string) []model.Listing {
	var listings []model.Listing
	seen := make(map[string]bool)

	doc.Find("a[href*='" + venuePathMarker + "']").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || !strings.Contains(href, venuePathMarker) {
			return
		}
		venueURL := resolveURL(baseURL, href)
		if venueURL == "" || seen[venueURL] {
			return
		}
		seen[venueURL] = true

		listings = append(listings, model.Listing{
			Name:         collapseSpace(a.Text()),
			URL:          venueURL,
			LocationText: nearbyLocationText(a),
		})
	})

	return listings
}

// nearbyLocationText pulls the address snippet that search results render
// alongside each venue link.
func nearbyLocationText(a *goquery.Selection) string {
	parent := a.Closest("div")
	if parent.Length() == 0 {
		return ""
	}
	loc := parent.Find("[class*='location'], [class*='address'], address").First()
	return collapseSpace(loc.Text())
}

func resolveURL(baseURL, href string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
