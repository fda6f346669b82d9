package directory

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/tastelondon/enrich-cli/internal/model"
)

var (
	priceRangeRe = regexp.MustCompile(`£{1,4}(\s*-\s*£{1,4})?`)
	dayNames     = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
)

// FetchDetails scrapes a venue page. Extraction is best-effort per
// attribute, a selector that finds nothing just leaves that attribute out.
func (c *Client) FetchDetails(ctx context.Context, pageURL string) (model.Listing, error) {
	doc, err := c.fetchDoc(ctx, pageURL)
	if err != nil {
		return model.Listing{}, err
	}

	listing := parseVenuePage(doc)
	listing.URL = pageURL
	zap.L().Debug("directory venue page scraped",
		zap.String("url", pageURL),
		zap.Int("attributes", len(listing.Attributes)),
	)
	return listing, nil
}

func parseVenuePage(doc *goquery.Document) model.Listing {
	listing := model.Listing{
		Name:       collapseSpace(doc.Find("h1").First().Text()),
		Attributes: map[string]string{},
	}

	if phone := extractPhone(doc); phone != "" {
		listing.Attributes[model.AttrPhone] = phone
	}
	if cuisine := collapseSpace(doc.Find("a[href*='cuisine']").First().Text()); cuisine != "" {
		listing.Attributes[model.AttrCuisineType] = cuisine
	}
	if price := extractPriceRange(doc); price != "" {
		listing.Attributes[model.AttrPriceRange] = price
	}
	if hours := extractHours(doc); hours != "" {
		listing.Attributes[model.AttrOpeningHours] = hours
	}

	if ld := extractJSONLD(doc); ld != nil {
		if listing.LocationText == "" {
			listing.LocationText = ld.addressText()
		}
		listing.Coords = ld.coordinates()
	}

	return listing
}

func extractPhone(doc *goquery.Document) string {
	href, ok := doc.Find("a[href^='tel:']").First().Attr("href")
	if !ok {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(href, "tel:"))
}

// extractPriceRange looks for a £-glyph price band in the elements the
// directory uses for pricing.
func extractPriceRange(doc *goquery.Document) string {
	var found string
	doc.Find("[class*='price'], [data-testid*='price'], [class*='Price']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := priceRangeRe.FindString(s.Text()); m != "" {
			found = strings.Join(strings.Fields(m), "")
			return false
		}
		return true
	})
	return found
}

// extractHours tries the hour-section selectors in order and keeps the
// first text that actually mentions a day of the week.
func extractHours(doc *goquery.Document) string {
	for _, sel := range []string{"[data-testid*='hours']", "[class*='hours']", "[class*='Hours']"} {
		text := collapseSpace(doc.Find(sel).First().Text())
		if text == "" {
			continue
		}
		for _, day := range dayNames {
			if strings.Contains(text, day) {
				return text
			}
		}
	}
	return ""
}

// jsonLD is the subset of schema.org Restaurant markup venue pages embed.
type jsonLD struct {
	Address struct {
		StreetAddress   string `json:"streetAddress"`
		AddressLocality string `json:"addressLocality"`
		PostalCode      string `json:"postalCode"`
	} `json:"address"`
	Geo struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"geo"`
}

func (ld *jsonLD) addressText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{ld.Address.StreetAddress, ld.Address.AddressLocality, ld.Address.PostalCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func (ld *jsonLD) coordinates() *model.Coordinates {
	if ld.Geo.Latitude == 0 && ld.Geo.Longitude == 0 {
		return nil
	}
	return &model.Coordinates{Lat: ld.Geo.Latitude, Lon: ld.Geo.Longitude}
}

func extractJSONLD(doc *goquery.Document) *jsonLD {
	var result *jsonLD
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var ld jsonLD
		if err := json.Unmarshal([]byte(s.Text()), &ld); err != nil {
			return true
		}
		if ld.addressText() == "" && ld.coordinates() == nil {
			return true
		}
		result = &ld
		return false
	})
	return result
}
