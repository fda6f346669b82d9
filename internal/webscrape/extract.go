package webscrape

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tastelondon/enrich-cli/internal/model"
)

var (
	ukPhoneRe = regexp.MustCompile(`(\+44\s?\d{2,4}\s?\d{3,4}\s?\d{3,4})|(0\d{2,4}\s?\d{3,4}\s?\d{3,4})`)
	emailRe   = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	instagramLinkRe = regexp.MustCompile(`instagram\.com/([A-Za-z0-9._]+)`)
	instagramTextRe = regexp.MustCompile(`(?i)instagram[:\s]*@([A-Za-z0-9._]+)`)
	facebookLinkRe  = regexp.MustCompile(`(?:facebook|fb)\.com/([A-Za-z0-9.]+)`)

	poundBandRe = regexp.MustCompile(`£{1,4}(\s*[-/]\s*£{1,4})?`)
)

// nonHandlePaths are instagram/facebook URL segments that are not profiles.
var nonHandlePaths = map[string]bool{
	"p": true, "reel": true, "tv": true, "stories": true,
	"sharer": true, "share": true, "pages": true, "profile.php": true,
}

var cuisineKeywords = []string{
	"italian", "japanese", "chinese", "indian", "french", "thai",
	"mexican", "spanish", "greek", "turkish", "vietnamese", "korean",
	"american", "british", "mediterranean", "asian", "european",
	"middle eastern", "caribbean", "african", "fusion", "contemporary",
	"steakhouse", "seafood", "pizza", "sushi", "burger", "bbq", "vegan",
}

var menuKeywords = []string{"menu", "menus", "food-menu", "carte", "dining"}

var iconPatterns = []string{"icon", "logo", "favicon", "sprite", "thumbnail", "avatar", "badge"}

// Extract runs every attribute extractor over the page and returns what was
// found. html is the raw page text for the regexp-based strategies, baseURL
// resolves relative links.
func Extract(doc *goquery.Document, html, baseURL string) map[string]string {
	ld := parseJSONLD(doc)

	attrs := make(map[string]string)
	put := func(key, val string) {
		if val != "" {
			attrs[key] = val
		}
	}

	put(model.AttrPhone, extractPhone(doc, html, ld))
	put(model.AttrEmail, extractEmail(doc, html))
	put(model.AttrInstagram, extractInstagram(doc, html))
	put(model.AttrFacebook, extractFacebook(doc, html))
	put(model.AttrOpeningHours, extractHours(doc, ld))
	put(model.AttrCuisineType, extractCuisine(doc, html, ld))
	put(model.AttrPriceRange, extractPriceRange(html, ld))
	put(model.AttrMenuURL, extractMenuURL(doc, baseURL))
	put(model.AttrCoverImage, extractCoverImage(doc, baseURL))
	return attrs
}

// pageLD is the subset of schema.org Restaurant markup websites embed.
// openingHours and servesCuisine appear both as strings and as lists in
// the wild, stringOrList accepts either.
type pageLD struct {
	Telephone     string       `json:"telephone"`
	OpeningHours  stringOrList `json:"openingHours"`
	ServesCuisine stringOrList `json:"servesCuisine"`
	PriceRange    string       `json:"priceRange"`
}

type stringOrList string

func (s *stringOrList) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*s = stringOrList(single)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*s = stringOrList(strings.Join(list, "; "))
		return nil
	}
	// Unrecognized shape, drop it rather than failing the whole block.
	*s = ""
	return nil
}

func parseJSONLD(doc *goquery.Document) *pageLD {
	var result *pageLD
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var ld pageLD
		if err := json.Unmarshal([]byte(s.Text()), &ld); err != nil {
			return true
		}
		if ld.Telephone == "" && ld.OpeningHours == "" && ld.ServesCuisine == "" && ld.PriceRange == "" {
			return true
		}
		result = &ld
		return false
	})
	return result
}

func extractPhone(doc *goquery.Document, html string, ld *pageLD) string {
	if href, ok := doc.Find("a[href^='tel:']").First().Attr("href"); ok {
		return strings.TrimSpace(strings.TrimPrefix(href, "tel:"))
	}
	if ld != nil && ld.Telephone != "" {
		return strings.TrimSpace(ld.Telephone)
	}
	return strings.TrimSpace(ukPhoneRe.FindString(html))
}

func extractEmail(doc *goquery.Document, html string) string {
	if href, ok := doc.Find("a[href^='mailto:']").First().Attr("href"); ok {
		email := strings.TrimPrefix(href, "mailto:")
		email, _, _ = strings.Cut(email, "?")
		return strings.TrimSpace(email)
	}
	email := emailRe.FindString(html)
	lower := strings.ToLower(email)
	// Retina image names like photo@2x.png match the pattern too.
	for _, fake := range []string{"example.com", "domain.com", "email.com", ".png", ".jpg", ".webp", ".svg"} {
		if strings.Contains(lower, fake) {
			return ""
		}
	}
	return email
}

func extractInstagram(doc *goquery.Document, html string) string {
	var handle string
	doc.Find("a[href*='instagram.com']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if m := instagramLinkRe.FindStringSubmatch(href); m != nil {
			h := strings.TrimRight(m[1], "/")
			if h != "" && !nonHandlePaths[h] {
				handle = h
				return false
			}
		}
		return true
	})
	if handle != "" {
		return handle
	}
	if m := instagramTextRe.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

func extractFacebook(doc *goquery.Document, html string) string {
	var page string
	doc.Find("a[href*='facebook.com'], a[href*='fb.com']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if m := facebookLinkRe.FindStringSubmatch(href); m != nil {
			p := strings.TrimRight(m[1], "/")
			if p != "" && !nonHandlePaths[p] {
				page = p
				return false
			}
		}
		return true
	})
	if page == "" {
		if m := facebookLinkRe.FindStringSubmatch(html); m != nil {
			p := strings.TrimRight(m[1], "/")
			if p != "" && !nonHandlePaths[p] {
				page = p
			}
		}
	}
	if page == "" {
		return ""
	}
	return "https://www.facebook.com/" + page
}

func extractHours(doc *goquery.Document, ld *pageLD) string {
	if ld != nil && ld.OpeningHours != "" {
		return string(ld.OpeningHours)
	}
	var found string
	doc.Find("[class*='hours'], [class*='opening'], [class*='timings']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapseSpace(s.Text())
		if text != "" && len(text) < 500 {
			found = text
			return false
		}
		return true
	})
	return found
}

func extractCuisine(doc *goquery.Document, html string, ld *pageLD) string {
	if ld != nil && ld.ServesCuisine != "" {
		return string(ld.ServesCuisine)
	}

	if desc, ok := doc.Find("meta[name='description']").First().Attr("content"); ok {
		lower := strings.ToLower(desc)
		for _, cuisine := range cuisineKeywords {
			if strings.Contains(lower, cuisine) {
				return titleCase(cuisine)
			}
		}
	}

	lower := strings.ToLower(html)
	for _, cuisine := range cuisineKeywords {
		for _, pattern := range []string{
			cuisine + " cuisine", cuisine + " restaurant", cuisine + " food",
			"serving " + cuisine, "authentic " + cuisine,
		} {
			if strings.Contains(lower, pattern) {
				return titleCase(cuisine)
			}
		}
	}
	return ""
}

// extractPriceRange returns a £-band, capped at four glyphs. A range like
// "££ - £££" collapses to its upper band.
func extractPriceRange(html string, ld *pageLD) string {
	band := poundBandRe.FindString(html)
	if band == "" && ld != nil {
		band = ld.PriceRange
	}
	n := 0
	run := 0
	for _, r := range band {
		if r == '£' {
			run++
			if run > n {
				n = run
			}
		} else {
			run = 0
		}
	}
	if n == 0 {
		return ""
	}
	if n > 4 {
		n = 4
	}
	return strings.Repeat("£", n)
}

func extractMenuURL(doc *goquery.Document, baseURL string) string {
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		hrefLower := strings.ToLower(href)
		text := strings.ToLower(collapseSpace(a.Text()))
		for _, kw := range menuKeywords {
			if strings.Contains(hrefLower, kw) || text == kw {
				found = resolveURL(baseURL, href)
				return false
			}
		}
		return true
	})
	return found
}

// extractCoverImage prefers social-card metadata, then hero/banner images.
func extractCoverImage(doc *goquery.Document, baseURL string) string {
	if content, ok := doc.Find("meta[property='og:image']").First().Attr("content"); ok {
		if u := resolveURL(baseURL, content); u != "" && !looksLikeIcon(u) {
			return u
		}
	}
	if content, ok := doc.Find("meta[name='twitter:image']").First().Attr("content"); ok {
		if u := resolveURL(baseURL, content); u != "" && !looksLikeIcon(u) {
			return u
		}
	}

	var found string
	doc.Find("header img, [class*='hero'] img, [class*='banner'] img, [class*='cover'] img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, ok := img.Attr("src")
		if !ok {
			src, _ = img.Attr("data-src")
		}
		if src == "" {
			return true
		}
		u := resolveURL(baseURL, src)
		if u != "" && !looksLikeIcon(u) {
			found = u
			return false
		}
		return true
	})
	return found
}

func looksLikeIcon(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, p := range iconPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func resolveURL(baseURL, href string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
