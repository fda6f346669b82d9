package webscrape

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastelondon/enrich-cli/internal/model"
)

func extractFrom(t *testing.T, html string) map[string]string {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return Extract(doc, html, "https://goldendragon.example")
}

func TestExtractFullPage(t *testing.T) {
	html := `
<html><head>
<meta property="og:image" content="/img/dining-room.jpg">
<meta name="description" content="Authentic Chinese restaurant in the heart of Soho">
</head><body>
<a href="tel:+44 20 7734 1073">Call us</a>
<a href="mailto:bookings@goldendragon.example?subject=Booking">Email</a>
<a href="https://www.instagram.com/goldendragonsoho/">Instagram</a>
<a href="https://www.facebook.com/goldendragonsoho">Facebook</a>
<a href="/menus/dinner">Our Menu</a>
<div class="opening-hours">Mon-Sun 12:00-23:00</div>
<p>Set menus from ££ - £££ per person.</p>
</body></html>`

	attrs := extractFrom(t, html)

	assert.Equal(t, "+44 20 7734 1073", attrs[model.AttrPhone])
	assert.Equal(t, "bookings@goldendragon.example", attrs[model.AttrEmail])
	assert.Equal(t, "goldendragonsoho", attrs[model.AttrInstagram])
	assert.Equal(t, "https://www.facebook.com/goldendragonsoho", attrs[model.AttrFacebook])
	assert.Equal(t, "Mon-Sun 12:00-23:00", attrs[model.AttrOpeningHours])
	assert.Equal(t, "Chinese", attrs[model.AttrCuisineType])
	assert.Equal(t, "£££", attrs[model.AttrPriceRange])
	assert.Equal(t, "https://goldendragon.example/menus/dinner", attrs[model.AttrMenuURL])
	assert.Equal(t, "https://goldendragon.example/img/dining-room.jpg", attrs[model.AttrCoverImage])
}

func TestExtractFromJSONLD(t *testing.T) {
	html := `
<html><body>
<script type="application/ld+json">
{"@type":"Restaurant","telephone":"020 7734 1073","openingHours":["Mo-Fr 12:00-22:00","Sa-Su 12:00-23:00"],"servesCuisine":"Cantonese","priceRange":"££"}
</script>
</body></html>`

	attrs := extractFrom(t, html)

	assert.Equal(t, "020 7734 1073", attrs[model.AttrPhone])
	assert.Equal(t, "Mo-Fr 12:00-22:00; Sa-Su 12:00-23:00", attrs[model.AttrOpeningHours])
	assert.Equal(t, "Cantonese", attrs[model.AttrCuisineType])
	assert.Equal(t, "££", attrs[model.AttrPriceRange])
}

func TestExtractEmptyPage(t *testing.T) {
	attrs := extractFrom(t, `<html><body><p>Coming soon</p></body></html>`)
	assert.Empty(t, attrs)
}

func TestExtractPhoneFallsBackToPattern(t *testing.T) {
	attrs := extractFrom(t, `<html><body><p>Reservations: 020 7946 0123</p></body></html>`)
	assert.Equal(t, "020 7946 0123", attrs[model.AttrPhone])
}

func TestExtractEmailSkipsImageNames(t *testing.T) {
	attrs := extractFrom(t, `<html><body><img src="/img/hero@2x.png"></body></html>`)
	assert.NotContains(t, attrs, model.AttrEmail)
}

func TestExtractInstagramSkipsPostLinks(t *testing.T) {
	html := `
<html><body>
<a href="https://www.instagram.com/p/Cxyz123/">A post</a>
<a href="https://www.instagram.com/realhandle">Profile</a>
</body></html>`
	attrs := extractFrom(t, html)
	assert.Equal(t, "realhandle", attrs[model.AttrInstagram])
}

func TestExtractFacebookSkipsSharer(t *testing.T) {
	html := `
<html><body>
<a href="https://www.facebook.com/sharer/sharer.php?u=x">Share</a>
</body></html>`
	attrs := extractFrom(t, html)
	assert.NotContains(t, attrs, model.AttrFacebook)
}

func TestExtractCoverImageSkipsLogos(t *testing.T) {
	html := `
<html><head>
<meta property="og:image" content="/img/site-logo.png">
</head><body>
<header><img src="/img/storefront.jpg"></header>
</body></html>`
	attrs := extractFrom(t, html)
	assert.Equal(t, "https://goldendragon.example/img/storefront.jpg", attrs[model.AttrCoverImage])
}

func TestExtractHoursIgnoresHugeSections(t *testing.T) {
	long := strings.Repeat("filler text ", 60)
	html := `<html><body><div class="hours">` + long + `</div></body></html>`
	attrs := extractFrom(t, html)
	assert.NotContains(t, attrs, model.AttrOpeningHours)
}

func TestExtractToleratesMalformedHTML(t *testing.T) {
	html := `<html><body><div class="opening-hours">Mon-Fri 9-5<a href="tel:0201111222"><p>unclosed`
	attrs := extractFrom(t, html)
	assert.Equal(t, "0201111222", attrs[model.AttrPhone])
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://example.com", normalizeURL("example.com"))
	assert.Equal(t, "http://example.com", normalizeURL("http://example.com"))
	assert.Equal(t, "", normalizeURL("  "))
}
