// Package directory implements the venue directory client: searching for
// candidate listings and scraping venue pages for enrichable attributes.
package directory

import (
	"context"

	"github.com/tastelondon/enrich-cli/internal/model"
)

// Finder locates candidate listings for a restaurant and fetches the
// attribute details of a chosen listing.
type Finder interface {
	// Search returns candidate listings for the given restaurant name and
	// city, in the order the directory ranks them.
	Search(ctx context.Context, name, city string) ([]model.Listing, error)

	// FetchDetails scrapes a venue page and returns the listing enriched
	// with whatever attributes the page exposes.
	FetchDetails(ctx context.Context, pageURL string) (model.Listing, error)
}
