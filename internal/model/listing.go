package model

// Listing is one external directory search result considered as a possible
// match for a restaurant. Listings are ephemeral: built per evaluation,
// discarded once a verdict exists.
type Listing struct {
	Name         string       `json:"name"`
	URL          string       `json:"url"`
	LocationText string       `json:"location_text,omitempty"`
	Coords       *Coordinates `json:"coords,omitempty"`

	// Attributes holds the fillable values the directory exposes for this
	// listing, keyed by the same attribute names as Restaurant.Attributes.
	Attributes map[string]string `json:"attributes,omitempty"`
}
