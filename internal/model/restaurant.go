package model

// Enrichable attribute keys. These are the names used in CSV columns,
// candidate listings, and audit maps.
const (
	AttrPhone        = "phone"
	AttrEmail        = "email"
	AttrOpeningHours = "opening_hours"
	AttrCuisineType  = "cuisine_type"
	AttrPriceRange   = "price_range"
	AttrInstagram    = "instagram_handle"
	AttrFacebook     = "facebook_url"
	AttrMenuURL      = "menu_url"
	AttrCoverImage   = "cover_image"
)

// CriticalAttrs are the attributes whose absence qualifies a record for the
// tertiary directory fallback.
var CriticalAttrs = []string{AttrPhone, AttrOpeningHours, AttrCuisineType, AttrPriceRange}

// DirectoryStatus is the outcome of the last directory evaluation for a record.
type DirectoryStatus string

const (
	DirectoryFound    DirectoryStatus = "found"
	DirectoryNotFound DirectoryStatus = "not_found"
	DirectoryError    DirectoryStatus = "error"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
// A record either carries a full pair or none at all; a nil *Coordinates
// means the position is unknown.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Restaurant is a canonical restaurant record being enriched.
//
// Attributes holds the open set of enrichable values. A key that is absent
// from the map means the value is unknown; a key that is present maps to a
// known value, even when that value is the empty string. This distinction is
// what the fill-only merge relies on.
type Restaurant struct {
	PlaceID string       `json:"place_id"`
	Name    string       `json:"name"`
	City    string       `json:"city,omitempty"`
	Area    string       `json:"area,omitempty"`
	Website string       `json:"website,omitempty"`
	Coords  *Coordinates `json:"coords,omitempty"`

	Attributes map[string]string `json:"attributes,omitempty"`

	// Directory match state, stamped by the merge policy.
	DirectoryURL        *string           `json:"directory_url,omitempty"`
	DirectoryStatus     DirectoryStatus   `json:"directory_status,omitempty"`
	DirectoryConfidence *float64          `json:"directory_confidence,omitempty"`
	DirectoryDistanceM  *float64          `json:"directory_distance_m,omitempty"`
	DirectoryMatchNotes string            `json:"directory_match_notes,omitempty"`
	TertiaryUpdates     map[string]string `json:"tertiary_updates,omitempty"`
}

// Attr returns the attribute value and whether it is present.
func (r *Restaurant) Attr(key string) (string, bool) {
	v, ok := r.Attributes[key]
	return v, ok
}

// SetAttr records an attribute value, allocating the map if needed.
func (r *Restaurant) SetAttr(key, value string) {
	if r.Attributes == nil {
		r.Attributes = make(map[string]string)
	}
	r.Attributes[key] = value
}

// MissingAttrs returns the subset of keys that have no value on the record.
func (r *Restaurant) MissingAttrs(keys []string) []string {
	var missing []string
	for _, k := range keys {
		if _, ok := r.Attributes[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

// Clone returns a deep copy of the record. The merge policy works on copies
// so callers keep an untouched original.
func (r Restaurant) Clone() Restaurant {
	out := r
	if r.Coords != nil {
		c := *r.Coords
		out.Coords = &c
	}
	if r.DirectoryURL != nil {
		u := *r.DirectoryURL
		out.DirectoryURL = &u
	}
	if r.DirectoryConfidence != nil {
		v := *r.DirectoryConfidence
		out.DirectoryConfidence = &v
	}
	if r.DirectoryDistanceM != nil {
		v := *r.DirectoryDistanceM
		out.DirectoryDistanceM = &v
	}
	if r.Attributes != nil {
		out.Attributes = make(map[string]string, len(r.Attributes))
		for k, v := range r.Attributes {
			out.Attributes[k] = v
		}
	}
	if r.TertiaryUpdates != nil {
		out.TertiaryUpdates = make(map[string]string, len(r.TertiaryUpdates))
		for k, v := range r.TertiaryUpdates {
			out.TertiaryUpdates[k] = v
		}
	}
	return out
}
