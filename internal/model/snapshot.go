package model

import "time"

// Snapshot is the locked set of records that qualified for tertiary
// enrichment at the moment it was taken: every record missing at least one
// critical attribute. Once locked the membership never changes, so a
// tertiary pass always works against a stable population even while other
// enrichment keeps mutating the records themselves.
type Snapshot struct {
	ID        string    `json:"id"`
	PlaceIDs  []string  `json:"place_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// Contains reports whether the place is part of the snapshot.
func (s *Snapshot) Contains(placeID string) bool {
	for _, id := range s.PlaceIDs {
		if id == placeID {
			return true
		}
	}
	return false
}
