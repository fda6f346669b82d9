package match

import "strings"

// AreaMatch reports whether the query's neighborhood keyword appears within
// the candidate's free-text location. Both sides go through the same
// normalization as names, so the check is case- and punctuation-insensitive.
//
// An empty or absent query area always yields false: no credit is given for
// a signal that was never supplied.
func (n *Normalizer) AreaMatch(area, locationText string) bool {
	qa := n.Normalize(area)
	if qa == "" {
		return false
	}
	loc := n.Normalize(locationText)
	if loc == "" {
		return false
	}
	return strings.Contains(loc, qa)
}
