package model

// VerdictStatus is the accept/reject outcome of candidate evaluation.
type VerdictStatus string

const (
	VerdictAccepted VerdictStatus = "accepted"
	VerdictRejected VerdictStatus = "rejected"
)

// Rejection reason labels. The evaluator returns these verbatim (optionally
// followed by detail) in Verdict.Reason, and the merge policy stamps them
// into the record's match notes.
const (
	ReasonNoCandidates        = "no_candidates"
	ReasonAllBelowThreshold   = "all_candidates_below_name_threshold_or_distance"
	ReasonConfidenceTooLow    = "confidence_below_threshold"
)

// Verdict is the evaluator's output for one restaurant.
//
// An accepted verdict carries the chosen candidate, a confidence in [0,1],
// the distance in meters when both sides had coordinates, and a breakdown
// string. A rejected verdict carries only a reason.
type Verdict struct {
	Status     VerdictStatus `json:"status"`
	Candidate  *Listing      `json:"candidate,omitempty"`
	Confidence float64       `json:"confidence,omitempty"`
	DistanceM  *float64      `json:"distance_m,omitempty"`
	Breakdown  string        `json:"breakdown,omitempty"`
	Reason     string        `json:"reason,omitempty"`
}

// Accepted reports whether the verdict accepted a candidate.
func (v *Verdict) Accepted() bool {
	return v.Status == VerdictAccepted
}
