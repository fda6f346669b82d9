// Package match implements the candidate evaluation and confidence-scoring
// engine: name normalization, token similarity, geodesic distance, area
// matching, weighted confidence aggregation, and the fill-only merge policy.
//
// Everything in this package is a pure computation over in-memory values and
// is safe to call concurrently for independent records.
package match

import (
	"math"

	"github.com/rotisserie/eris"
)

// Config holds the tunable matching policy: signal weights, hard-rule
// thresholds, and the stopword list used by the normalizer. Thresholds are
// explicit values threaded into the evaluator rather than package globals so
// tests and deployments can vary them independently.
type Config struct {
	// Weights for the confidence combination. Must be non-negative and sum
	// to 1.0 so the resulting confidence stays in [0,1].
	NameWeight     float64
	AreaWeight     float64
	DistanceWeight float64

	// MaxDistanceMeters is both the normalization scale for the distance
	// score and the hard rejection cutoff.
	MaxDistanceMeters float64

	// MinNameSimilarity rejects a candidate outright when its normalized
	// name similarity falls below it.
	MinNameSimilarity float64

	// MinConfidenceScore is the acceptance gate for the best survivor.
	MinConfidenceScore float64

	// MaxCandidates bounds how many listings are considered per evaluation.
	MaxCandidates int

	// Stopwords removed during name normalization. Empty means the default
	// generic food-service noun list.
	Stopwords []string
}

// DefaultConfig returns the standard matching policy.
func DefaultConfig() Config {
	return Config{
		NameWeight:         0.5,
		AreaWeight:         0.3,
		DistanceWeight:     0.2,
		MaxDistanceMeters:  1000,
		MinNameSimilarity:  0.80,
		MinConfidenceScore: 0.75,
		MaxCandidates:      5,
	}
}

// Validate checks the config for contract violations. Negative weights or a
// weight sum away from 1.0 would break the [0,1] confidence bound and are
// rejected up front rather than silently clamped away.
func (c Config) Validate() error {
	if c.NameWeight < 0 || c.AreaWeight < 0 || c.DistanceWeight < 0 {
		return eris.Errorf("match: negative weight (name=%v area=%v distance=%v)",
			c.NameWeight, c.AreaWeight, c.DistanceWeight)
	}
	if sum := c.NameWeight + c.AreaWeight + c.DistanceWeight; math.Abs(sum-1.0) > 1e-9 {
		return eris.Errorf("match: weights must sum to 1.0, got %v", sum)
	}
	if c.MaxDistanceMeters <= 0 {
		return eris.Errorf("match: max distance must be positive, got %v", c.MaxDistanceMeters)
	}
	if c.MinNameSimilarity < 0 || c.MinNameSimilarity > 1 {
		return eris.Errorf("match: name similarity threshold out of [0,1]: %v", c.MinNameSimilarity)
	}
	if c.MinConfidenceScore < 0 || c.MinConfidenceScore > 1 {
		return eris.Errorf("match: confidence threshold out of [0,1]: %v", c.MinConfidenceScore)
	}
	if c.MaxCandidates <= 0 {
		return eris.Errorf("match: max candidates must be positive, got %d", c.MaxCandidates)
	}
	return nil
}
