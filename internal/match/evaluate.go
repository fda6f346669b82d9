package match

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/tastelondon/enrich-cli/internal/model"
)

// Evaluator scores an ordered set of directory listings against a restaurant
// and selects the best provable match, if any. It is stateless after
// construction and safe for concurrent use.
type Evaluator struct {
	cfg  Config
	norm *Normalizer
}

// NewEvaluator builds an evaluator, validating the config up front.
func NewEvaluator(cfg Config) (*Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{cfg: cfg, norm: NewNormalizer(cfg.Stopwords)}, nil
}

// Normalizer exposes the evaluator's normalizer so collaborators reuse the
// exact same canonical form.
func (e *Evaluator) Normalizer() *Normalizer { return e.norm }

// Config returns the policy the evaluator was built with.
func (e *Evaluator) Config() Config { return e.cfg }

// Evaluate applies the hard rules and confidence scoring to up to
// MaxCandidates listings, in order, and returns one verdict.
//
// Rejections ("no good match") are normal outcomes carried in the verdict;
// the returned error is reserved for contract violations such as invalid
// coordinates on either side.
func (e *Evaluator) Evaluate(query model.Restaurant, candidates []model.Listing) (model.Verdict, error) {
	if len(candidates) > e.cfg.MaxCandidates {
		candidates = candidates[:e.cfg.MaxCandidates]
	}
	if len(candidates) == 0 {
		return rejected(model.ReasonNoCandidates), nil
	}

	queryName := e.norm.Normalize(query.Name)

	type scored struct {
		listing   model.Listing
		sim       float64
		areaMatch bool
		distanceM *float64
		conf      float64
	}
	var best *scored

	for _, cand := range candidates {
		// Defensive re-rejection: a listing without a usable name can never
		// be an individual venue page worth scoring.
		candName := e.norm.Normalize(cand.Name)
		if cand.Name == "" {
			zap.L().Debug("match: discarding unnamed candidate", zap.String("url", cand.URL))
			continue
		}

		sim := Similarity(queryName, candName)
		if sim < e.cfg.MinNameSimilarity {
			continue
		}

		var distanceM *float64
		if query.Coords != nil && cand.Coords != nil {
			d, err := Distance(*query.Coords, *cand.Coords)
			if err != nil {
				return model.Verdict{}, err
			}
			if d > e.cfg.MaxDistanceMeters {
				// Hard rule: too far away regardless of name similarity.
				continue
			}
			distanceM = &d
		}

		areaMatch := e.norm.AreaMatch(query.Area, cand.LocationText)
		conf := e.cfg.Confidence(sim, areaMatch, distanceM)

		// Strict > keeps the earliest candidate on ties.
		if best == nil || conf > best.conf {
			best = &scored{listing: cand, sim: sim, areaMatch: areaMatch, distanceM: distanceM, conf: conf}
		}
	}

	if best == nil {
		return rejected(model.ReasonAllBelowThreshold), nil
	}
	if best.conf < e.cfg.MinConfidenceScore {
		return rejected(fmt.Sprintf("%s: score %.2f < threshold %.2f",
			model.ReasonConfidenceTooLow, best.conf, e.cfg.MinConfidenceScore)), nil
	}

	chosen := best.listing
	return model.Verdict{
		Status:     model.VerdictAccepted,
		Candidate:  &chosen,
		Confidence: round2(best.conf),
		DistanceM:  best.distanceM,
		Breakdown:  breakdown(best.sim, best.areaMatch, best.distanceM),
	}, nil
}

// breakdown renders the human-readable score summary, omitting the distance
// segment when no coordinates were comparable.
func breakdown(sim float64, areaMatch bool, distanceM *float64) string {
	s := fmt.Sprintf("name_sim=%.2f | area_match=%t", sim, areaMatch)
	if distanceM != nil {
		s += fmt.Sprintf(" | distance=%dm", int(math.Round(*distanceM)))
	}
	return s
}

func rejected(reason string) model.Verdict {
	return model.Verdict{Status: model.VerdictRejected, Reason: reason}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
