// Package enrich orchestrates enrichment runs: website scrape first, then
// the directory fallback for records still missing critical attributes,
// with every outcome persisted as a run.
package enrich

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tastelondon/enrich-cli/internal/match"
	"github.com/tastelondon/enrich-cli/internal/model"
	"github.com/tastelondon/enrich-cli/internal/store"
)

// WebsiteScraper extracts attributes from a restaurant's own website.
type WebsiteScraper interface {
	Scrape(ctx context.Context, websiteURL string) (map[string]string, error)
}

// Finder locates and details candidate listings in the venue directory.
type Finder interface {
	Search(ctx context.Context, name, city string) ([]model.Listing, error)
	FetchDetails(ctx context.Context, pageURL string) (model.Listing, error)
}

// AuditFilledFromWebsite marks attributes the website stage filled.
const AuditFilledFromWebsite = "filled_from_website"

// Pipeline runs enrichment for single records and batches.
type Pipeline struct {
	store     store.Store
	scraper   WebsiteScraper
	finder    Finder
	evaluator *match.Evaluator
}

// NewPipeline assembles a pipeline. scraper may be nil to skip the website
// stage (the tertiary-only mode).
func NewPipeline(st store.Store, scraper WebsiteScraper, finder Finder, evaluator *match.Evaluator) *Pipeline {
	return &Pipeline{store: st, scraper: scraper, finder: finder, evaluator: evaluator}
}

// EnrichOne runs the full enrichment for a single record and persists both
// the updated record and the run. The returned record reflects every fill
// that happened even when a later stage failed.
func (p *Pipeline) EnrichOne(ctx context.Context, rec model.Restaurant) (model.Restaurant, *model.Run, error) {
	started := time.Now()

	run, err := p.store.CreateRun(ctx, rec)
	if err != nil {
		return rec, nil, err
	}
	log := zap.L().With(
		zap.String("run_id", run.ID),
		zap.String("place_id", rec.PlaceID),
		zap.String("name", rec.Name),
	)

	result := &model.RunResult{Filled: map[string]string{}}
	current := rec.Clone()

	// Website stage: fill-only from the restaurant's own site.
	if p.scraper != nil && current.Website != "" && missingAny(&current) {
		p.setStatus(ctx, run.ID, model.RunStatusScraping)
		attrs, err := p.scraper.Scrape(ctx, current.Website)
		if err != nil {
			// The website being down never blocks the directory fallback.
			log.Warn("website scrape failed", zap.Error(err))
			result.Notes = appendNote(result.Notes, "website scrape failed")
		} else {
			result.WebsiteFills = fillAbsent(&current, attrs, AuditFilledFromWebsite, result.Filled)
			log.Info("website stage complete", zap.Int("fills", result.WebsiteFills))
		}
	}

	// Tertiary stage: directory fallback for missing critical attributes.
	if missingCritical(&current) {
		merged, err := p.tertiary(ctx, run.ID, current, result)
		if err != nil {
			return p.fail(ctx, run, current, result, started, err)
		}
		current = merged
	}

	result.DirectoryStatus = current.DirectoryStatus
	if current.DirectoryConfidence != nil {
		result.Confidence = *current.DirectoryConfidence
	}
	result.DurationMS = time.Since(started).Milliseconds()

	if err := p.store.UpsertRestaurant(ctx, current); err != nil {
		return p.fail(ctx, run, current, result, started, err)
	}
	if err := p.store.UpdateRunResult(ctx, run.ID, model.RunStatusComplete, result); err != nil {
		return current, run, err
	}

	run.Status = model.RunStatusComplete
	run.Result = result
	log.Info("enrichment complete",
		zap.String("directory_status", string(result.DirectoryStatus)),
		zap.Int("website_fills", result.WebsiteFills),
		zap.Int("directory_fills", result.DirectoryFills),
	)
	return current, run, nil
}

// tertiary searches the directory, evaluates candidates, fetches details
// for an accepted match, and applies the fill-only merge.
func (p *Pipeline) tertiary(ctx context.Context, runID string, rec model.Restaurant, result *model.RunResult) (model.Restaurant, error) {
	p.setStatus(ctx, runID, model.RunStatusSearching)
	candidates, err := p.finder.Search(ctx, rec.Name, rec.City)
	if err != nil {
		return rec, eris.Wrap(err, "enrich: directory search")
	}

	p.setStatus(ctx, runID, model.RunStatusEvaluating)
	verdict, err := p.evaluator.Evaluate(rec, candidates)
	if err != nil {
		return rec, eris.Wrap(err, "enrich: evaluate candidates")
	}

	if verdict.Accepted() {
		// The search page only carries identity; the venue page has the
		// attributes. Keep the evaluated candidate and graft details on.
		details, err := p.finder.FetchDetails(ctx, verdict.Candidate.URL)
		if err != nil {
			return rec, eris.Wrap(err, "enrich: fetch listing details")
		}
		verdict.Candidate.Attributes = details.Attributes
	}

	p.setStatus(ctx, runID, model.RunStatusMerging)
	merged, audit := match.Merge(rec, verdict)
	result.DirectoryFills = len(audit)
	for k, v := range audit {
		result.Filled[k] = v
	}
	return merged, nil
}

// fail marks the record and run failed without losing fills from earlier
// stages.
func (p *Pipeline) fail(ctx context.Context, run *model.Run, rec model.Restaurant, result *model.RunResult, started time.Time, cause error) (model.Restaurant, *model.Run, error) {
	rec.DirectoryStatus = model.DirectoryError
	rec.DirectoryMatchNotes = cause.Error()

	result.DirectoryStatus = model.DirectoryError
	result.Error = cause.Error()
	result.DurationMS = time.Since(started).Milliseconds()

	if err := p.store.UpsertRestaurant(ctx, rec); err != nil {
		zap.L().Error("persist failed record", zap.String("run_id", run.ID), zap.Error(err))
	}
	if err := p.store.UpdateRunResult(ctx, run.ID, model.RunStatusFailed, result); err != nil {
		zap.L().Error("persist failed run", zap.String("run_id", run.ID), zap.Error(err))
	}

	run.Status = model.RunStatusFailed
	run.Result = result
	return rec, run, cause
}

func (p *Pipeline) setStatus(ctx context.Context, runID string, status model.RunStatus) {
	if err := p.store.UpdateRunStatus(ctx, runID, status); err != nil {
		zap.L().Warn("update run status",
			zap.String("run_id", runID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

// fillAbsent copies values for absent keys only, skipping empty candidate
// values, and records audit entries.
func fillAbsent(rec *model.Restaurant, attrs map[string]string, auditValue string, filled map[string]string) int {
	n := 0
	for key, value := range attrs {
		if value == "" {
			continue
		}
		if _, ok := rec.Attr(key); ok {
			continue
		}
		rec.SetAttr(key, value)
		filled[key] = auditValue
		n++
	}
	return n
}

func missingAny(rec *model.Restaurant) bool {
	for _, attr := range allAttrs {
		if _, ok := rec.Attr(attr); !ok {
			return true
		}
	}
	return false
}

func missingCritical(rec *model.Restaurant) bool {
	return len(rec.MissingAttrs(model.CriticalAttrs)) > 0
}

var allAttrs = []string{
	model.AttrPhone,
	model.AttrEmail,
	model.AttrOpeningHours,
	model.AttrCuisineType,
	model.AttrPriceRange,
	model.AttrInstagram,
	model.AttrFacebook,
	model.AttrMenuURL,
	model.AttrCoverImage,
}

func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}
	return notes + "; " + note
}
