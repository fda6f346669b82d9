package match

import "github.com/tastelondon/enrich-cli/internal/model"

// AuditFilledFromDirectory is the audit map value recorded for every
// attribute the merge policy fills from an accepted directory candidate.
const AuditFilledFromDirectory = "filled_from_directory"

// Merge applies a verdict to a record under the fill-only contract and
// returns the updated copy plus an audit map naming exactly the attributes
// that went from empty to populated in this call.
//
// Attributes that already have a value (including an explicit empty string)
// are never touched, whatever the verdict says. A rejected verdict writes no
// attributes at all; it only stamps the tracking fields with the outcome.
// Merge never fails: malformed or missing candidate attributes are treated
// as absent.
func Merge(rec model.Restaurant, verdict model.Verdict) (model.Restaurant, map[string]string) {
	out := rec.Clone()
	audit := map[string]string{}

	if !verdict.Accepted() || verdict.Candidate == nil {
		out.DirectoryStatus = model.DirectoryNotFound
		out.DirectoryMatchNotes = verdict.Reason
		out.DirectoryURL = nil
		out.DirectoryConfidence = nil
		out.DirectoryDistanceM = nil
		return out, audit
	}

	cand := verdict.Candidate
	for name, value := range cand.Attributes {
		if value == "" {
			continue
		}
		if _, present := out.Attributes[name]; present {
			continue
		}
		out.SetAttr(name, value)
		audit[name] = AuditFilledFromDirectory
	}

	url := cand.URL
	conf := verdict.Confidence
	out.DirectoryURL = &url
	out.DirectoryStatus = model.DirectoryFound
	out.DirectoryConfidence = &conf
	out.DirectoryMatchNotes = verdict.Breakdown
	if verdict.DistanceM != nil {
		d := *verdict.DistanceM
		out.DirectoryDistanceM = &d
	} else {
		out.DirectoryDistanceM = nil
	}
	if len(audit) > 0 {
		out.TertiaryUpdates = audit
	}

	return out, audit
}
