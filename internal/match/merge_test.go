package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastelondon/enrich-cli/internal/model"
)

func acceptedVerdict() model.Verdict {
	d := 85.0
	return model.Verdict{
		Status: model.VerdictAccepted,
		Candidate: &model.Listing{
			Name: "Golden Dragon",
			URL:  "https://directory.example/Restaurant_Review-g1-d4",
			Attributes: map[string]string{
				model.AttrPhone:        "+44 20 7734 1073",
				model.AttrCuisineType:  "Chinese",
				model.AttrPriceRange:   "££",
				model.AttrOpeningHours: "Mon-Sun 12:00-23:00",
			},
		},
		Confidence: 0.96,
		DistanceM:  &d,
		Breakdown:  "name_sim=0.95 | area_match=true | distance=85m",
	}
}

func TestMergeFillsOnlyEmptyFields(t *testing.T) {
	rec := model.Restaurant{
		PlaceID: "place-1",
		Name:    "Golden Dragon",
		Attributes: map[string]string{
			model.AttrPhone: "020 7000 0000", // already known, must survive
		},
	}

	updated, audit := Merge(rec, acceptedVerdict())

	// Existing value untouched.
	phone, ok := updated.Attr(model.AttrPhone)
	require.True(t, ok)
	assert.Equal(t, "020 7000 0000", phone)

	// Empty fields filled and audited.
	cuisine, ok := updated.Attr(model.AttrCuisineType)
	require.True(t, ok)
	assert.Equal(t, "Chinese", cuisine)
	assert.Equal(t, map[string]string{
		model.AttrCuisineType:  AuditFilledFromDirectory,
		model.AttrPriceRange:   AuditFilledFromDirectory,
		model.AttrOpeningHours: AuditFilledFromDirectory,
	}, audit)
	assert.NotContains(t, audit, model.AttrPhone)

	// Tracking fields stamped.
	require.NotNil(t, updated.DirectoryURL)
	assert.Equal(t, "https://directory.example/Restaurant_Review-g1-d4", *updated.DirectoryURL)
	assert.Equal(t, model.DirectoryFound, updated.DirectoryStatus)
	require.NotNil(t, updated.DirectoryConfidence)
	assert.InDelta(t, 0.96, *updated.DirectoryConfidence, 1e-9)
	require.NotNil(t, updated.DirectoryDistanceM)
	assert.InDelta(t, 85, *updated.DirectoryDistanceM, 1e-9)
	assert.Equal(t, "name_sim=0.95 | area_match=true | distance=85m", updated.DirectoryMatchNotes)
}

func TestMergeExplicitEmptyStringCountsAsPresent(t *testing.T) {
	rec := model.Restaurant{
		PlaceID:    "place-1",
		Name:       "Golden Dragon",
		Attributes: map[string]string{model.AttrCuisineType: ""},
	}

	updated, audit := Merge(rec, acceptedVerdict())

	cuisine, ok := updated.Attr(model.AttrCuisineType)
	require.True(t, ok)
	assert.Equal(t, "", cuisine, "explicit empty string is a value, not a gap")
	assert.NotContains(t, audit, model.AttrCuisineType)
}

func TestMergeSkipsEmptyCandidateValues(t *testing.T) {
	v := acceptedVerdict()
	v.Candidate.Attributes[model.AttrEmail] = ""

	updated, audit := Merge(model.Restaurant{PlaceID: "p", Name: "Golden Dragon"}, v)

	_, ok := updated.Attr(model.AttrEmail)
	assert.False(t, ok)
	assert.NotContains(t, audit, model.AttrEmail)
}

func TestMergeIdempotent(t *testing.T) {
	rec := model.Restaurant{PlaceID: "place-1", Name: "Golden Dragon"}
	v := acceptedVerdict()

	once, auditOnce := Merge(rec, v)
	twice, auditTwice := Merge(once, v)

	assert.Equal(t, once, twice)
	assert.Len(t, auditOnce, 4)
	assert.Empty(t, auditTwice, "second application has nothing left to fill")
	assert.Equal(t, once.TertiaryUpdates, twice.TertiaryUpdates)
}

func TestMergeRejectedWritesNoFields(t *testing.T) {
	rec := model.Restaurant{
		PlaceID:    "place-1",
		Name:       "Golden Dragon",
		Attributes: map[string]string{model.AttrPhone: "020 7000 0000"},
	}
	v := model.Verdict{Status: model.VerdictRejected, Reason: model.ReasonNoCandidates}

	updated, audit := Merge(rec, v)

	assert.Empty(t, audit)
	assert.Equal(t, rec.Attributes, updated.Attributes)
	assert.Equal(t, model.DirectoryNotFound, updated.DirectoryStatus)
	assert.Equal(t, model.ReasonNoCandidates, updated.DirectoryMatchNotes)
	assert.Nil(t, updated.DirectoryURL)
	assert.Nil(t, updated.DirectoryConfidence)
	assert.Nil(t, updated.DirectoryDistanceM)
}

func TestMergeNeverMutatesInput(t *testing.T) {
	rec := model.Restaurant{PlaceID: "place-1", Name: "Golden Dragon"}
	_, _ = Merge(rec, acceptedVerdict())

	assert.Nil(t, rec.Attributes)
	assert.Nil(t, rec.DirectoryURL)
	assert.Empty(t, rec.TertiaryUpdates)
}
