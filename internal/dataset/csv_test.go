package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastelondon/enrich-cli/internal/model"
)

const sampleCSV = `place_id,name,city,area,website,lat,lon,phone,email,opening_hours,cuisine_type,price_range
place-1,Golden Dragon,London,Soho,https://goldendragon.example,51.5115,-0.1312,020 7734 1073,,,Chinese,
place-2,Cafe Blue,London,Hackney,,,,,,,,
`

func TestReadMapsColumnsByHeader(t *testing.T) {
	restaurants, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, restaurants, 2)

	r := restaurants[0]
	assert.Equal(t, "place-1", r.PlaceID)
	assert.Equal(t, "Golden Dragon", r.Name)
	assert.Equal(t, "Soho", r.Area)
	require.NotNil(t, r.Coords)
	assert.InDelta(t, 51.5115, r.Coords.Lat, 1e-9)
	assert.InDelta(t, -0.1312, r.Coords.Lon, 1e-9)

	// Empty cells are absent attributes, not empty values.
	assert.Equal(t, "020 7734 1073", r.Attributes[model.AttrPhone])
	_, hasEmail := r.Attr(model.AttrEmail)
	assert.False(t, hasEmail)
	assert.Equal(t, "Chinese", r.Attributes[model.AttrCuisineType])

	assert.Nil(t, restaurants[1].Coords)
	assert.Empty(t, restaurants[1].Attributes)
}

func TestReadRejectsLonWithoutLat(t *testing.T) {
	csv := "place_id,name,lat,lon\nplace-1,Golden Dragon,,-0.13\n"
	_, err := Read(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lat and lon must be set together")
}

func TestReadRejectsMissingIdentity(t *testing.T) {
	_, err := Read(strings.NewReader("place_id,name\n,Golden Dragon\n"))
	assert.Error(t, err)

	_, err = Read(strings.NewReader("place_id,name\nplace-1,\n"))
	assert.Error(t, err)

	_, err = Read(strings.NewReader("name\nGolden Dragon\n"))
	assert.Error(t, err, "missing place_id column")
}

func TestReadEmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	url := "https://directory.example/Restaurant_Review-g1-d4"
	conf := 0.96
	dist := 85.0
	in := []model.Restaurant{
		{
			PlaceID: "place-1",
			Name:    "Golden Dragon",
			City:    "London",
			Area:    "Soho",
			Website: "https://goldendragon.example",
			Coords:  &model.Coordinates{Lat: 51.5115, Lon: -0.1312},
			Attributes: map[string]string{
				model.AttrPhone:       "020 7734 1073",
				model.AttrCuisineType: "Chinese",
			},
			DirectoryURL:        &url,
			DirectoryStatus:     model.DirectoryFound,
			DirectoryConfidence: &conf,
			DirectoryDistanceM:  &dist,
			DirectoryMatchNotes: "name_sim=1.00 | area_match=true | distance=85m",
			TertiaryUpdates:     map[string]string{model.AttrCuisineType: "filled_from_directory"},
		},
		{
			PlaceID: "place-2",
			Name:    "Cafe Blue",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in))

	out, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, in[0], out[0])
	assert.Equal(t, "place-2", out[1].PlaceID)
	assert.Nil(t, out[1].Coords)
	assert.Nil(t, out[1].DirectoryURL)
	assert.Empty(t, out[1].Attributes)
}

func TestHeaderShape(t *testing.T) {
	h := Header()
	assert.Equal(t, "place_id", h[0])
	assert.Contains(t, h, model.AttrCoverImage)
	assert.Equal(t, "tertiary_updates", h[len(h)-1])
}
