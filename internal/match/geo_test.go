package match

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastelondon/enrich-cli/internal/model"
)

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	p := model.Coordinates{Lat: 51.5074, Lon: -0.1278}
	d, err := Distance(p, p)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestDistanceOneDegreeLatitudeAtEquator(t *testing.T) {
	a := model.Coordinates{Lat: 0, Lon: 0}
	b := model.Coordinates{Lat: 1, Lon: 0}
	d, err := Distance(a, b)
	require.NoError(t, err)
	// One degree of latitude is ~111,195 m; allow 1%.
	assert.InDelta(t, 111195, d, 111195*0.01)
}

func TestDistanceSymmetry(t *testing.T) {
	a := model.Coordinates{Lat: 51.5136, Lon: -0.1365} // Soho
	b := model.Coordinates{Lat: 51.5101, Lon: -0.1340} // Covent Garden
	d1, err := Distance(a, b)
	require.NoError(t, err)
	d2, err := Distance(b, a)
	require.NoError(t, err)
	assert.InDelta(t, d1, d2, 1e-9)
	assert.Greater(t, d1, 0.0)
}

func TestDistanceContractViolations(t *testing.T) {
	valid := model.Coordinates{Lat: 51.5, Lon: -0.12}
	tests := []struct {
		name string
		bad  model.Coordinates
	}{
		{"latitude too high", model.Coordinates{Lat: 90.01, Lon: 0}},
		{"latitude too low", model.Coordinates{Lat: -90.01, Lon: 0}},
		{"longitude too high", model.Coordinates{Lat: 0, Lon: 180.5}},
		{"longitude too low", model.Coordinates{Lat: 0, Lon: -181}},
		{"nan latitude", model.Coordinates{Lat: math.NaN(), Lon: 0}},
		{"inf longitude", model.Coordinates{Lat: 0, Lon: math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Distance(valid, tt.bad)
			assert.Error(t, err)
			_, err = Distance(tt.bad, valid)
			assert.Error(t, err)
		})
	}
}
