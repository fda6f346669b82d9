package match

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/tastelondon/enrich-cli/internal/model"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Distance returns the great-circle distance in meters between two points
// using the haversine formula. Out-of-range or non-finite coordinates are a
// caller contract violation and fail fast rather than being clamped.
//
// Absent coordinates are not this function's concern: callers that lack a
// pair on either side must treat the distance signal as unavailable instead
// of calling Distance.
func Distance(a, b model.Coordinates) (float64, error) {
	if err := validateCoordinates(a); err != nil {
		return 0, err
	}
	if err := validateCoordinates(b); err != nil {
		return 0, err
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h)), nil
}

func validateCoordinates(c model.Coordinates) error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return eris.Errorf("match: non-finite coordinates (%v, %v)", c.Lat, c.Lon)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return eris.Errorf("match: latitude out of range: %v", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return eris.Errorf("match: longitude out of range: %v", c.Lon)
	}
	return nil
}
