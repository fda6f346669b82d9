package match

// neutralDistanceScore is the contribution used when no coordinates exist to
// compare. Absence of geodata is treated as "no signal", not "far away", so
// the formula stays total without letting missing data sink a strong name
// match. This is a documented policy choice, not a derived value.
const neutralDistanceScore = 0.5

// DistanceScore maps a distance in meters (or nil for unavailable) onto
// [0,1]: 1.0 at zero distance, falling linearly to 0.0 at MaxDistanceMeters.
func (c Config) DistanceScore(distanceM *float64) float64 {
	if distanceM == nil {
		return neutralDistanceScore
	}
	return clamp01(1 - *distanceM/c.MaxDistanceMeters)
}

// Confidence combines name similarity, area match, and distance into one
// bounded score. Name is the strongest independent signal; area and distance
// corroborate but cannot on their own reach the acceptance threshold.
func (c Config) Confidence(nameSim float64, areaMatch bool, distanceM *float64) float64 {
	area := 0.0
	if areaMatch {
		area = 1.0
	}
	score := nameSim*c.NameWeight + area*c.AreaWeight + c.DistanceScore(distanceM)*c.DistanceWeight
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
