package match

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestDistanceScore(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		d    *float64
		want float64
	}{
		{"unavailable is neutral", nil, 0.5},
		{"zero distance", floatPtr(0), 1.0},
		{"mid range", floatPtr(500), 0.5},
		{"at limit", floatPtr(1000), 0.0},
		{"beyond limit clamps", floatPtr(2500), 0.0},
		{"near match", floatPtr(85), 0.915},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cfg.DistanceScore(tt.d), 1e-9)
		})
	}
}

func TestConfidenceWorkedExamples(t *testing.T) {
	cfg := DefaultConfig()

	// Strong match: 0.95*0.5 + 0.3 + 0.915*0.2 = 0.958.
	assert.InDelta(t, 0.958, cfg.Confidence(0.95, true, floatPtr(85)), 1e-9)

	// Weak aggregate: 0.82*0.5 + 0 + 0.2*0.2 = 0.45.
	assert.InDelta(t, 0.45, cfg.Confidence(0.82, false, floatPtr(800)), 1e-9)

	// No coordinates: 1.0*0.5 + 0.3 + 0.5*0.2 = 0.9, above the gate on
	// name and area alone.
	assert.InDelta(t, 0.9, cfg.Confidence(1.0, true, nil), 1e-9)

	// Area and distance alone cannot reach the acceptance threshold.
	assert.InDelta(t, 0.5, cfg.Confidence(0, true, floatPtr(0)), 1e-9)
}

func TestConfidenceAlwaysBounded(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewPCG(42, 1))

	for range 10000 {
		sim := rng.Float64()
		area := rng.IntN(2) == 1
		var d *float64
		if rng.IntN(4) != 0 {
			d = floatPtr(rng.Float64() * 5000)
		}
		got := cfg.Confidence(sim, area, d)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}
