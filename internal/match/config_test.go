package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative name weight", func(c *Config) { c.NameWeight = -0.1; c.AreaWeight = 0.8; c.DistanceWeight = 0.3 }},
		{"weights above one", func(c *Config) { c.NameWeight = 0.6 }},
		{"weights below one", func(c *Config) { c.AreaWeight = 0.1 }},
		{"zero max distance", func(c *Config) { c.MaxDistanceMeters = 0 }},
		{"similarity threshold above one", func(c *Config) { c.MinNameSimilarity = 1.5 }},
		{"negative confidence threshold", func(c *Config) { c.MinConfidenceScore = -0.2 }},
		{"zero max candidates", func(c *Config) { c.MaxCandidates = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewEvaluatorRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NameWeight = -1
	_, err := NewEvaluator(cfg)
	assert.Error(t, err)
}
