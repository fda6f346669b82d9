package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "enrich.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrentRestaurants)
	assert.InDelta(t, 0.5, cfg.Matcher.NameWeight, 0.001)
	assert.InDelta(t, 0.3, cfg.Matcher.AreaWeight, 0.001)
	assert.InDelta(t, 0.2, cfg.Matcher.DistanceWeight, 0.001)
	assert.InDelta(t, 1000, cfg.Matcher.MaxDistanceMeters, 0.001)
	assert.InDelta(t, 0.80, cfg.Matcher.MinNameSimilarity, 0.001)
	assert.InDelta(t, 0.75, cfg.Matcher.MinConfidenceScore, 0.001)
	assert.Equal(t, 5, cfg.Matcher.MaxCandidates)
	assert.Equal(t, "https://www.tripadvisor.co.uk", cfg.Directory.BaseURL)
	assert.InDelta(t, 0.5, cfg.Directory.RequestsPerSecond, 0.001)
	assert.Equal(t, 20, cfg.Directory.TimeoutSecs)
	assert.Equal(t, 3, cfg.Directory.MaxRetries)
	assert.Equal(t, 15, cfg.Website.TimeoutSecs)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/enrich
log:
  level: debug
  format: console
server:
  port: 9090
matcher:
  min_confidence_score: 0.9
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 0.9, cfg.Matcher.MinConfidenceScore, 0.001)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.Matcher.MaxCandidates)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ENRICH_STORE_DRIVER", "postgres")
	t.Setenv("ENRICH_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chtemp(t)

	t.Setenv("ENRICH_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestMatchConfigFromDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	mc, err := cfg.MatchConfig()
	require.NoError(t, err)
	require.NoError(t, mc.Validate())
	assert.InDelta(t, 0.75, mc.MinConfidenceScore, 0.001)
	assert.Empty(t, mc.Stopwords)
}

func TestMatchConfigLoadsStopwordsFile(t *testing.T) {
	dir := chtemp(t)

	words := "- the\n- le\n- la\n"
	path := filepath.Join(dir, "stopwords.yaml")
	require.NoError(t, os.WriteFile(path, []byte(words), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Matcher.StopwordsFile = path

	mc, err := cfg.MatchConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "le", "la"}, mc.Stopwords)
}

func TestMatchConfigMissingStopwordsFile(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Matcher.StopwordsFile = "does-not-exist.yaml"

	_, err = cfg.MatchConfig()
	assert.Error(t, err)
}

func TestValidateModes(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	for _, mode := range []string{"enrich", "batch", "serve", "import", "runs"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
	assert.Error(t, cfg.Validate("unknown"))
}

func TestValidateCatchesBadValues(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	cfg.Store.DatabaseURL = ""
	errV := cfg.Validate("enrich")
	require.Error(t, errV)
	assert.Contains(t, errV.Error(), "store.database_url is required")

	cfg, err = Load()
	require.NoError(t, err)
	cfg.Server.Port = 0
	errV = cfg.Validate("serve")
	require.Error(t, errV)
	assert.Contains(t, errV.Error(), "server.port must be > 0")

	cfg, err = Load()
	require.NoError(t, err)
	cfg.Batch.MaxConcurrentRestaurants = 0
	errV = cfg.Validate("batch")
	require.Error(t, errV)
	assert.Contains(t, errV.Error(), "max_concurrent_restaurants must be between 1 and 50")

	cfg, err = Load()
	require.NoError(t, err)
	cfg.Matcher.NameWeight = 0.9
	errV = cfg.Validate("batch")
	require.Error(t, errV)
	assert.Contains(t, errV.Error(), "weights must sum to 1.0")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
