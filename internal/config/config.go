package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/tastelondon/enrich-cli/internal/match"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Matcher   MatcherConfig   `yaml:"matcher" mapstructure:"matcher"`
	Directory DirectoryConfig `yaml:"directory" mapstructure:"directory"`
	Website   WebsiteConfig   `yaml:"website" mapstructure:"website"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// MatcherConfig configures candidate evaluation and merge.
type MatcherConfig struct {
	NameWeight         float64 `yaml:"name_weight" mapstructure:"name_weight"`
	AreaWeight         float64 `yaml:"area_weight" mapstructure:"area_weight"`
	DistanceWeight     float64 `yaml:"distance_weight" mapstructure:"distance_weight"`
	MaxDistanceMeters  float64 `yaml:"max_distance_meters" mapstructure:"max_distance_meters"`
	MinNameSimilarity  float64 `yaml:"min_name_similarity" mapstructure:"min_name_similarity"`
	MinConfidenceScore float64 `yaml:"min_confidence_score" mapstructure:"min_confidence_score"`
	MaxCandidates      int     `yaml:"max_candidates" mapstructure:"max_candidates"`
	StopwordsFile      string  `yaml:"stopwords_file" mapstructure:"stopwords_file"`
}

// DirectoryConfig configures the venue directory client.
type DirectoryConfig struct {
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// WebsiteConfig configures restaurant-website scraping.
type WebsiteConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentRestaurants int `yaml:"max_concurrent_restaurants" mapstructure:"max_concurrent_restaurants"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "enrich.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_restaurants", 5)
	v.SetDefault("matcher.name_weight", 0.5)
	v.SetDefault("matcher.area_weight", 0.3)
	v.SetDefault("matcher.distance_weight", 0.2)
	v.SetDefault("matcher.max_distance_meters", 1000)
	v.SetDefault("matcher.min_name_similarity", 0.80)
	v.SetDefault("matcher.min_confidence_score", 0.75)
	v.SetDefault("matcher.max_candidates", 5)
	v.SetDefault("directory.base_url", "https://www.tripadvisor.co.uk")
	v.SetDefault("directory.user_agent", "Mozilla/5.0 (compatible; enrich-cli/1.0)")
	v.SetDefault("directory.requests_per_second", 0.5)
	v.SetDefault("directory.burst", 1)
	v.SetDefault("directory.timeout_secs", 20)
	v.SetDefault("directory.max_retries", 3)
	v.SetDefault("website.user_agent", "Mozilla/5.0 (compatible; enrich-cli/1.0)")
	v.SetDefault("website.timeout_secs", 15)
	v.SetDefault("website.max_retries", 2)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields required for the given run mode
// (enrich, batch, serve, import).
func (c *Config) Validate(mode string) error {
	var problems []string

	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	switch mode {
	case "enrich", "batch", "import", "runs":
		check(c.Store.Driver == "sqlite" || c.Store.Driver == "postgres",
			"store.driver must be sqlite or postgres")
		check(c.Store.DatabaseURL != "", "store.database_url is required")
	case "serve":
		check(c.Server.Port > 0 && c.Server.Port < 65536, "server.port must be > 0")
		check(c.Store.DatabaseURL != "", "store.database_url is required")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	check(c.Batch.MaxConcurrentRestaurants >= 1 && c.Batch.MaxConcurrentRestaurants <= 50,
		"batch.max_concurrent_restaurants must be between 1 and 50")
	check(c.Directory.RequestsPerSecond > 0, "directory.requests_per_second must be > 0")
	check(c.Directory.TimeoutSecs > 0, "directory.timeout_secs must be > 0")

	if err := c.matchConfigNoStopwords().Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// MatchConfig builds the evaluator configuration, loading the stopword
// file when one is set.
func (c *Config) MatchConfig() (match.Config, error) {
	mc := c.matchConfigNoStopwords()
	if c.Matcher.StopwordsFile != "" {
		words, err := loadStopwords(c.Matcher.StopwordsFile)
		if err != nil {
			return match.Config{}, err
		}
		mc.Stopwords = words
	}
	return mc, nil
}

func (c *Config) matchConfigNoStopwords() match.Config {
	mc := match.DefaultConfig()
	mc.NameWeight = c.Matcher.NameWeight
	mc.AreaWeight = c.Matcher.AreaWeight
	mc.DistanceWeight = c.Matcher.DistanceWeight
	mc.MaxDistanceMeters = c.Matcher.MaxDistanceMeters
	mc.MinNameSimilarity = c.Matcher.MinNameSimilarity
	mc.MinConfidenceScore = c.Matcher.MinConfidenceScore
	mc.MaxCandidates = c.Matcher.MaxCandidates
	return mc
}

// loadStopwords reads a YAML list of stopwords.
func loadStopwords(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "config: read stopwords file")
	}
	var words []string
	if err := yaml.Unmarshal(raw, &words); err != nil {
		return nil, eris.Wrap(err, "config: parse stopwords file")
	}
	return words, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
