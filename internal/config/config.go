package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Input  string       `yaml:"input" mapstructure:"input"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// OutputConfig names the files each mode writes. Relative names resolve
// against Dir.
type OutputConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	NodeCounts string `yaml:"node_counts" mapstructure:"node_counts"`
	WayCounts  string `yaml:"way_counts" mapstructure:"way_counts"`
	NodeValues string `yaml:"node_values" mapstructure:"node_values"`
	WayValues  string `yaml:"way_values" mapstructure:"way_values"`
	Fixed      string `yaml:"fixed" mapstructure:"fixed"`
	Documents  string `yaml:"documents" mapstructure:"documents"`
}

// StoreConfig configures the document store the loader writes to.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Collection  string `yaml:"collection" mapstructure:"collection"`
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// FetchConfig configures extract downloads.
type FetchConfig struct {
	Dir           string  `yaml:"dir" mapstructure:"dir"`
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	MaxAttempts   int     `yaml:"max_attempts" mapstructure:"max_attempts"`
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
	v.SetEnvPrefix("OSMAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input", "")
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.node_counts", "node-tag-count.txt")
	v.SetDefault("output.way_counts", "way-tag-count.txt")
	v.SetDefault("output.node_values", "node-subtags-unique-values.txt")
	v.SetDefault("output.way_values", "way-subtags-unique-values.txt")
	v.SetDefault("output.fixed", "output_v1.osm")
	v.SetDefault("output.documents", "osm.json")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "osm.db")
	v.SetDefault("store.collection", "osm")
	v.SetDefault("store.batch_size", 1000)
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("fetch.dir", "extracts")
	v.SetDefault("fetch.user_agent", "osm-audit/1.0")
	v.SetDefault("fetch.timeout_secs", 600)
	v.SetDefault("fetch.rate_per_second", 1.0)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: store.driver must be sqlite or postgres, got %q", c.Store.Driver)
	}
	if c.Store.BatchSize < 1 {
		return eris.Errorf("config: store.batch_size must be at least 1, got %d", c.Store.BatchSize)
	}
	if c.Store.Collection == "" {
		return eris.New("config: store.collection is required")
	}
	return nil
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
