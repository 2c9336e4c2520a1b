package config

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/sic-clean/internal/prep"
	"github.com/sells-group/sic-clean/internal/sic"
)

// Config holds the full application configuration.
type Config struct {
	Clean    CleanConfig    `yaml:"clean" mapstructure:"clean"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// CleanConfig configures tokenizing and cleaning.
type CleanConfig struct {
	Digits         int      `yaml:"digits" mapstructure:"digits"`
	Padding        int      `yaml:"padding" mapstructure:"padding"`
	Threshold      float64  `yaml:"threshold" mapstructure:"threshold"`
	CodeField      string   `yaml:"code_field" mapstructure:"code_field"`
	ScoreField     string   `yaml:"score_field" mapstructure:"score_field"`
	Pattern        string   `yaml:"pattern" mapstructure:"pattern"`
	MaxExpandWidth int      `yaml:"max_expand_width" mapstructure:"max_expand_width"`
	InvalidValues  []string `yaml:"invalid_values" mapstructure:"invalid_values"`
}

// RegistryConfig points at the code registry. An empty path uses the
// embedded UK SIC 2007 table.
type RegistryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentRecords int `yaml:"max_concurrent_records" mapstructure:"max_concurrent_records"`
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
	v.SetEnvPrefix("SICCLEAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("clean.digits", sic.SubClass.Digits())
	v.SetDefault("clean.padding", sic.DefaultPadding)
	v.SetDefault("clean.threshold", 0.0)
	v.SetDefault("clean.code_field", sic.DefaultCodeField)
	v.SetDefault("clean.score_field", sic.DefaultScoreField)
	v.SetDefault("clean.pattern", sic.DefaultPattern)
	v.SetDefault("clean.max_expand_width", sic.DefaultMaxExpandWidth)
	v.SetDefault("clean.invalid_values", sic.DefaultInvalidValues)
	v.SetDefault("registry.path", "")
	v.SetDefault("batch.max_concurrent_records", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks value ranges and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if _, err := sic.LevelForDigits(c.Clean.Digits); err != nil {
		errs = append(errs, "clean.digits must be 0 (section) or between 2 and 5")
	}
	if c.Clean.Padding < 1 {
		errs = append(errs, "clean.padding must be >= 1")
	}
	if c.Clean.Threshold < 0 {
		errs = append(errs, "clean.threshold must be >= 0")
	}
	if c.Clean.MaxExpandWidth < 0 || c.Clean.MaxExpandWidth > 5 {
		errs = append(errs, "clean.max_expand_width must be between 0 and 5")
	}
	if _, err := regexp.Compile(c.Clean.Pattern); err != nil {
		errs = append(errs, "clean.pattern does not compile: "+err.Error())
	}
	if c.Batch.MaxConcurrentRecords < 1 || c.Batch.MaxConcurrentRecords > 64 {
		errs = append(errs, "batch.max_concurrent_records must be between 1 and 64")
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, "log.format must be json or console")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Level returns the configured cleaning level.
func (c *Config) Level() (sic.Level, error) {
	lvl, err := sic.LevelForDigits(c.Clean.Digits)
	if err != nil {
		return 0, eris.Wrap(err, "config: clean.digits")
	}
	return lvl, nil
}

// Fields returns the candidate record keys.
func (c *Config) Fields() sic.Fields {
	return sic.Fields{Code: c.Clean.CodeField, Score: c.Clean.ScoreField}
}

// EngineOptions maps the clean section onto engine options, routing
// diagnostics to sink.
func (c *Config) EngineOptions(sink sic.Sink) []sic.Option {
	opts := []sic.Option{
		sic.WithPadding(c.Clean.Padding),
		sic.WithPattern(c.Clean.Pattern),
		sic.WithMaxExpandWidth(c.Clean.MaxExpandWidth),
		sic.WithSink(sink),
	}
	if c.Clean.InvalidValues != nil {
		opts = append(opts, sic.WithInvalidValues(c.Clean.InvalidValues))
	}
	return opts
}

// Prep returns the record preparation settings.
func (c *Config) Prep() (prep.Config, error) {
	lvl, err := c.Level()
	if err != nil {
		return prep.Config{}, err
	}
	pc := prep.Config{Level: lvl, Threshold: c.Clean.Threshold}
	return pc, pc.Validate()
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
