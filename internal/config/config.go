package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Imputer   ImputerConfig   `yaml:"imputer" envconfig:"IMPUTER"`
	Transform TransformConfig `yaml:"transform" envconfig:"TRANSFORM"`
	Viewer    ViewerConfig    `yaml:"viewer" envconfig:"VIEWER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// ImputerConfig pins the regression and interpolation parameters
type ImputerConfig struct {
	Estimators      int    `yaml:"estimators" envconfig:"ESTIMATORS" validate:"min=1"`
	Seed            int64  `yaml:"seed" envconfig:"SEED"`
	MaxDepth        int    `yaml:"max_depth" envconfig:"MAX_DEPTH" validate:"min=0"`
	MinSamplesSplit int    `yaml:"min_samples_split" envconfig:"MIN_SAMPLES_SPLIT" validate:"min=2"`
	MinSamplesLeaf  int    `yaml:"min_samples_leaf" envconfig:"MIN_SAMPLES_LEAF" validate:"min=1"`
	Parallelism     int    `yaml:"parallelism" envconfig:"PARALLELISM" validate:"min=0"`
	Boundary        string `yaml:"boundary" envconfig:"BOUNDARY" validate:"oneof=forward inside both"`
}

// TransformConfig contains the numeric constants used by the transformer
type TransformConfig struct {
	CLREpsilon   float64 `yaml:"clr_epsilon" envconfig:"CLR_EPSILON" validate:"gt=0"`
	BoxCoxOffset float64 `yaml:"boxcox_offset" envconfig:"BOXCOX_OFFSET" validate:"gte=0"`
}

// ViewerConfig contains HTTP viewer configuration
type ViewerConfig struct {
	Addr            string        `yaml:"addr" envconfig:"ADDR" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" validate:"gt=0"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" validate:"min=1"`
	PageSize        int           `yaml:"page_size" envconfig:"PAGE_SIZE" validate:"min=1"`
	MaxPageSize     int           `yaml:"max_page_size" envconfig:"MAX_PAGE_SIZE" validate:"min=1,gtefield=PageSize"`
}

// TelemetryConfig controls tracing and metrics export
type TelemetryConfig struct {
	Tracing     string `yaml:"tracing" envconfig:"TRACING" validate:"oneof=none stdout"`
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, an optional YAML file and
// TABPREP_* environment variables, in increasing order of precedence.
// An empty path searches the usual locations; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	configFile := path
	if configFile == "" {
		configFile = getConfigFilePath()
	} else if _, err := os.Stat(configFile); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configFile, err)
	}

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFilePath
	}
	return validator.New().Struct(c)
}

// getConfigFilePath returns the first config file found in the common locations
func getConfigFilePath() string {
	locations := []string{
		"tabprep.yaml",
		"configs/tabprep.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFilePath,
		},
		Imputer: ImputerConfig{
			Estimators:      DefaultEstimators,
			Seed:            DefaultRandomSeed,
			MinSamplesSplit: DefaultMinSamplesSplit,
			MinSamplesLeaf:  DefaultMinSamplesLeaf,
			Boundary:        DefaultBoundary,
		},
		Transform: TransformConfig{
			CLREpsilon:   DefaultCLREpsilon,
			BoxCoxOffset: DefaultBoxCoxOffset,
		},
		Viewer: ViewerConfig{
			Addr:            DefaultViewerAddr,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RateLimitRPS:    DefaultRateLimitRPS,
			RateLimitBurst:  DefaultRateLimitBurst,
			PageSize:        DefaultPageSize,
			MaxPageSize:     DefaultMaxPageSize,
		},
		Telemetry: TelemetryConfig{
			Tracing: "none",
		},
	}
}
