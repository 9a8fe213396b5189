package config

import (
	"time"

	"tabprep/pkg/contracts"
)

// Application constants
const (
	AppName    = "tabprep"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment override, e.g. TABPREP_LOGGING_LEVEL
	EnvPrefix = "TABPREP"

	// Imputer defaults. The forest hyperparameters are pinned so runs are reproducible.
	DefaultEstimators      = 100
	DefaultRandomSeed      = 42
	DefaultMinSamplesSplit = 2
	DefaultMinSamplesLeaf  = 1
	DefaultBoundary        = "forward"

	// Transformer defaults
	DefaultCLREpsilon   = 1e-10
	DefaultBoxCoxOffset = 1.0

	// Viewer defaults
	DefaultViewerAddr      = ":8090"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRateLimitRPS    = 50
	DefaultRateLimitBurst  = 100
	DefaultPageSize        = 100
	DefaultMaxPageSize     = 1000

	// Log Settings
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultLogOutput   = "console"
	DefaultLogFilePath = "logs/tabprep.log"

	// Output naming
	FilledSuffix      = "_filled"
	TransformedSuffix = "_transformed"
	CleanedPrefix     = "cleaned_"
)
