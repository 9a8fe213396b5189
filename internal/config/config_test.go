package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tabprep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultEstimators, cfg.Imputer.Estimators)
	assert.Equal(t, int64(DefaultRandomSeed), cfg.Imputer.Seed)
	assert.Equal(t, "forward", cfg.Imputer.Boundary)
	assert.Equal(t, 1e-10, cfg.Transform.CLREpsilon)
	assert.Equal(t, 1.0, cfg.Transform.BoxCoxOffset)
	assert.Equal(t, ":8090", cfg.Viewer.Addr)
	assert.Equal(t, "none", cfg.Telemetry.Tracing)
	assert.Equal(t, "console", cfg.Logging.Output)
}

func TestLoad_FileOverlay(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: debug
imputer:
  estimators: 25
  boundary: inside
viewer:
  read_timeout: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 25, cfg.Imputer.Estimators)
	assert.Equal(t, "inside", cfg.Imputer.Boundary)
	assert.Equal(t, 5*time.Second, cfg.Viewer.ReadTimeout)
	// untouched values keep their defaults
	assert.Equal(t, int64(DefaultRandomSeed), cfg.Imputer.Seed)
	assert.Equal(t, DefaultWriteTimeout, cfg.Viewer.WriteTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "imputer:\n  estimators: 25\n")
	t.Setenv("TABPREP_IMPUTER_ESTIMATORS", "7")
	t.Setenv("TABPREP_IMPUTER_SEED", "1234")
	t.Setenv("TABPREP_VIEWER_ADDR", "127.0.0.1:9999")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Imputer.Estimators)
	assert.Equal(t, int64(1234), cfg.Imputer.Seed)
	assert.Equal(t, "127.0.0.1:9999", cfg.Viewer.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "zero estimators", yaml: "imputer:\n  estimators: 0\n"},
		{name: "unknown boundary", yaml: "imputer:\n  boundary: backward\n"},
		{name: "bad log level", env: map[string]string{"TABPREP_LOGGING_LEVEL": "loud"}},
		{name: "non-positive epsilon", yaml: "transform:\n  clr_epsilon: 0\n"},
		{name: "unknown tracing exporter", yaml: "telemetry:\n  tracing: otlp\n"},
		{name: "page size above max", yaml: "viewer:\n  page_size: 50\n  max_page_size: 10\n"},
		{name: "malformed yaml", yaml: "imputer: [\n"},
		{name: "malformed env", env: map[string]string{"TABPREP_IMPUTER_ESTIMATORS": "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeConfigFile(t, tt.yaml)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_FillsLogFilePath(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, DefaultLogFilePath, cfg.Logging.FilePath)
}
