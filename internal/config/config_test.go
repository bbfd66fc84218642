package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "yearly", cfg.Dataset.Variant)
	assert.NotEmpty(t, cfg.Dataset.Source)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Security.RateLimit.Enabled)

	require.NoError(t, cfg.validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "missing source",
			mutate:  func(c *Config) { c.Dataset.Source = "" },
			wantErr: "dataset source",
		},
		{
			name:    "unknown variant",
			mutate:  func(c *Config) { c.Dataset.Variant = "weekly" },
			wantErr: "dataset variant",
		},
		{
			name:    "zero read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "read timeout",
		},
		{
			name:    "zero upload limit",
			mutate:  func(c *Config) { c.Dataset.MaxUploadBytes = 0 },
			wantErr: "upload bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateFillsLogFilePath(t *testing.T) {
	cfg := Default()
	cfg.Logging.FilePath = ""
	require.NoError(t, cfg.validate())
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CLINIC_SERVER_PORT", "9191")
	t.Setenv("CLINIC_DATASET_VARIANT", "monthly")
	t.Setenv("CLINIC_DATASET_SOURCE", "testdata/monthly.csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "monthly", cfg.Dataset.Variant)
	assert.Equal(t, "testdata/monthly.csv", cfg.Dataset.Source)
}
