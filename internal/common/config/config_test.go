// internal/common/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	cfg := &Config{}
	cfg.STT.Whisper.Enabled = true
	cfg.STT.Whisper.APIKey = "sk-test"
	cfg.Judge.APIKey = "sk-test"
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, []string{"wav", "mp3", "m4a", "flac"}, cfg.Audio.SupportedFormats)
	assert.Equal(t, 60000, cfg.Praat.Timeout)
	assert.Equal(t, "whisper-1", cfg.STT.Whisper.Model)
	assert.Equal(t, "cmn-Hans-CN", cfg.STT.Google.LanguageCode)
	assert.Equal(t, 16000, cfg.STT.Google.SampleRateHertz)
	assert.Equal(t, 3600, cfg.Cache.TTLSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid config passes",
			mutate: func(cfg *Config) {},
		},
		{
			name: "no backend enabled",
			mutate: func(cfg *Config) {
				cfg.STT.Whisper.Enabled = false
			},
			wantErr: "at least one stt backend",
		},
		{
			name: "enabled whisper without key",
			mutate: func(cfg *Config) {
				cfg.STT.Whisper.APIKey = ""
			},
			wantErr: "stt.whisper.api_key",
		},
		{
			name: "enabled gemini without key",
			mutate: func(cfg *Config) {
				cfg.STT.Gemini.Enabled = true
			},
			wantErr: "stt.gemini.api_key",
		},
		{
			name: "missing judge key",
			mutate: func(cfg *Config) {
				cfg.Judge.APIKey = ""
			},
			wantErr: "judge.api_key",
		},
		{
			name: "cache enabled without address",
			mutate: func(cfg *Config) {
				cfg.Cache.Enabled = true
			},
			wantErr: "cache.redis.address",
		},
		{
			name: "temperature out of range",
			mutate: func(cfg *Config) {
				cfg.Judge.Temperature = 2.5
			},
			wantErr: "judge.temperature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  name: hskk-assessor-test
  environment: test
stt:
  whisper:
    enabled: true
    api_key: sk-whisper
judge:
  api_key: ${TEST_JUDGE_KEY}
  model: gpt-4o-mini
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("TEST_JUDGE_KEY", "sk-judge")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "hskk-assessor-test", cfg.App.Name)
	assert.Equal(t, "sk-judge", cfg.Judge.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Judge.Model)
	// defaults filled in
	assert.Equal(t, "https://api.openai.com/v1", cfg.STT.Whisper.BaseURL)
	assert.Equal(t, 90000, cfg.Judge.Timeout)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
