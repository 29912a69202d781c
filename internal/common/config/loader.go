// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like JUDGE_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, config.<env>.yaml
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from multiple locations so binaries and tests can run
// from any directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills secrets from well-known env vars when the YAML
// left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Judge.APIKey == "" {
		if val := os.Getenv("OPENAI_API_KEY"); val != "" {
			cfg.Judge.APIKey = val
		}
	}
	if cfg.STT.Whisper.APIKey == "" {
		if val := os.Getenv("OPENAI_API_KEY"); val != "" {
			cfg.STT.Whisper.APIKey = val
		}
	}
	if cfg.STT.Gemini.APIKey == "" {
		if val := os.Getenv("GEMINI_API_KEY"); val != "" {
			cfg.STT.Gemini.APIKey = val
		}
	}
	if cfg.STT.Google.CredentialsFile == "" {
		if val := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); val != "" {
			cfg.STT.Google.CredentialsFile = val
		}
	}
	if cfg.Cache.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Cache.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "hskk-assessor"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.MetricsAddress == "" {
		cfg.Server.MetricsAddress = ":9090"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 32 << 20
	}

	if len(cfg.Audio.SupportedFormats) == 0 {
		cfg.Audio.SupportedFormats = []string{"wav", "mp3", "m4a", "flac"}
	}

	if cfg.Praat.Container == "" {
		cfg.Praat.Container = "praat-engine"
	}
	if cfg.Praat.ScriptPath == "" {
		cfg.Praat.ScriptPath = "/scripts/extract_features.praat"
	}
	if cfg.Praat.WorkDir == "" {
		cfg.Praat.WorkDir = os.TempDir()
	}
	if cfg.Praat.Timeout == 0 {
		cfg.Praat.Timeout = 60000
	}

	if cfg.STT.Whisper.BaseURL == "" {
		cfg.STT.Whisper.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.STT.Whisper.Model == "" {
		cfg.STT.Whisper.Model = "whisper-1"
	}
	if cfg.STT.Whisper.Timeout == 0 {
		cfg.STT.Whisper.Timeout = 60000
	}
	if cfg.STT.Google.LanguageCode == "" {
		cfg.STT.Google.LanguageCode = "cmn-Hans-CN"
	}
	if cfg.STT.Google.SampleRateHertz == 0 {
		cfg.STT.Google.SampleRateHertz = 16000
	}
	if cfg.STT.Google.Timeout == 0 {
		cfg.STT.Google.Timeout = 60000
	}
	if cfg.STT.Gemini.Model == "" {
		cfg.STT.Gemini.Model = "gemini-1.5-flash"
	}
	if cfg.STT.Gemini.Timeout == 0 {
		cfg.STT.Gemini.Timeout = 60000
	}

	if cfg.Judge.BaseURL == "" {
		cfg.Judge.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Judge.Model == "" {
		cfg.Judge.Model = "gpt-4o"
	}
	if cfg.Judge.Timeout == 0 {
		cfg.Judge.Timeout = 90000
	}
	if cfg.Judge.MaxRetries == 0 {
		cfg.Judge.MaxRetries = 2
	}

	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 3600
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if !cfg.STT.Whisper.Enabled && !cfg.STT.Google.Enabled && !cfg.STT.Gemini.Enabled {
		return fmt.Errorf("at least one stt backend must be enabled")
	}

	if cfg.STT.Whisper.Enabled && cfg.STT.Whisper.APIKey == "" {
		return fmt.Errorf("stt.whisper.api_key is required when whisper is enabled")
	}
	if cfg.STT.Gemini.Enabled && cfg.STT.Gemini.APIKey == "" {
		return fmt.Errorf("stt.gemini.api_key is required when gemini is enabled")
	}

	if cfg.Judge.APIKey == "" {
		return fmt.Errorf("judge.api_key is required")
	}
	if cfg.Judge.Temperature < 0 || cfg.Judge.Temperature > 2 {
		return fmt.Errorf("judge.temperature must be between 0 and 2")
	}

	if cfg.Cache.Enabled && cfg.Cache.Redis.Address == "" {
		return fmt.Errorf("cache.redis.address is required when the cache is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
