// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Audio   AudioConfig   `mapstructure:"audio"`
	Praat   PraatConfig   `mapstructure:"praat"`
	STT     STTConfig     `mapstructure:"stt"`
	Judge   JudgeConfig   `mapstructure:"judge"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	MetricsAddress  string `mapstructure:"metrics_address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
	MaxUploadBytes  int64  `mapstructure:"max_upload_bytes"`
}

// AudioConfig bounds what the ingestion edge accepts.
type AudioConfig struct {
	SupportedFormats []string `mapstructure:"supported_formats"`
}

// PraatConfig drives the acoustic extraction adapter. The engine runs inside
// a sidecar container and is invoked through docker exec.
type PraatConfig struct {
	Container  string `mapstructure:"container"`
	ScriptPath string `mapstructure:"script_path"`
	WorkDir    string `mapstructure:"work_dir"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
}

type STTConfig struct {
	Whisper WhisperConfig `mapstructure:"whisper"`
	Google  GoogleConfig  `mapstructure:"google"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
}

type WhisperConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type GoogleConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	CredentialsFile string `mapstructure:"credentials_file"`
	LanguageCode    string `mapstructure:"language_code"`
	SampleRateHertz int    `mapstructure:"sample_rate_hertz"`
	Timeout         int    `mapstructure:"timeout"` // milliseconds
}

type GeminiConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// JudgeConfig holds settings for the LLM scoring call.
type JudgeConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxRetries  int     `mapstructure:"max_retries"`
}

// CacheConfig holds settings for the idempotent result cache.
type CacheConfig struct {
	Enabled    bool        `mapstructure:"enabled"`
	TTLSeconds int         `mapstructure:"ttl_seconds"`
	Redis      RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
