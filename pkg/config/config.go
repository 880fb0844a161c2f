package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath        = "config.yaml"
	defaultBackgroundDir     = "./assets/backgrounds"
	defaultOutputDir         = "./output"
	defaultCacheDir          = "./.cache"
	defaultGCSBackgroundDir  = "backgrounds"
	defaultResolution        = "1080x1920"
	defaultGroqModel         = "llama-3.3-70b-versatile"
	defaultDeepSeekModel     = "deepseek-chat"
	defaultElevenLabsModel   = "eleven_flash_v2_5"
	defaultElevenLabsSpeed   = 1.0
	defaultStability         = 0.5
	defaultSimilarity        = 0.5
	defaultPrivacyStatus     = "public"
	defaultTokenPath         = "./youtube_token.json"
	defaultCredentialSource  = "database"
	defaultCheckMinutes      = 5
	defaultRetryHours        = 2
	defaultMaxUploadAttempts = 5
	defaultQuotaCooldown     = 24
	defaultRetryBatchSize    = 50
)

type Config struct {
	DatabaseURL         string
	GroqAPIKey          string
	DeepSeekAPIKey      string
	ElevenLabsAPIKey    string
	YouTubeClientID     string
	YouTubeClientSecret string
	YouTubeTokenPath    string
	GCSBucket           string

	Groq       GroqConfig       `yaml:"groq"`
	DeepSeek   DeepSeekConfig   `yaml:"deepseek"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Video      VideoConfig      `yaml:"video"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
	GCS        GCSConfig        `yaml:"gcs"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Upload     UploadConfig     `yaml:"upload"`
}

type GroqConfig struct {
	Model string `yaml:"model"`
}

type DeepSeekConfig struct {
	Model string `yaml:"model"`
}

type ElevenLabsConfig struct {
	Model      string  `yaml:"model"`
	Speed      float64 `yaml:"speed"`
	Stability  float64 `yaml:"stability"`
	Similarity float64 `yaml:"similarity"`
}

type VideoConfig struct {
	BackgroundDir string `yaml:"background_dir"`
	OutputDir     string `yaml:"output_dir"`
	CacheDir      string `yaml:"cache_dir"`
	Resolution    string `yaml:"resolution"`
}

// GCSConfig switches the background clip source from the local directory to
// a bucket. The bucket name comes from GCS_BUCKET in the environment.
type GCSConfig struct {
	Enabled       bool   `yaml:"enabled"`
	BackgroundDir string `yaml:"background_dir"`
}

type YouTubeConfig struct {
	DefaultTags   []string `yaml:"default_tags"`
	PrivacyStatus string   `yaml:"privacy_status"`
}

// SchedulerConfig drives the resident mode. The due-check window always
// equals the check interval so a cron fire lands in exactly one tick.
type SchedulerConfig struct {
	CheckMinutes int `yaml:"check_minutes"`
	RetryHours   int `yaml:"retry_hours"`
}

type UploadConfig struct {
	ContentOnly        bool   `yaml:"content_only"`
	CredentialSource   string `yaml:"credential_source"` // "database" or "file"
	MaxAttempts        int    `yaml:"max_attempts"`
	QuotaCooldownHours int    `yaml:"quota_cooldown_hours"`
	RetryBatchSize     int    `yaml:"retry_batch_size"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		GroqAPIKey:          os.Getenv("GROQ_API_KEY"),
		DeepSeekAPIKey:      os.Getenv("DEEPSEEK_API_KEY"),
		ElevenLabsAPIKey:    os.Getenv("ELEVENLABS_API_KEY"),
		YouTubeClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		YouTubeTokenPath:    getEnvOrDefault("YOUTUBE_TOKEN_PATH", defaultTokenPath),
		GCSBucket:           os.Getenv("GCS_BUCKET"),
	}

	loadYAMLConfig(cfg)
	applyDefaults(cfg)

	return cfg
}

func loadYAMLConfig(cfg *Config) {
	data, err := os.ReadFile(defaultConfigPath)
	if err != nil {
		slog.Warn("No config.yaml found, using defaults")
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Error("Failed to parse config.yaml", "error", err)
	}
}

func applyDefaults(cfg *Config) {
	applyGroqDefaults(cfg)
	applyElevenLabsDefaults(cfg)
	applyVideoDefaults(cfg)
	applyYouTubeDefaults(cfg)
	applySchedulerDefaults(cfg)
	applyUploadDefaults(cfg)
}

func applyGroqDefaults(cfg *Config) {
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = defaultGroqModel
	}
	if cfg.DeepSeek.Model == "" {
		cfg.DeepSeek.Model = defaultDeepSeekModel
	}
}

func applyElevenLabsDefaults(cfg *Config) {
	if cfg.ElevenLabs.Model == "" {
		cfg.ElevenLabs.Model = defaultElevenLabsModel
	}
	if cfg.ElevenLabs.Speed == 0 {
		cfg.ElevenLabs.Speed = defaultElevenLabsSpeed
	}
	if cfg.ElevenLabs.Stability == 0 {
		cfg.ElevenLabs.Stability = defaultStability
	}
	if cfg.ElevenLabs.Similarity == 0 {
		cfg.ElevenLabs.Similarity = defaultSimilarity
	}
}

func applyVideoDefaults(cfg *Config) {
	if cfg.Video.BackgroundDir == "" {
		cfg.Video.BackgroundDir = defaultBackgroundDir
	}
	if cfg.Video.OutputDir == "" {
		cfg.Video.OutputDir = defaultOutputDir
	}
	if cfg.Video.CacheDir == "" {
		cfg.Video.CacheDir = defaultCacheDir
	}
	if cfg.Video.Resolution == "" {
		cfg.Video.Resolution = defaultResolution
	}
	if cfg.GCS.BackgroundDir == "" {
		cfg.GCS.BackgroundDir = defaultGCSBackgroundDir
	}
}

func applyYouTubeDefaults(cfg *Config) {
	if len(cfg.YouTube.DefaultTags) == 0 {
		cfg.YouTube.DefaultTags = []string{"shorts", "facts"}
	}
	if cfg.YouTube.PrivacyStatus == "" {
		cfg.YouTube.PrivacyStatus = defaultPrivacyStatus
	}
}

func applySchedulerDefaults(cfg *Config) {
	if cfg.Scheduler.CheckMinutes == 0 {
		cfg.Scheduler.CheckMinutes = defaultCheckMinutes
	}
	if cfg.Scheduler.RetryHours == 0 {
		cfg.Scheduler.RetryHours = defaultRetryHours
	}
}

func applyUploadDefaults(cfg *Config) {
	if cfg.Upload.CredentialSource == "" {
		cfg.Upload.CredentialSource = defaultCredentialSource
	}
	if cfg.Upload.MaxAttempts == 0 {
		cfg.Upload.MaxAttempts = defaultMaxUploadAttempts
	}
	if cfg.Upload.QuotaCooldownHours == 0 {
		cfg.Upload.QuotaCooldownHours = defaultQuotaCooldown
	}
	if cfg.Upload.RetryBatchSize == 0 {
		cfg.Upload.RetryBatchSize = defaultRetryBatchSize
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
