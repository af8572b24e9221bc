package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Auth        AuthConfig
	AWS         AWSConfig
	Transcriber TranscriberConfig
	LLM         LLMConfig
	Audio       AudioConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	MaxUploadMB        int
	UploadDir          string // temp directory for uploads; empty = os.TempDir()
}

// DatabaseConfig holds session store connection settings.
type DatabaseConfig struct {
	Driver     string // "postgres" (default) or "sqlite"
	URL        string // if set, used as-is (e.g. postgres://localhost:5432/speechcoach?sslmode=disable)
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// RedisConfig holds Redis connection settings. Empty Addr disables the stats cache and progress replay.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	StatsTTLSeconds int
}

// AuthConfig holds settings for verifying access tokens issued by the identity provider.
type AuthConfig struct {
	JWTSecret string
	Audience  string
}

// AWSConfig holds AWS credentials and the audio bucket.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	AudioBucket     string
	PublicBaseURL   string // optional CDN/base URL; empty = virtual-hosted S3 URL
}

// TranscriberConfig selects and configures the speech-to-text backend.
type TranscriberConfig struct {
	Backend        string // "openai" or "whisperx"
	APIKey         string
	BaseURL        string
	Model          string
	Language       string
	WhisperXBin    string
	TimeoutSeconds int
}

// LLMConfig configures the chat-completions provider used for coaching feedback.
type LLMConfig struct {
	APIKey             string
	BaseURL            string
	Model              string
	Temperature        float64
	MaxTokens          int
	SuggestionMaxToken int
	TimeoutSeconds     int
}

// AudioConfig holds decoding settings.
type AudioConfig struct {
	FFmpegBin  string
	SampleRate int
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// MaxUploadBytes returns the upload limit in bytes.
func (c ServerConfig) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 25 << 20
	}
	return int64(c.MaxUploadMB) << 20
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8000"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 60),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 300),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			MaxUploadMB:        getEnvInt("MAX_UPLOAD_MB", 25),
			UploadDir:          getEnv("UPLOAD_DIR", ""),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			URL:        getEnv("DATABASE_URL", ""),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "speechcoach"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "speechcoach.sqlite"),
		},
		Redis: RedisConfig{
			Addr:            getEnv("REDIS_ADDR", ""),
			Password:        getEnv("REDIS_PASSWORD", ""),
			DB:              getEnvInt("REDIS_DB", 0),
			StatsTTLSeconds: getEnvInt("STATS_CACHE_TTL_SEC", 300),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
			Audience:  getEnv("SUPABASE_JWT_AUDIENCE", "authenticated"),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			AudioBucket:     getEnv("AWS_S3_AUDIO_BUCKET", "audio-recordings"),
			PublicBaseURL:   getEnv("AWS_S3_PUBLIC_BASE_URL", ""),
		},
		Transcriber: TranscriberConfig{
			Backend:        getEnv("TRANSCRIBER", "openai"),
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("TRANSCRIBER_BASE_URL", "https://api.openai.com/v1"),
			Model:          getEnv("TRANSCRIBER_MODEL", "whisper-1"),
			Language:       getEnv("TRANSCRIBER_LANGUAGE", "en"),
			WhisperXBin:    getEnv("WHISPERX_BIN", "whisperx"),
			TimeoutSeconds: getEnvInt("TRANSCRIBER_TIMEOUT_SEC", 120),
		},
		LLM: LLMConfig{
			APIKey:             getEnv("TOGETHER_API_KEY", ""),
			BaseURL:            getEnv("LLM_BASE_URL", "https://api.together.xyz/v1"),
			Model:              getEnv("LLM_MODEL", "meta-llama/Meta-Llama-3.1-8B-Instruct-Turbo"),
			Temperature:        getEnvFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:          getEnvInt("LLM_MAX_TOKENS", 500),
			SuggestionMaxToken: getEnvInt("LLM_SUGGESTION_MAX_TOKENS", 400),
			TimeoutSeconds:     getEnvInt("LLM_TIMEOUT_SEC", 30),
		},
		Audio: AudioConfig{
			FFmpegBin:  getEnv("FFMPEG_BIN", "ffmpeg"),
			SampleRate: getEnvInt("AUDIO_SAMPLE_RATE", 16000),
		},
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Transcriber.Backend != "openai" && cfg.Transcriber.Backend != "whisperx" {
		return nil, fmt.Errorf("unsupported TRANSCRIBER %q", cfg.Transcriber.Backend)
	}
	if cfg.Audio.SampleRate <= 0 {
		return nil, fmt.Errorf("AUDIO_SAMPLE_RATE must be positive")
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// SplitTrim splits s on sep and drops empty, whitespace-only parts.
func SplitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
