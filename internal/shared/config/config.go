package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// MaxUploadBytes is the ceiling for the ticket image.
const MaxUploadBytes = 5 << 20

// Config holds application configuration.
type Config struct {
	Port            string   `env:"PORT" envDefault:"3001"`
	Env             string   `env:"ENV" envDefault:"dev"`
	CORSAllowOrigin []string `env:"CORS_ORIGIN" envSeparator:"," envDefault:"http://localhost:5173"`
	LogLevel        string   `env:"LOG_LEVEL" envDefault:"info"`

	UploadsDir     string `env:"UPLOADS_DIR" envDefault:"uploads"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	GoogleAIAPIKey    string        `env:"GOOGLE_AI_API_KEY,required,notEmpty"`
	GenerationModel   string        `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"90s"`

	VisionKeyPath         string        `env:"GOOGLE_VISION_KEY_PATH"`
	VisionCredentialsJSON string        `env:"GOOGLE_VISION_CREDENTIALS"`
	OCRTimeout            time.Duration `env:"OCR_TIMEOUT" envDefault:"30s"`

	// Set when the Vision key file was written from VisionCredentialsJSON.
	VisionKeyIsTemp bool

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"180s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	RateLimitPerMinute float64 `env:"RATE_LIMIT_DESCARGO_PER_MINUTE" envDefault:"6"`
	RateLimitBurst     int     `env:"RATE_LIMIT_DESCARGO_BURST" envDefault:"3"`
}

// Load reads configuration from environment variables and materializes the
// Vision credentials file when only its content was provided.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	cfg, err := Parse()
	if err != nil {
		return Config{}, err
	}
	if cfg.VisionKeyPath == "" {
		path, err := MaterializeCredentials(os.TempDir(), cfg.VisionCredentialsJSON)
		if err != nil {
			return Config{}, err
		}
		cfg.VisionKeyPath = path
		cfg.VisionKeyIsTemp = true
	}
	return cfg, nil
}

// Parse reads and validates the environment without touching the filesystem.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Env = normalizeEnv(cfg.Env)
	cfg.CORSAllowOrigin = trimAll(cfg.CORSAllowOrigin)
	cfg.VisionKeyPath = strings.TrimSpace(cfg.VisionKeyPath)
	cfg.VisionCredentialsJSON = strings.TrimSpace(cfg.VisionCredentialsJSON)

	if cfg.VisionKeyPath == "" && cfg.VisionCredentialsJSON == "" {
		return Config{}, errors.New("GOOGLE_VISION_KEY_PATH or GOOGLE_VISION_CREDENTIALS is required")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = MaxUploadBytes
	}
	return cfg, nil
}

// MaterializeCredentials writes the service-account JSON to a private key file
// under dir and returns its path.
func MaterializeCredentials(dir, content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("vision credentials are empty")
	}
	f, err := os.CreateTemp(dir, "vision-key-*.json")
	if err != nil {
		return "", fmt.Errorf("create vision key file: %w", err)
	}
	defer f.Close()
	if err := f.Chmod(0o600); err != nil {
		return "", fmt.Errorf("chmod vision key file: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		return "", fmt.Errorf("write vision key file: %w", err)
	}
	return f.Name(), nil
}

// IsDevLike reports whether the environment is a local one.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
