package common

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Render   RenderConfig
	Pipeline PipelineConfig
}

// ServerConfig holds HTTP transport configuration
type ServerConfig struct {
	Addr           string
	LogLevel       string
	GinMode        string
	AllowedOrigins []string
}

// OCRConfig holds text-extraction configuration
type OCRConfig struct {
	Engine        string // "gosseract" | "cli"
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	DPI           int
	MaxPages      int
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// RenderConfig holds voucher rendering configuration
type RenderConfig struct {
	AssetDir  string // contains templates/voucher_template.html and optional logo.png
	Converter string // "weasyprint" | "wkhtmltopdf"
	Binary    string // converter binary override
}

// PipelineConfig holds per-stage limits
type PipelineConfig struct {
	StageTimeout time.Duration
}

// LoadConfig loads configuration from the environment, after merging a .env
// file when one is present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("config.dotenv.load_failed", "error", err)
	}
	return &Config{
		Server: ServerConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnvAsList("CORS_ORIGINS"),
		},
		OCR: OCRConfig{
			Engine:        getEnv("OCR_ENGINE", "gosseract"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		LLM: LLMConfig{
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Timeout: getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Render: RenderConfig{
			AssetDir:  getEnv("ASSET_DIR", "."),
			Converter: getEnv("PDF_CONVERTER", "weasyprint"),
			Binary:    getEnv("PDF_CONVERTER_BIN", ""),
		},
		Pipeline: PipelineConfig{
			StageTimeout: getEnvAsDuration("PIPELINE_STAGE_TIMEOUT", 90*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks settings that would fail every run. A missing API key is
// not checked here: it is resolved per normalizer invocation.
func (c *Config) Validate() error {
	switch c.OCR.Engine {
	case "gosseract", "cli":
	default:
		return NewAppError(CodeConfig, "OCR_ENGINE must be gosseract or cli", ErrMissingConfig)
	}
	switch c.Render.Converter {
	case "weasyprint", "wkhtmltopdf":
	default:
		return NewAppError(CodeConfig, "PDF_CONVERTER must be weasyprint or wkhtmltopdf", ErrMissingConfig)
	}
	if c.Render.AssetDir == "" {
		return NewAppError(CodeConfig, "ASSET_DIR is required", ErrMissingConfig)
	}
	return nil
}

// ParseLogLevel maps LOG_LEVEL values onto slog levels.
func ParseLogLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
