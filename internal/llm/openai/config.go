package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Config for the OpenAI client.
type Config struct {
	APIKey  string        // if empty, resolved from env OPENAI_API_KEY on every call
	BaseURL string        // default https://api.openai.com/v1
	Model   string        // default "gpt-4o-mini"
	Timeout time.Duration // http client timeout
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
	getenv     func(string) string
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
		getenv:     os.Getenv,
	}
}

// apiKey resolves the credential for one invocation: explicit config first,
// then the OPENAI_API_KEY environment variable.
func (c *Client) apiKey() string {
	if c.cfg.APIKey != "" {
		return c.cfg.APIKey
	}
	return c.getenv("OPENAI_API_KEY")
}

// APIKeyConfigured reports whether a credential is currently available.
func (c *Client) APIKeyConfigured() bool {
	return c.apiKey() != ""
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}
