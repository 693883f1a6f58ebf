// Package config loads service settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string   `env:"DATABASE_URL,required,notEmpty"`
	ServiceToken   string   `env:"TROPHY_SERVICE_TOKEN,required,notEmpty"` // shared with the gateway and the review application
	Port           string   `env:"PORT" envDefault:"5300"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`

	// Review application sync; disabled when ReviewServiceURL is empty
	ReviewServiceURL string        `env:"REVIEW_SERVICE_URL"`
	SyncInterval     time.Duration `env:"SYNC_INTERVAL" envDefault:"1m"`

	BackfillInterval time.Duration `env:"BACKFILL_INTERVAL" envDefault:"10m"`
	BackfillWindow   time.Duration `env:"BACKFILL_WINDOW" envDefault:"24h"`

	// Icons
	StaticURL         string `env:"STATIC_URL" envDefault:"/static/"`
	IconDir           string `env:"ICON_DIR" envDefault:"./static"`
	R2AccountID       string `env:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret string `env:"R2_ACCESS_KEY_SECRET"`
	R2Bucket          string `env:"R2_BUCKET_NAME"`
	CDNBaseURL        string `env:"CDN_BASE_URL"`
}

// Load reads .env when present, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	for i, origin := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
	}
	return &cfg, nil
}

func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2Bucket != ""
}
