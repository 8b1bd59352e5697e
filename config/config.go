package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Port        int    `toml:"port"`
	FrontendURL string `toml:"frontend_url"`
}

type DatabaseConfig struct {
	Filename    string `toml:"filename"`
	JournalMode string `toml:"journal_mode"`
}

type IMAPConfig struct {
	Server string `toml:"server"`
	Port   int    `toml:"port"`
}

type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

type JWTConfig struct {
	Secret     string `toml:"secret"`      // For JWT signing
	ExpiryDays int    `toml:"expiry_days"` // Session token lifetime
}

type RateLimitConfig struct {
	Requests      int `toml:"requests"`
	WindowSeconds int `toml:"window_seconds"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	IMAP      IMAPConfig      `toml:"imap"`
	Google    GoogleConfig    `toml:"google"`
	JWT       JWTConfig       `toml:"jwt"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
}

func LoadConfig(filepath string) (*Config, error) {
	var config Config

	// Set default values
	config.Server.Port = 5000
	config.Server.FrontendURL = "http://localhost:5173"
	config.Database.Filename = "data/mailview.sqlite"
	config.Database.JournalMode = "wal"
	config.IMAP.Server = "imap.gmail.com"
	config.IMAP.Port = 993
	config.JWT.ExpiryDays = 7
	config.RateLimit.Requests = 100
	config.RateLimit.WindowSeconds = 900

	_, err := toml.DecodeFile(filepath, &config)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that the parts without safe defaults are present.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}

	if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
		return fmt.Errorf("google.client_id and google.client_secret are required")
	}

	if c.Google.RedirectURI == "" {
		c.Google.RedirectURI = fmt.Sprintf("http://localhost:%d/api/auth/google/callback", c.Server.Port)
	}

	return nil
}
