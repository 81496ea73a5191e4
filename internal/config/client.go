package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ClientConfig configures the punch terminal client.
type ClientConfig struct {
	// APIURL is the base URL of the chat/registration backend.
	APIURL string `toml:"api_url"`
	// SiteURL hosts /api/waitlist.
	SiteURL            string `toml:"site_url"`
	DataDir            string `toml:"data_dir"`
	RequestTimeoutSecs int    `toml:"request_timeout_seconds"`
	ReplyDelayMinMS    int    `toml:"reply_delay_min_ms"`
	ReplyDelayMaxMS    int    `toml:"reply_delay_max_ms"`
	Debug              bool   `toml:"debug"`
}

func LoadClient() (*ClientConfig, error) {
	cfg := defaultClientConfig()

	configPath := getEnv("PUNCH_CONFIG", filepath.Join(cfg.DataDir, "config.toml"))
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode client config file failed: %w", err)
		}
	}

	cfg.APIURL = getEnv("PUNCH_API_URL", cfg.APIURL)
	cfg.SiteURL = getEnv("PUNCH_SITE_URL", cfg.SiteURL)
	cfg.DataDir = getEnv("PUNCH_DATA_DIR", cfg.DataDir)
	cfg.RequestTimeoutSecs = getEnvAsInt("PUNCH_REQUEST_TIMEOUT_SECONDS", cfg.RequestTimeoutSecs)
	cfg.ReplyDelayMinMS = getEnvAsInt("PUNCH_REPLY_DELAY_MIN_MS", cfg.ReplyDelayMinMS)
	cfg.ReplyDelayMaxMS = getEnvAsInt("PUNCH_REPLY_DELAY_MAX_MS", cfg.ReplyDelayMaxMS)
	return cfg, nil
}

// DatabasePath is the SQLite file backing durable client storage.
func (c *ClientConfig) DatabasePath() string {
	return filepath.Join(c.DataDir, "punch.db")
}

func (c *ClientConfig) LogPath() string {
	return filepath.Join(c.DataDir, "punch.log")
}

func defaultClientConfig() *ClientConfig {
	dataDir := ".punch"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".punch")
	}
	return &ClientConfig{
		APIURL:             "http://localhost:8080",
		SiteURL:            "http://localhost:8080",
		DataDir:            dataDir,
		RequestTimeoutSecs: 60,
		ReplyDelayMinMS:    300,
		ReplyDelayMaxMS:    1000,
	}
}
