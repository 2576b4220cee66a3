package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// DatabaseConfig holds the database connection information.
type DatabaseConfig struct {
	Type string `yaml:"type"`
	DSN  string `yaml:"dsn"`
}

// RedisConfig holds the connection settings for the L2 cache tier. An empty
// URL disables the Redis tier and the cache runs in-memory only.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// AppConfig holds the global service switch. When disabled, every gateway
// method is rejected without touching credentials or cache.
type AppConfig struct {
	Enabled bool `yaml:"enabled"`
}

// QuotaConfig holds credential and proxy pool settings.
type QuotaConfig struct {
	PerProxyLimit int `yaml:"per_proxy_limit"`
}

// FilterConfig holds content filtering settings.
type FilterConfig struct {
	BlockedLanguage string `yaml:"blocked_language"`
}

// UpstreamConfig holds YouTube Data API request settings.
type UpstreamConfig struct {
	Region         string `yaml:"region"`
	Language       string `yaml:"language"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CacheDays holds the TTL, in days, for every cache namespace. The value in
// effect at write time is baked into the entry; changing it never shortens or
// extends entries already written.
type CacheDays struct {
	Search              int `yaml:"search"`
	Categories          int `yaml:"categories"`
	Video               int `yaml:"video"`
	CategoryVideos      int `yaml:"category_videos"`
	ChannelVideos       int `yaml:"channel_videos"`
	PlaylistVideos      int `yaml:"playlist_videos"`
	Comments            int `yaml:"comments"`
	Trending            int `yaml:"trending"`
	CategoriesWithVideo int `yaml:"categories_with_videos"`
}

// Config holds the configuration for the gateway.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	App      AppConfig      `yaml:"app"`
	Quota    QuotaConfig    `yaml:"quota"`
	Filter   FilterConfig   `yaml:"filter"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Cache    CacheDays      `yaml:"cache_days"`
	Port     int            `yaml:"port"`
	Debug    bool           `yaml:"debug"`
}

// LoadConfig reads and parses the configuration file. It returns the config
// and a potential warning message about defaulted values.
var LoadConfig = func(path string) (*Config, string, error) {
	var config Config
	var warning string

	data, err := os.ReadFile(path)
	if err == nil {
		err = yaml.Unmarshal(data, &config)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("failed to read config file: %w", err)
	}
	// If file does not exist, we continue with an empty config and rely on
	// environment variables.

	// Set default values
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Quota.PerProxyLimit == 0 {
		config.Quota.PerProxyLimit = 1
		warning = "quota.per_proxy_limit not set, using default value of 1"
	}
	if config.Filter.BlockedLanguage == "" {
		config.Filter.BlockedLanguage = "uk"
	}
	if config.Upstream.Region == "" {
		config.Upstream.Region = "RU"
	}
	if config.Upstream.Language == "" {
		config.Upstream.Language = "ru"
	}
	if config.Upstream.TimeoutSeconds == 0 {
		config.Upstream.TimeoutSeconds = 15
	}
	applyCacheDefaults(&config.Cache)

	// Override with environment variables if they exist
	if dsn := os.Getenv("GOTUBE_DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}
	if dbType := os.Getenv("GOTUBE_DATABASE_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if redisURL := os.Getenv("GOTUBE_REDIS_URL"); redisURL != "" {
		config.Redis.URL = redisURL
	}
	if port := os.Getenv("GOTUBE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Port = p
		}
	}
	if enabled := os.Getenv("GOTUBE_APP_ENABLED"); enabled != "" {
		config.App.Enabled = (enabled == "true")
	}
	if debug := os.Getenv("GOTUBE_DEBUG"); debug != "" {
		config.Debug = (debug == "true")
	}

	// Final validation after overrides
	if config.Database.Type == "" || config.Database.DSN == "" {
		return nil, "", fmt.Errorf("database type and dsn must be configured in config.yaml or via environment variables")
	}

	return &config, warning, nil
}

// applyCacheDefaults fills in any namespace TTL left at zero.
func applyCacheDefaults(c *CacheDays) {
	defaults := []struct {
		field *int
		days  int
	}{
		{&c.Search, 1},
		{&c.Categories, 7},
		{&c.Video, 1},
		{&c.CategoryVideos, 1},
		{&c.ChannelVideos, 1},
		{&c.PlaylistVideos, 1},
		{&c.Comments, 1},
		{&c.Trending, 1},
		{&c.CategoriesWithVideo, 1},
	}
	for _, d := range defaults {
		if *d.field == 0 {
			*d.field = d.days
		}
	}
}
