// Package config loads the service configuration from an optional YAML
// file with environment overrides. Every value has a working default; a
// bare binary only needs GEOCODE_EMAIL set before talking to the public
// Nominatim instance.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Geocode   GeocodeConfig   `mapstructure:"geocode"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	// SQLitePath is used unless URL points at Postgres.
	SQLitePath  string `mapstructure:"sqlite_path"`
	URL         string `mapstructure:"url"`
	RedisAddr   string `mapstructure:"redis_addr"`
	HubSeedPath string `mapstructure:"hub_seed_path"`
}

type GeocodeConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Email          string `mapstructure:"email"`
	UserAgent      string `mapstructure:"user_agent"`
	AcceptLanguage string `mapstructure:"accept_language"`
	CountryCode    string `mapstructure:"country_code"`
	DefaultCity    string `mapstructure:"default_city"`
	Country        string `mapstructure:"country"`

	MinIntervalMs       int `mapstructure:"min_interval_ms"`
	RetryBudget         int `mapstructure:"retry_budget"`
	ForwardBackoffMs    int `mapstructure:"forward_backoff_ms"`
	ReverseBackoffMs    int `mapstructure:"reverse_backoff_ms"`
	PerRequestTimeoutMs int `mapstructure:"per_request_timeout_ms"`
	OriginTimeoutMs     int `mapstructure:"origin_timeout_ms"`
	NegativeTTLMs       int `mapstructure:"negative_ttl_ms"`
	MaxCandidates       int `mapstructure:"max_candidates"`
	MaxStopsToGeocode   int `mapstructure:"max_stops_to_geocode"`
}

type OptimizerConfig struct {
	TwoOptPasses int     `mapstructure:"two_opt_passes"`
	Epsilon      float64 `mapstructure:"epsilon"`
}

func (g GeocodeConfig) MinInterval() time.Duration {
	return time.Duration(g.MinIntervalMs) * time.Millisecond
}
func (g GeocodeConfig) ForwardBackoff() time.Duration {
	return time.Duration(g.ForwardBackoffMs) * time.Millisecond
}
func (g GeocodeConfig) ReverseBackoff() time.Duration {
	return time.Duration(g.ReverseBackoffMs) * time.Millisecond
}
func (g GeocodeConfig) PerRequestTimeout() time.Duration {
	return time.Duration(g.PerRequestTimeoutMs) * time.Millisecond
}
func (g GeocodeConfig) OriginTimeout() time.Duration {
	return time.Duration(g.OriginTimeoutMs) * time.Millisecond
}
func (g GeocodeConfig) NegativeTTL() time.Duration {
	return time.Duration(g.NegativeTTLMs) * time.Millisecond
}

// Load reads config.yaml from the working directory when present, then
// applies environment overrides like SERVER_ADDR or GEOCODE_EMAIL.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("database.sqlite_path", "geo-dispatch.db")
	v.SetDefault("database.url", "")
	v.SetDefault("database.redis_addr", "")
	v.SetDefault("database.hub_seed_path", "hubs.json")

	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.email", "")
	v.SetDefault("geocode.user_agent", "geo-dispatch-service/1.0")
	v.SetDefault("geocode.accept_language", "vi-VN,vi;q=0.9,en;q=0.8")
	v.SetDefault("geocode.country_code", "vn")
	v.SetDefault("geocode.default_city", "Hồ Chí Minh")
	v.SetDefault("geocode.country", "Việt Nam")
	v.SetDefault("geocode.min_interval_ms", 1100)
	v.SetDefault("geocode.retry_budget", 1)
	v.SetDefault("geocode.forward_backoff_ms", 600)
	v.SetDefault("geocode.reverse_backoff_ms", 1200)
	v.SetDefault("geocode.per_request_timeout_ms", 3500)
	v.SetDefault("geocode.origin_timeout_ms", 5000)
	v.SetDefault("geocode.negative_ttl_ms", 600000)
	v.SetDefault("geocode.max_candidates", 3)
	v.SetDefault("geocode.max_stops_to_geocode", 8)

	v.SetDefault("optimizer.two_opt_passes", 40)
	v.SetDefault("optimizer.epsilon", 1e-9)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
