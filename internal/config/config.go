package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	JWTSecret           string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	SummaryCacheTTL     time.Duration
	FanOutLimit         int
	AvatarMaxSizeMB     int
	SearchRateLimit     int
	SearchRateWindow    time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and an
// optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TEACHME")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "TeachMe API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "3001")
	v.SetDefault("cloudinary.folder", "teachme/avatars")
	v.SetDefault("summary.cache_ttl", "5m")
	v.SetDefault("fan_out_limit", 8)
	v.SetDefault("avatar_max_size_mb", 5)
	v.SetDefault("search.rate_limit", 30)
	v.SetDefault("search.rate_window", "1m")

	ttl, err := time.ParseDuration(v.GetString("summary.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid summary cache ttl: %w", err)
	}

	window, err := time.ParseDuration(v.GetString("search.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid search rate window: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		CloudinaryCloudName: v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:    v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret: v.GetString("cloudinary.api_secret"),
		CloudinaryFolder:    v.GetString("cloudinary.folder"),
		SummaryCacheTTL:     ttl,
		FanOutLimit:         v.GetInt("fan_out_limit"),
		AvatarMaxSizeMB:     v.GetInt("avatar_max_size_mb"),
		SearchRateLimit:     v.GetInt("search.rate_limit"),
		SearchRateWindow:    window,
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.FanOutLimit <= 0 {
		cfg.FanOutLimit = 8
	}

	if cfg.AvatarMaxSizeMB <= 0 {
		cfg.AvatarMaxSizeMB = 5
	}

	return cfg, nil
}
