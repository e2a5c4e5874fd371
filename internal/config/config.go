// Package config loads application configuration for the API server and worker.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds configuration for all FleetDispatch binaries.
type Config struct {
	Env          string `mapstructure:"APP_ENV"`
	Port         string `mapstructure:"APP_PORT"`
	RequireTLS   bool   `mapstructure:"REQUIRE_TLS"`
	OTelEnabled  bool   `mapstructure:"OTEL_ENABLED"`
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	Database Database `mapstructure:",squash"`
	Redis    Redis    `mapstructure:",squash"`
	Auth     Auth     `mapstructure:",squash"`
	Geocode  Geocode  `mapstructure:",squash"`
	Routing  Routing  `mapstructure:",squash"`
	Planner  Planner  `mapstructure:",squash"`
	Events   Events   `mapstructure:",squash"`
	Email    Email    `mapstructure:",squash"`
}

// Database holds PostgreSQL connection settings.
type Database struct {
	Host            string        `mapstructure:"DB_HOST"`
	Port            int           `mapstructure:"DB_PORT"`
	User            string        `mapstructure:"DB_USER"`
	Password        string        `mapstructure:"DB_PASSWORD"`
	Name            string        `mapstructure:"DB_NAME"`
	SSLMode         string        `mapstructure:"DB_SSL_MODE"`
	MaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
}

// Redis holds settings for the optional geocode result cache.
type Redis struct {
	Addr     string `mapstructure:"REDIS_ADDR"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

// Auth holds token signing settings.
type Auth struct {
	SigningKey string `mapstructure:"JWT_SIGNING_KEY"`
	Issuer     string `mapstructure:"JWT_ISSUER"`
	Audience   string `mapstructure:"JWT_AUDIENCE"`
}

// Geocode holds geocoding provider settings.
type Geocode struct {
	BaseURL   string        `mapstructure:"NOMINATIM_BASE_URL"`
	UserAgent string        `mapstructure:"NOMINATIM_USER_AGENT"`
	CacheTTL  time.Duration `mapstructure:"GEOCODE_CACHE_TTL"`
}

// Routing holds routing provider settings. Provider is "osrm" or "googlemaps".
type Routing struct {
	Provider     string `mapstructure:"ROUTING_PROVIDER"`
	OSRMBaseURL  string `mapstructure:"OSRM_BASE_URL"`
	GoogleAPIKey string `mapstructure:"GOOGLE_MAPS_API_KEY"`
}

// Planner holds route-planning draft settings.
type Planner struct {
	DraftTTL time.Duration `mapstructure:"DRAFT_TTL"`
}

// Events holds Pub/Sub settings for the event pipeline.
type Events struct {
	ProjectID    string `mapstructure:"PUBSUB_PROJECT_ID"`
	Topic        string `mapstructure:"PUBSUB_TOPIC"`
	Subscription string `mapstructure:"PUBSUB_SUBSCRIPTION"`
}

// Email holds SES settings for worker notification emails.
type Email struct {
	Enabled   bool   `mapstructure:"EMAIL_ENABLED"`
	Region    string `mapstructure:"EMAIL_REGION"`
	FromEmail string `mapstructure:"EMAIL_FROM"`
}

// Load reads configuration from the environment, with optional overrides from
// an app.env file in the given directory.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the environment is authoritative.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("REQUIRE_TLS", false)
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "fleetdispatch")
	v.SetDefault("DB_PASSWORD", "localdev")
	v.SetDefault("DB_NAME", "fleetdispatch")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SIGNING_KEY", "")
	v.SetDefault("JWT_ISSUER", "https://api.fleetdispatch.io")
	v.SetDefault("JWT_AUDIENCE", "fleetdispatch-api")

	v.SetDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("NOMINATIM_USER_AGENT", "fleetdispatch")
	v.SetDefault("GEOCODE_CACHE_TTL", "10m")

	v.SetDefault("ROUTING_PROVIDER", "osrm")
	v.SetDefault("OSRM_BASE_URL", "https://router.project-osrm.org")
	v.SetDefault("GOOGLE_MAPS_API_KEY", "")

	v.SetDefault("DRAFT_TTL", "2h")

	v.SetDefault("PUBSUB_PROJECT_ID", "")
	v.SetDefault("PUBSUB_TOPIC", "fleet-events")
	v.SetDefault("PUBSUB_SUBSCRIPTION", "fleet-events-worker")

	v.SetDefault("EMAIL_ENABLED", false)
	v.SetDefault("EMAIL_REGION", "eu-west-1")
	v.SetDefault("EMAIL_FROM", "")
}
