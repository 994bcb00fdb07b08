package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Settings holds the credential-store backend configuration.
	Settings SettingsConfig `mapstructure:",squash"`

	// WooCommerce holds optional seed credentials for the store connection.
	// Operators can also enter these through the settings endpoints at runtime.
	WooCommerce WooCommerceConfig `mapstructure:",squash"`

	// Couriers holds courier endpoints and optional seed key material.
	Couriers CourierConfig `mapstructure:",squash"`
}

// SettingsConfig selects and configures the credential-store backend.
type SettingsConfig struct {
	// Backend is one of: memory, redis, pebble.
	Backend string `mapstructure:"SETTINGS_BACKEND" default:"memory"`
	// RedisURL is the connection URL for the redis backend.
	RedisURL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
	// PebblePath is the on-disk directory for the pebble backend.
	PebblePath string `mapstructure:"PEBBLE_PATH" default:"./data/settings"`
}

// WooCommerceConfig holds seed credentials for the WooCommerce store.
type WooCommerceConfig struct {
	// URL is the base URL of the WooCommerce store.
	URL string `mapstructure:"WC_URL"`
	// ConsumerKey is the public key for API access.
	ConsumerKey string `mapstructure:"WC_CONSUMER_KEY"`
	// ConsumerSecret is the secret key for API access.
	ConsumerSecret string `mapstructure:"WC_CONSUMER_SECRET"`
}

// CourierConfig holds courier API endpoints and seed keys.
type CourierConfig struct {
	// SteadfastURL is the Steadfast API base URL.
	SteadfastURL string `mapstructure:"STEADFAST_BASE_URL" default:"https://portal.packzy.com/api/v1"`
	// SteadfastAPIKey is the Steadfast API key.
	SteadfastAPIKey string `mapstructure:"STEADFAST_API_KEY"`
	// SteadfastSecretKey is the Steadfast secret key.
	SteadfastSecretKey string `mapstructure:"STEADFAST_SECRET_KEY"`

	// PathaoURL is the Pathao API base URL.
	PathaoURL string `mapstructure:"PATHAO_BASE_URL" default:"https://api-hermes.pathao.com"`
	// PathaoAccessToken is the Pathao merchant access token.
	PathaoAccessToken string `mapstructure:"PATHAO_ACCESS_TOKEN"`
	// PathaoStoreID is the Pathao store identifier.
	PathaoStoreID string `mapstructure:"PATHAO_STORE_ID"`

	// RequestsPerMinute caps outbound calls per courier.
	RequestsPerMinute int `mapstructure:"COURIER_REQUESTS_PER_MINUTE" default:"30"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// validate rejects values the rest of the application cannot act on.
func (c *AppConfig) validate() error {
	switch c.Settings.Backend {
	case "memory", "redis", "pebble":
	default:
		return fmt.Errorf("invalid SETTINGS_BACKEND %q: must be memory, redis or pebble", c.Settings.Backend)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.ServerPort)
	}
	return nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}
