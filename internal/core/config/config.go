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
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Redis holds the cache store configuration.
	Redis RedisConfig `mapstructure:",squash"`

	// Tracking holds the tracking pipeline configuration.
	Tracking TrackingConfig `mapstructure:",squash"`

	// Carriers holds the carrier API endpoints.
	Carriers CarrierConfig `mapstructure:",squash"`
}

// RedisConfig holds the connection details for the cache store.
type RedisConfig struct {
	// URL is the Redis connection string, e.g. redis://localhost:6379/0.
	URL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
}

// TrackingConfig holds the knobs for the tracking pipeline.
type TrackingConfig struct {
	// URLsFile is the path of the line-based tracked URLs file.
	URLsFile string `mapstructure:"URLS_FILE" default:"packtrack.urls"`
	// HTTPTimeoutSeconds is the fixed ceiling for a single carrier request.
	HTTPTimeoutSeconds int `mapstructure:"HTTP_TIMEOUT_SECONDS" default:"10"`
	// MaxInFlight bounds the number of concurrently tracked URLs.
	MaxInFlight int `mapstructure:"MAX_IN_FLIGHT" default:"8"`
	// CacheMaxAgeSeconds is the default max age for reusing cached
	// entries of undelivered packages.
	CacheMaxAgeSeconds int `mapstructure:"CACHE_MAX_AGE_SECONDS" default:"30"`
}

// CarrierConfig holds the base URLs of the carrier tracking APIs.
type CarrierConfig struct {
	// PostNLURL is the base URL of the PostNL track-and-trace API.
	PostNLURL string `mapstructure:"CARRIER_POSTNL_URL" default:"https://jouw.postnl.nl"`
	// DHLURL is the base URL of the DHL parcel API gateway.
	DHLURL string `mapstructure:"CARRIER_DHL_URL" default:"https://api-gw.dhlparcel.nl"`
	// GLSURL is the base URL of the GLS track-and-trace API.
	GLSURL string `mapstructure:"CARRIER_GLS_URL" default:"https://apm.gls.nl"`
	// UPSURL is the base URL of the UPS tracking site.
	UPSURL string `mapstructure:"CARRIER_UPS_URL" default:"https://www.ups.com"`
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

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
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

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
