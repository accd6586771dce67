package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppName    string `envconfig:"APP_NAME" default:"demand-api"`
	AppVersion string `envconfig:"APP_VERSION" default:"1.0.0"`
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	Port       string `envconfig:"PORT" default:"8080"`

	// ModelDir holds the trained artifact bundle (manifest.json,
	// features.json, zones.json, scaler.json, model.json).
	ModelDir string `envconfig:"MODEL_DIR" default:"models" yaml:"model_dir"`

	// Timezone is the civil timezone request date/time strings are
	// interpreted in before conversion to UTC.
	Timezone string `envconfig:"TIMEZONE" default:"America/New_York" yaml:"timezone"`

	SentryDSN string `envconfig:"SENTRY_DSN" yaml:"sentry_dsn"`

	Weather WeatherAPIConfig `yaml:"weather"`
}

type WeatherAPIConfig struct {
	Name           string  `yaml:"name" envconfig:"WEATHER_PROVIDER" default:"openweather"`
	BaseURL        string  `yaml:"base_url" envconfig:"WEATHER_BASE_URL"`
	APIKey         string  `yaml:"api_key,omitempty" envconfig:"WEATHER_API_KEY"`
	Lat            float64 `yaml:"lat" envconfig:"WEATHER_LAT" default:"40.7128"`
	Lon            float64 `yaml:"lon" envconfig:"WEATHER_LON" default:"-74.0060"`
	TimeoutSeconds int     `yaml:"timeout_seconds" envconfig:"WEATHER_TIMEOUT_SECONDS" default:"10"`
}

func NewConfig() *Config {
	var cnf Config

	// Read from YAML file first
	if yamlData, err := os.ReadFile("config/config.yaml"); err == nil {
		if err := yaml.Unmarshal(yamlData, &cnf); err != nil {
			panic(fmt.Sprintf("Warning: failed to parse YAML config: %v\n", err))
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", &cnf); err != nil {
		panic(fmt.Errorf("error environment variable parsing: %w", err))
	}

	return &cnf
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
