package repositories

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"demand-api/config"
	"demand-api/internal/models"
	"demand-api/pkg/observe"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WeatherRepository fetches the forecast slot nearest to a target UTC
// instant for the deployment's fixed geographic point.
type WeatherRepository interface {
	Name() string
	FetchNearest(ctx context.Context, target time.Time) (models.Observation, error)
}

// InitWeatherRepository builds the provider selected by configuration. The
// fetch timeout lives on the shared HTTP client, so a hung provider blocks
// only the requesting handler and only for that long.
func InitWeatherRepository(cfg *config.Config, l *observe.Logger) (WeatherRepository, error) {
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.Weather.TimeoutSeconds) * time.Second,
	}

	switch cfg.Weather.Name {
	case "openweather":
		return NewOpenWeatherRepository(cfg.Weather, l, httpClient)
	case "open-meteo":
		return NewOpenMeteoRepository(cfg.Weather, l, httpClient), nil
		// Add more cases for new providers to extend the app
	}

	return nil, fmt.Errorf("unknown weather provider %q", cfg.Weather.Name)
}
