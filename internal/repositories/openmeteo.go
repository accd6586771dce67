package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"demand-api/config"
	"demand-api/internal/models"
	"demand-api/pkg/observe"
)

const (
	OpenMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

	openMeteoTimeLayout = "2006-01-02T15:04"
)

// OpenMeteoRepository is the keyless alternate provider. Its hourly series
// already carry hourly rates, so no accumulation conversion is needed.
type OpenMeteoRepository struct {
	BaseURL    string
	Lat        float64
	Lon        float64
	httpClient HTTPClient
	l          *observe.Logger
}

func NewOpenMeteoRepository(cfg config.WeatherAPIConfig, l *observe.Logger, httpClient HTTPClient) *OpenMeteoRepository {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = OpenMeteoBaseURL
	}

	return &OpenMeteoRepository{
		BaseURL:    baseURL,
		Lat:        cfg.Lat,
		Lon:        cfg.Lon,
		httpClient: httpClient,
		l:          l,
	}
}

func (o *OpenMeteoRepository) Name() string {
	return "open-meteo"
}

type OpenMeteoHourly struct {
	Time               []string  `json:"time"`
	Temperature2m      []float64 `json:"temperature_2m"`
	RelativeHumidity2m []float64 `json:"relative_humidity_2m"`
	WindSpeed10m       []float64 `json:"wind_speed_10m"`
	Precipitation      []float64 `json:"precipitation"`
	Snowfall           []float64 `json:"snowfall"`
}

func (o *OpenMeteoRepository) FetchNearest(ctx context.Context, target time.Time) (models.Observation, error) {
	obs := models.Observation{}

	url := fmt.Sprintf(
		"%s?latitude=%f&longitude=%f&hourly=temperature_2m,relative_humidity_2m,wind_speed_10m,precipitation,snowfall&wind_speed_unit=ms&timezone=UTC",
		o.BaseURL, o.Lat, o.Lon,
	)

	o.l.Info("making open-meteo API request", map[string]any{
		"lat":    o.Lat,
		"lon":    o.Lon,
		"target": target.UTC(),
	})

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return obs, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return obs, fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	o.l.Info("received open-meteo API response", map[string]any{
		"status":     resp.StatusCode,
		"statusText": resp.Status,
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return obs, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return obs, fmt.Errorf("HTTP error (status %d): %s", resp.StatusCode, resp.Status)
	}

	var response struct {
		Hourly OpenMeteoHourly `json:"hourly"`
	}
	if err = json.Unmarshal(body, &response); err != nil {
		return obs, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if len(response.Hourly.Time) == 0 {
		return obs, fmt.Errorf("no forecast data available")
	}

	index, slot, err := nearestHour(response.Hourly.Time, target)
	if err != nil {
		return obs, err
	}

	readings := map[string]float64{
		models.ReadingTemperature:   seriesAt(response.Hourly.Temperature2m, index),
		models.ReadingHumidity:      seriesAt(response.Hourly.RelativeHumidity2m, index),
		models.ReadingWindSpeed:     seriesAt(response.Hourly.WindSpeed10m, index),
		models.ReadingPrecipitation: seriesAt(response.Hourly.Precipitation, index),
		models.ReadingSnowfall:      seriesAt(response.Hourly.Snowfall, index),
	}

	obs.Time = slot
	obs.Readings = readings

	o.l.Info("selected forecast slot", map[string]any{
		"slot":     slot,
		"readings": readings,
	})

	return obs, nil
}

func nearestHour(stamps []string, target time.Time) (int, time.Time, error) {
	best := -1
	bestDist := math.Inf(1)
	var bestTime time.Time

	for i, stamp := range stamps {
		t, err := time.Parse(openMeteoTimeLayout, stamp)
		if err != nil {
			continue
		}
		if dist := math.Abs(t.Sub(target).Seconds()); dist < bestDist {
			best = i
			bestDist = dist
			bestTime = t
		}
	}

	if best == -1 {
		return 0, time.Time{}, fmt.Errorf("no parseable forecast timestamps")
	}

	return best, bestTime, nil
}

// seriesAt reads one hourly series defensively: a series shorter than the
// time axis zero-fills instead of panicking.
func seriesAt(series []float64, index int) float64 {
	if index < 0 || index >= len(series) {
		return 0.0
	}
	return series[index]
}
