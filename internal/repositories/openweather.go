package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"demand-api/config"
	"demand-api/internal/models"
	"demand-api/pkg/observe"
)

const (
	OpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5/forecast"

	// The 5-day forecast reports rain and snow as 3-hour accumulations;
	// the model was trained on hourly rates.
	accumulationHours = 3.0
)

// owmReadingPaths maps nested response paths to canonical reading names.
// Each path is extracted independently so one absent or malformed reading
// zero-fills only itself.
var owmReadingPaths = []struct {
	feature string
	path    []string
}{
	{models.ReadingTemperature, []string{"main", "temp"}},
	{models.ReadingHumidity, []string{"main", "humidity"}},
	{models.ReadingWindSpeed, []string{"wind", "speed"}},
	{models.ReadingPrecipitation, []string{"rain", "3h"}},
	{models.ReadingSnowfall, []string{"snow", "3h"}},
}

type OpenWeatherRepository struct {
	BaseURL    string
	APIKey     string
	Lat        float64
	Lon        float64
	httpClient HTTPClient
	l          *observe.Logger
}

func NewOpenWeatherRepository(cfg config.WeatherAPIConfig, l *observe.Logger, httpClient HTTPClient) (*OpenWeatherRepository, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("API key cannot be empty")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = OpenWeatherBaseURL
	}

	return &OpenWeatherRepository{
		BaseURL:    baseURL,
		APIKey:     cfg.APIKey,
		Lat:        cfg.Lat,
		Lon:        cfg.Lon,
		httpClient: httpClient,
		l:          l,
	}, nil
}

func (w *OpenWeatherRepository) Name() string {
	return "openweather"
}

// FetchNearest issues one forecast request and returns the entry whose
// timestamp is closest to target, with readings mapped to canonical names
// and accumulations converted to hourly rates.
func (w *OpenWeatherRepository) FetchNearest(ctx context.Context, target time.Time) (models.Observation, error) {
	obs := models.Observation{}

	url := fmt.Sprintf("%s?lat=%f&lon=%f&units=metric&appid=%s", w.BaseURL, w.Lat, w.Lon, w.APIKey)

	w.l.Info("making openweather API request", map[string]any{
		"lat":    w.Lat,
		"lon":    w.Lon,
		"target": target.UTC(),
	})

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return obs, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return obs, fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()

	w.l.Info("received openweather API response", map[string]any{
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
		List []map[string]any `json:"list"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return obs, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if len(response.List) == 0 {
		return obs, fmt.Errorf("no forecast data available")
	}

	entry, slot, err := nearestEntry(response.List, target)
	if err != nil {
		return obs, err
	}

	readings := make(map[string]float64, len(owmReadingPaths))
	for _, m := range owmReadingPaths {
		value, ok := nestedFloat(entry, m.path...)
		if !ok {
			value = 0.0
		}
		readings[m.feature] = value
	}
	readings[models.ReadingPrecipitation] /= accumulationHours
	readings[models.ReadingSnowfall] /= accumulationHours

	obs.Time = slot
	obs.Readings = readings

	w.l.Info("selected forecast slot", map[string]any{
		"slot":     slot,
		"readings": readings,
	})

	return obs, nil
}

// nearestEntry returns the entry with the smallest |dt - target|; on a tie
// the first minimal entry wins. Entries without a numeric dt cannot be
// placed in time and are skipped; a list with none left is malformed.
func nearestEntry(list []map[string]any, target time.Time) (map[string]any, time.Time, error) {
	targetUnix := float64(target.Unix())

	best := -1
	bestDist := math.Inf(1)
	var bestDt float64
	for i, entry := range list {
		dt, ok := nestedFloat(entry, "dt")
		if !ok {
			continue
		}
		if dist := math.Abs(dt - targetUnix); dist < bestDist {
			best = i
			bestDist = dist
			bestDt = dt
		}
	}
	if best == -1 {
		return nil, time.Time{}, fmt.Errorf("no forecast entry carries a timestamp")
	}

	return list[best], time.Unix(int64(bestDt), 0).UTC(), nil
}

// nestedFloat walks a decoded JSON object along path and returns the final
// numeric value. Any missing key, non-object intermediate, or non-numeric
// leaf reports false.
func nestedFloat(entry map[string]any, path ...string) (float64, bool) {
	var current any = entry
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return 0, false
		}
		current, ok = obj[key]
		if !ok {
			return 0, false
		}
	}

	value, ok := current.(float64)
	return value, ok
}
