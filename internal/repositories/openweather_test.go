package repositories

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demand-api/config"
	"demand-api/internal/models"
	"demand-api/pkg/observe"
)

var testTarget = time.Date(2024, 7, 4, 16, 0, 0, 0, time.UTC)

func newTestOpenWeather(baseURL string) *OpenWeatherRepository {
	return &OpenWeatherRepository{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Lat:        40.7128,
		Lon:        -74.0060,
		httpClient: http.DefaultClient,
		l:          observe.NewZapLogger("test-app"),
	}
}

func forecastServer(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, payload)
	}))
}

func TestNewOpenWeatherRepository_RequiresAPIKey(t *testing.T) {
	l := observe.NewZapLogger("test-app")

	_, err := NewOpenWeatherRepository(config.WeatherAPIConfig{APIKey: "  "}, l, http.DefaultClient)
	assert.Error(t, err)

	repo, err := NewOpenWeatherRepository(config.WeatherAPIConfig{APIKey: "k"}, l, http.DefaultClient)
	require.NoError(t, err)
	assert.Equal(t, OpenWeatherBaseURL, repo.BaseURL)
	assert.Equal(t, "openweather", repo.Name())
}

func TestOpenWeatherRepository_FetchNearest_MapsReadings(t *testing.T) {
	dt := testTarget.Add(-time.Hour).Unix()
	payload := fmt.Sprintf(`{
		"list": [
			{"dt": %d, "main": {"temp": 25.0, "humidity": 60.0}, "wind": {"speed": 3.0}, "rain": {"3h": 1.5}}
		]
	}`, dt)

	server := forecastServer(t, payload)
	defer server.Close()

	repo := newTestOpenWeather(server.URL)

	obs, err := repo.FetchNearest(context.Background(), testTarget)
	require.NoError(t, err)

	assert.Equal(t, time.Unix(dt, 0).UTC(), obs.Time)
	assert.Equal(t, 25.0, obs.Reading(models.ReadingTemperature))
	assert.Equal(t, 60.0, obs.Reading(models.ReadingHumidity))
	assert.Equal(t, 3.0, obs.Reading(models.ReadingWindSpeed))
	// 3-hour accumulations become hourly rates.
	assert.InDelta(t, 0.5, obs.Reading(models.ReadingPrecipitation), 1e-12)
	assert.Equal(t, 0.0, obs.Reading(models.ReadingSnowfall))
}

func TestOpenWeatherRepository_FetchNearest_SelectsNearestSlot(t *testing.T) {
	payload := fmt.Sprintf(`{
		"list": [
			{"dt": %d, "main": {"temp": 10.0}},
			{"dt": %d, "main": {"temp": 20.0}},
			{"dt": %d, "main": {"temp": 30.0}}
		]
	}`,
		testTarget.Add(-6*time.Hour).Unix(),
		testTarget.Add(-time.Hour).Unix(),
		testTarget.Add(2*time.Hour).Unix(),
	)

	server := forecastServer(t, payload)
	defer server.Close()

	repo := newTestOpenWeather(server.URL)

	obs, err := repo.FetchNearest(context.Background(), testTarget)
	require.NoError(t, err)

	assert.Equal(t, 20.0, obs.Reading(models.ReadingTemperature))
}

func TestOpenWeatherRepository_FetchNearest_TieKeepsFirstSlot(t *testing.T) {
	payload := fmt.Sprintf(`{
		"list": [
			{"dt": %d, "main": {"temp": 11.0}},
			{"dt": %d, "main": {"temp": 22.0}}
		]
	}`,
		testTarget.Add(-time.Hour).Unix(),
		testTarget.Add(time.Hour).Unix(),
	)

	server := forecastServer(t, payload)
	defer server.Close()

	repo := newTestOpenWeather(server.URL)

	obs, err := repo.FetchNearest(context.Background(), testTarget)
	require.NoError(t, err)

	assert.Equal(t, 11.0, obs.Reading(models.ReadingTemperature))
}

func TestOpenWeatherRepository_FetchNearest_SkipsEntriesWithoutTimestamp(t *testing.T) {
	payload := fmt.Sprintf(`{
		"list": [
			{"main": {"temp": 99.0}},
			{"dt": %d, "main": {"temp": 25.0}}
		]
	}`, testTarget.Unix())

	server := forecastServer(t, payload)
	defer server.Close()

	obs, err := newTestOpenWeather(server.URL).FetchNearest(context.Background(), testTarget)
	require.NoError(t, err)

	assert.Equal(t, testTarget, obs.Time)
	assert.Equal(t, 25.0, obs.Reading(models.ReadingTemperature))
}

func TestOpenWeatherRepository_FetchNearest_PartialMalformationZeroFillsOneReading(t *testing.T) {
	// wind.speed is a string here; only wind_speed may degrade to zero.
	payload := fmt.Sprintf(`{
		"list": [
			{"dt": %d, "main": {"temp": 25.0, "humidity": 60.0}, "wind": {"speed": "broken"}}
		]
	}`, testTarget.Unix())

	server := forecastServer(t, payload)
	defer server.Close()

	repo := newTestOpenWeather(server.URL)

	obs, err := repo.FetchNearest(context.Background(), testTarget)
	require.NoError(t, err)

	assert.Equal(t, 0.0, obs.Reading(models.ReadingWindSpeed))
	assert.Equal(t, 25.0, obs.Reading(models.ReadingTemperature))
	assert.Equal(t, 60.0, obs.Reading(models.ReadingHumidity))
}

func TestOpenWeatherRepository_FetchNearest_Failures(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := newTestOpenWeather(server.URL).FetchNearest(context.Background(), testTarget)
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("invalid json"))
		}))
		defer server.Close()

		_, err := newTestOpenWeather(server.URL).FetchNearest(context.Background(), testTarget)
		assert.Error(t, err)
	})

	t.Run("no entry carries a timestamp", func(t *testing.T) {
		server := forecastServer(t, `{
			"list": [
				{"main": {"temp": 25.0}},
				{"dt": "noon", "main": {"temp": 26.0}}
			]
		}`)
		defer server.Close()

		_, err := newTestOpenWeather(server.URL).FetchNearest(context.Background(), testTarget)
		assert.Error(t, err)
	})

	t.Run("empty forecast list", func(t *testing.T) {
		server := forecastServer(t, `{"list": []}`)
		defer server.Close()

		_, err := newTestOpenWeather(server.URL).FetchNearest(context.Background(), testTarget)
		assert.Error(t, err)
	})

	t.Run("unreachable provider", func(t *testing.T) {
		repo := newTestOpenWeather("http://127.0.0.1:1")

		_, err := repo.FetchNearest(context.Background(), testTarget)
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := forecastServer(t, `{"list": []}`)
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestOpenWeather(server.URL).FetchNearest(ctx, testTarget)
		assert.Error(t, err)
	})
}

func TestNestedFloat(t *testing.T) {
	entry := map[string]any{
		"main": map[string]any{"temp": 25.5},
		"dt":   1720108800.0,
		"wind": "not-an-object",
	}

	v, ok := nestedFloat(entry, "main", "temp")
	assert.True(t, ok)
	assert.Equal(t, 25.5, v)

	_, ok = nestedFloat(entry, "main", "missing")
	assert.False(t, ok)

	_, ok = nestedFloat(entry, "wind", "speed")
	assert.False(t, ok)

	_, ok = nestedFloat(entry, "main")
	assert.False(t, ok, "intermediate object is not a number")

	v, ok = nestedFloat(entry, "dt")
	assert.True(t, ok)
	assert.Equal(t, 1720108800.0, v)
}
