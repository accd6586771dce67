package features

import "demand-api/internal/models"

// snowDepthCol is the one schema column no forecast provider can supply:
// providers report snowfall accumulation, never depth on the ground. It is
// always 0 rather than approximated, even when the schema also asks for
// snowfall.
const snowDepthCol = "snow_depth"

// WeatherFeatures maps a fetched observation onto the expected weather
// feature names. The result contains exactly the requested keys; any
// reading the provider lacks is 0.
func WeatherFeatures(obs models.Observation, expected []string) map[string]float64 {
	out := make(map[string]float64, len(expected))
	for _, name := range expected {
		if name == snowDepthCol {
			out[name] = 0.0
			continue
		}
		out[name] = obs.Reading(name)
	}
	return out
}

// ZeroWeather is the degraded-provider fallback: every expected key, all
// zeros. Predictions continue without a weather signal.
func ZeroWeather(expected []string) map[string]float64 {
	out := make(map[string]float64, len(expected))
	for _, name := range expected {
		out[name] = 0.0
	}
	return out
}
