package models

import "time"

// Canonical reading names shared by every weather provider.
const (
	ReadingTemperature   = "temperature"
	ReadingHumidity      = "humidity"
	ReadingWindSpeed     = "wind_speed"
	ReadingPrecipitation = "precipitation"
	ReadingSnowfall      = "snowfall"
)

// Observation is one forecast slot fetched fresh per prediction request.
// Readings are keyed by the canonical names above; accumulations have
// already been converted to hourly rates by the provider repository.
type Observation struct {
	Time     time.Time          `json:"time"`
	Readings map[string]float64 `json:"readings"`
}

// Reading returns the named value, or 0 when the provider did not supply it.
func (o Observation) Reading(name string) float64 {
	return o.Readings[name]
}
