package predict

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rickar/cal/v2"

	"demand-api/internal/features"
	"demand-api/internal/mlmodel"
	"demand-api/internal/repositories"
	"demand-api/pkg/observe"
)

// InputError marks a client-side validation failure. The HTTP layer maps it
// to a 400 with its message; every other error becomes an opaque 500.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return e.Reason
}

// Service runs the prediction pipeline over the load-once model bundle. All
// fields are immutable after construction and safe for concurrent handlers.
type Service struct {
	bundle   *mlmodel.Bundle
	weather  repositories.WeatherRepository
	holidays *cal.Calendar
	loc      *time.Location
	l        *observe.Logger
}

func NewService(bundle *mlmodel.Bundle, weather repositories.WeatherRepository, loc *time.Location, l *observe.Logger) *Service {
	return &Service{
		bundle:   bundle,
		weather:  weather,
		holidays: features.NewHolidayCalendar(),
		loc:      loc,
		l:        l,
	}
}

// Predict turns a civil date and clock time into per-zone demand counts:
// parse input, generate time features, fetch weather, assemble, scale,
// predict. Stages run once each, in order, with no retries; only the
// weather stage has an internal fallback.
func (s *Service) Predict(ctx context.Context, dateStr, timeStr string) (map[string]int, error) {
	if dateStr == "" || timeStr == "" {
		return nil, &InputError{Reason: "Missing 'date' or 'time'."}
	}

	targetUTC, err := features.CivilToUTC(dateStr, timeStr, s.loc)
	if err != nil {
		return nil, &InputError{Reason: err.Error()}
	}

	s.l.Info("starting prediction", map[string]any{
		"date":      dateStr,
		"time":      timeStr,
		"targetUTC": targetUTC,
	})

	timeRow := features.TimeFeatures(targetUTC, s.bundle.TimeColumns, s.holidays)
	if timeRow.Len() == 0 {
		return nil, errors.New("time feature generation produced no columns")
	}

	weather := s.fetchWeather(ctx, targetUTC)

	row := features.Assemble(timeRow, weather, s.bundle.Schema)

	vec, err := s.bundle.Scaler.Transform(row)
	if err != nil {
		return nil, errors.Wrap(err, "scale features")
	}

	counts, err := s.bundle.Model.PredictZones(vec, s.bundle.Zones)
	if err != nil {
		return nil, errors.Wrap(err, "predict zones")
	}

	s.l.Info("completed prediction", map[string]any{
		"targetUTC": targetUTC,
		"zones":     len(counts),
	})

	return counts, nil
}

// fetchWeather absorbs provider failures: the pipeline stays available on a
// dead weather dependency at the cost of predicting with no weather signal.
func (s *Service) fetchWeather(ctx context.Context, target time.Time) map[string]float64 {
	if len(s.bundle.WeatherColumns) == 0 {
		return map[string]float64{}
	}

	obs, err := s.weather.FetchNearest(ctx, target)
	if err != nil {
		s.l.Warning("weather provider degraded, predicting without weather signal", map[string]any{
			"provider": s.weather.Name(),
			"err":      err.Error(),
			"target":   target,
		})
		return features.ZeroWeather(s.bundle.WeatherColumns)
	}

	return features.WeatherFeatures(obs, s.bundle.WeatherColumns)
}

// Zones returns the persisted zone order.
func (s *Service) Zones() []int {
	zones := make([]int, len(s.bundle.Zones))
	copy(zones, s.bundle.Zones)
	return zones
}

// ModelVersion reports the loaded bundle's training-run version.
func (s *Service) ModelVersion() string {
	return s.bundle.Version
}
