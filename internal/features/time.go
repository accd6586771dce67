package features

import (
	"math"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"

	"demand-api/internal/models"
)

const (
	secondsPerDay  = 86400.0
	secondsPerYear = 365.2425 * secondsPerDay
)

// TimeFeatureNames is the fixed universe of calendar/cyclical features the
// training pipeline can produce. A persisted schema is split against this
// set: columns in it are time features, everything else is weather.
var TimeFeatureNames = []string{
	"year",
	"hour",
	"dayofweek",
	"dayofmonth",
	"month",
	"quarter",
	"dayofyear",
	"weekofyear",
	"is_weekend",
	"is_holiday",
	"hour_sin",
	"hour_cos",
	"month_sin",
	"month_cos",
}

// NewHolidayCalendar builds the US public-holiday calendar used for the
// is_holiday feature. Built once at startup and shared read-only.
func NewHolidayCalendar() *cal.Calendar {
	c := &cal.Calendar{Name: "us"}
	c.AddHoliday(us.Holidays...)
	return c
}

// TimeFeatures derives the requested calendar and cyclical features from a
// UTC timestamp. The returned row contains exactly the requested names that
// belong to TimeFeatureNames, in the requested order; unknown names are
// dropped. An empty result is the caller's fault to detect.
func TimeFeatures(t time.Time, expected []string, holidays *cal.Calendar) models.FeatureRow {
	t = t.UTC()

	dow := (int(t.Weekday()) + 6) % 7 // Monday=0
	_, week := t.ISOWeek()

	isWeekend := 0.0
	if dow == 5 || dow == 6 {
		isWeekend = 1.0
	}

	isHoliday := 0.0
	if actual, observed, _ := holidays.IsHoliday(t); actual || observed {
		isHoliday = 1.0
	}

	// Absolute time-of-day/time-of-year phase from Unix seconds. This is
	// how the model was trained; it is not relative to local midnight.
	ts := float64(t.Unix())
	values := map[string]float64{
		"year":       float64(t.Year()),
		"hour":       float64(t.Hour()),
		"dayofweek":  float64(dow),
		"dayofmonth": float64(t.Day()),
		"month":      float64(int(t.Month())),
		"quarter":    float64((int(t.Month())-1)/3 + 1),
		"dayofyear":  float64(t.YearDay()),
		"weekofyear": float64(week),
		"is_weekend": isWeekend,
		"is_holiday": isHoliday,
		"hour_sin":   math.Sin(ts * (2 * math.Pi / secondsPerDay)),
		"hour_cos":   math.Cos(ts * (2 * math.Pi / secondsPerDay)),
		"month_sin":  math.Sin(ts * (2 * math.Pi / secondsPerYear)),
		"month_cos":  math.Cos(ts * (2 * math.Pi / secondsPerYear)),
	}

	row := models.NewFeatureRow(len(expected))
	for _, name := range expected {
		if v, ok := values[name]; ok {
			row.Append(name, v)
		}
	}

	return row
}

// SplitSchema partitions a persisted feature schema into its time and
// weather subsets, both in schema order. Their union in schema order is the
// schema itself.
func SplitSchema(schema []string) (timeCols, weatherCols []string) {
	known := make(map[string]struct{}, len(TimeFeatureNames))
	for _, name := range TimeFeatureNames {
		known[name] = struct{}{}
	}

	for _, col := range schema {
		if _, ok := known[col]; ok {
			timeCols = append(timeCols, col)
		} else {
			weatherCols = append(weatherCols, col)
		}
	}

	return timeCols, weatherCols
}
