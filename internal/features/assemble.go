package features

import "demand-api/internal/models"

// Assemble left-joins the time-feature row and the weather-feature map over
// the full schema, reindexed to exact schema order. Columns absent from both
// sources become 0, so assembly never fails on missing data.
func Assemble(timeRow models.FeatureRow, weather map[string]float64, schema []string) models.FeatureRow {
	row := models.NewFeatureRow(len(schema))
	for _, col := range schema {
		if v, ok := timeRow.Get(col); ok {
			row.Append(col, v)
			continue
		}
		row.Append(col, weather[col])
	}
	return row
}
