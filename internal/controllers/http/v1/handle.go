package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"demand-api/internal/services/predict"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"Missing required parameter: date"`
}

// HandlePredict godoc
// @Summary Predict hourly taxi demand per zone
// @Description Generates per-zone demand counts for the given local date and time using the loaded model and a fresh weather forecast
// @Tags Prediction
// @Accept json
// @Produce json
// @Param date query string true "Calendar date (YYYY-MM-DD)" example(2024-07-04)
// @Param time query string true "Clock time (HH:MM or HH:MM:SS)" example(12:00)
// @Success 200 {object} map[string]int "Zone id to predicted demand count"
// @Failure 400 {object} ErrorResponse "Bad request - missing or invalid parameters"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /predict [get]
func (r *routes) handlePredict(c *fiber.Ctx) error {
	dateStr := c.Query("date")
	timeStr := c.Query("time")

	// Validate before any computation or provider call.
	if dateStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Missing required parameter: date",
		})
	}

	if timeStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Missing required parameter: time",
		})
	}

	counts, err := r.service.Predict(c.Context(), dateStr, timeStr)
	if err != nil {
		var inputErr *predict.InputError
		if errors.As(err, &inputErr) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: inputErr.Reason,
			})
		}

		// Full detail stays server-side; the caller gets a generic message.
		r.l.Error(err, map[string]any{
			"date": dateStr,
			"time": timeStr,
		})

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Prediction failed (server error).",
		})
	}

	return c.JSON(counts)
}

// HandleZones godoc
// @Summary List the model's zone order
// @Description Returns the ordered zone identifiers the loaded model predicts for
// @Tags Prediction
// @Produce json
// @Success 200 {array} int
// @Router /zones [get]
func (r *routes) handleZones(c *fiber.Ctx) error {
	return c.JSON(r.service.Zones())
}
