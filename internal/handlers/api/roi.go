package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"

	"corysite/internal/config"
	"corysite/internal/metrics"
	"corysite/internal/middleware"
	"corysite/internal/models"
	"corysite/internal/roi"
)

// PresetResponse is one named calculator scenario.
type PresetResponse struct {
	Key     string     `json:"key"`
	Label   string     `json:"label"`
	Default bool       `json:"default"`
	Inputs  roi.Inputs `json:"inputs"`
}

// ROIHandler serves the calculator API.
type ROIHandler struct {
	site *config.SiteConfig
}

// NewROIHandler creates a new ROI API handler.
func NewROIHandler(site *config.SiteConfig) *ROIHandler {
	return &ROIHandler{site: site}
}

// Calculate validates the posted inputs and returns the projection. Valid
// inputs are kept in the visitor session so the calculator page reopens
// with them.
func (h *ROIHandler) Calculate(c fiber.Ctx) error {
	var req roi.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	in, err := req.Inputs()
	if err != nil {
		var inputErr *roi.InputError
		if errors.As(err, &inputErr) {
			return jsonFieldErrors(c, fiber.StatusBadRequest, "invalid ROI inputs", inputErr.Fields)
		}
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	results := roi.Calculate(in)
	metrics.ROICalculations.WithLabelValues("api").Inc()
	middleware.SaveROIInputs(c, in)

	return jsonSuccess(c, models.ROIResponse{
		Inputs:    in,
		Results:   results,
		Formatted: results.Format(),
	})
}

// Presets lists the configured scenarios in key order.
func (h *ROIHandler) Presets(c fiber.Ctx) error {
	names := h.site.PresetNames()
	out := make([]PresetResponse, 0, len(names))
	for _, name := range names {
		p, _ := h.site.Preset(name)
		out = append(out, PresetResponse{
			Key:     name,
			Label:   p.Label,
			Default: name == h.site.ROI.DefaultPreset,
			Inputs:  p.Inputs,
		})
	}
	return jsonSuccess(c, out)
}
