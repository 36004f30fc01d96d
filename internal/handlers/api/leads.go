package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"

	"corysite/internal/leads"
	"corysite/internal/models"
	"corysite/internal/roi"
)

// LeadCapturer runs the capture pipeline. *leads.Service satisfies it.
type LeadCapturer interface {
	Capture(ctx context.Context, lead *models.Lead) error
}

// LeadHandler accepts form submissions as JSON.
type LeadHandler struct {
	leads LeadCapturer
}

// NewLeadHandler creates a new lead API handler.
func NewLeadHandler(capturer LeadCapturer) *LeadHandler {
	return &LeadHandler{leads: capturer}
}

// Create captures one lead. Responds 201 with the new lead's id.
func (h *LeadHandler) Create(c fiber.Ctx) error {
	var body struct {
		Source      string             `json:"source"`
		Name        string             `json:"name"`
		Email       string             `json:"email"`
		Phone       string             `json:"phone"`
		Institution string             `json:"institution"`
		Role        string             `json:"role"`
		Message     string             `json:"message"`
		ROI         map[string]float64 `json:"roi"`
		PageURL     string             `json:"page_url"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	lead := &models.Lead{
		Source:      body.Source,
		Name:        body.Name,
		Email:       body.Email,
		Phone:       body.Phone,
		Institution: body.Institution,
		Role:        body.Role,
		Message:     body.Message,
		ROI:         body.ROI,
		PageURL:     body.PageURL,
	}
	if lead.PageURL == "" {
		lead.PageURL = c.Get(fiber.HeaderReferer)
	}

	if err := h.leads.Capture(c.Context(), lead); err != nil {
		return captureError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "ok",
		"data": models.LeadResponse{
			ID:      lead.ID.String(),
			Message: "Thanks! We'll be in touch shortly.",
		},
	})
}

// captureError maps a Capture failure to a JSON response.
func captureError(c fiber.Ctx, err error) error {
	if !errors.Is(err, leads.ErrInvalidLead) {
		return jsonError(c, fiber.StatusInternalServerError, "failed to save submission")
	}
	if fields, ok := models.FieldErrors(err); ok {
		return jsonFieldErrors(c, fiber.StatusBadRequest, "please check the highlighted fields", fields)
	}
	var inputErr *roi.InputError
	if errors.As(err, &inputErr) {
		fields := make(map[string]string, len(inputErr.Fields))
		for name, msg := range inputErr.Fields {
			fields["roi."+name] = msg
		}
		return jsonFieldErrors(c, fiber.StatusBadRequest, "the ROI snapshot is incomplete", fields)
	}
	return jsonError(c, fiber.StatusBadRequest, "invalid submission")
}
