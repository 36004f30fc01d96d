package handlers

import (
	"context"
	"sort"

	"github.com/gofiber/fiber/v3"
)

// Pinger reports whether a dependency is reachable. *db.DB satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	deps map[string]Pinger
}

// NewProbeHandler creates a probe handler that checks each named dependency
// on readiness.
func NewProbeHandler(deps map[string]Pinger) *ProbeHandler {
	return &ProbeHandler{deps: deps}
}

// Liveness handles /healthz. Returns 200 OK while the process is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles /readyz. Returns 503 listing the unreachable
// dependencies, if any.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	var down []string
	for name, dep := range h.deps {
		if err := dep.Ping(c.Context()); err != nil {
			down = append(down, name)
		}
	}

	if len(down) > 0 {
		sort.Strings(down)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":      "error",
			"error":       "dependency unavailable",
			"unavailable": down,
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
