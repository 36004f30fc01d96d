package middleware

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"corysite/internal/roi"
)

// roiInputsKey holds the visitor's last calculator inputs as JSON.
const roiInputsKey = "roi_inputs"

// SaveROIInputs remembers the calculator inputs for the visitor's session.
// It is a no-op when no session middleware is installed.
func SaveROIInputs(c fiber.Ctx, in roi.Inputs) {
	sess := session.FromContext(c)
	if sess == nil {
		return
	}
	data, err := json.Marshal(in)
	if err != nil {
		return
	}
	sess.Set(roiInputsKey, string(data))
}

// LoadROIInputs returns the inputs saved by SaveROIInputs. Stored values that
// no longer validate are discarded.
func LoadROIInputs(c fiber.Ctx) (roi.Inputs, bool) {
	sess := session.FromContext(c)
	if sess == nil {
		return roi.Inputs{}, false
	}
	raw, ok := sess.Get(roiInputsKey).(string)
	if !ok || raw == "" {
		return roi.Inputs{}, false
	}

	var req roi.Request
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		sess.Delete(roiInputsKey)
		return roi.Inputs{}, false
	}
	in, err := req.Inputs()
	if err != nil {
		sess.Delete(roiInputsKey)
		return roi.Inputs{}, false
	}
	return in, true
}

// ClearROIInputs forgets the saved calculator inputs.
func ClearROIInputs(c fiber.Ctx) {
	if sess := session.FromContext(c); sess != nil {
		sess.Delete(roiInputsKey)
	}
}
