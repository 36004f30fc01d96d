package handlers

import (
	"errors"
	"html/template"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"corysite/internal/config"
	"corysite/internal/db"
	"corysite/internal/metrics"
	"corysite/internal/middleware"
	"corysite/internal/models"
	"corysite/internal/roi"
)

// PresetOption is one entry of the calculator's scenario picker.
type PresetOption struct {
	Key      string
	Label    string
	Selected bool
}

// ROIField describes one calculator input for the form.
type ROIField struct {
	Name  string // JSON name, also the form field name
	Label string
	Unit  string
	Step  string
	Value float64
	Error string
}

// PageHandler serves the public marketing pages.
type PageHandler struct {
	content ContentReader
	render  Renderer
	views   ViewRecorder
	cfg     *config.Config
	site    *config.SiteConfig
}

// NewPageHandler creates a new page handler. views may be nil.
func NewPageHandler(content ContentReader, render Renderer, views ViewRecorder, cfg *config.Config, site *config.SiteConfig) *PageHandler {
	if views == nil {
		views = func(string) {}
	}
	return &PageHandler{content: content, render: render, views: views, cfg: cfg, site: site}
}

// Home renders the landing page with featured resources and the default projection.
func (h *PageHandler) Home(c fiber.Ctx) error {
	featured, err := h.content.GetFeaturedContent(c.Context(), h.site.Featured)
	if err != nil {
		return err
	}

	preset, _ := h.site.Preset("")
	results := roi.Calculate(preset.Inputs)
	metrics.ROICalculations.WithLabelValues("home").Inc()

	return c.Render("index", MergeBranding(fiber.Map{
		"Title":     h.cfg.SiteTitle,
		"Featured":  featured,
		"Preset":    preset,
		"Formatted": results.Format(),
	}, h.cfg, h.site))
}

// ROI renders the calculator. Inputs come from ?preset=, then the visitor's
// saved session, then the default preset. ?reset= forgets the saved inputs.
func (h *PageHandler) ROI(c fiber.Ctx) error {
	selected := c.Query("preset")
	if c.Query("reset") != "" {
		middleware.ClearROIInputs(c)
	}

	var in roi.Inputs
	if selected != "" {
		preset, _ := h.site.Preset(selected)
		in = preset.Inputs
	} else if saved, ok := middleware.LoadROIInputs(c); ok {
		in = saved
	} else {
		preset, _ := h.site.Preset("")
		in = preset.Inputs
		selected = h.site.ROI.DefaultPreset
	}

	return h.renderROI(c, in, selected, nil)
}

// ROISubmit handles the calculator form for clients without JavaScript and
// for HTMX updates.
func (h *PageHandler) ROISubmit(c fiber.Ctx) error {
	req := roi.Request{}
	unparsed := map[string]string{}
	for _, f := range roiFieldDefs {
		raw := strings.TrimSpace(c.FormValue(f.Name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			unparsed[f.Name] = "must be a number"
			continue
		}
		*requestField(&req, f.Name) = &v
	}

	// An unparsed field is left nil, so Inputs always reports it.
	in, err := req.Inputs()
	if err != nil {
		var inputErr *roi.InputError
		if !errors.As(err, &inputErr) {
			return err
		}
		for name, msg := range unparsed {
			inputErr.Fields[name] = msg
		}
		c.Status(fiber.StatusUnprocessableEntity)
		return h.renderROI(c, partialInputs(req), "", inputErr.Fields)
	}

	middleware.SaveROIInputs(c, in)
	return h.renderROI(c, in, "", nil)
}

func (h *PageHandler) renderROI(c fiber.Ctx, in roi.Inputs, selected string, fieldErrs map[string]string) error {
	data := fiber.Map{
		"Title":   "ROI Calculator",
		"Fields":  roiFields(in, fieldErrs),
		"Presets": h.presetOptions(selected),
		"Inputs":  in,
	}
	if len(fieldErrs) == 0 {
		results := roi.Calculate(in)
		metrics.ROICalculations.WithLabelValues("page").Inc()
		data["Results"] = results
		data["Formatted"] = results.Format()
	} else {
		data["Errors"] = fieldErrs
	}

	if isHTMX(c) {
		return c.Render("partials/roi_results", data, "")
	}
	return c.Render("roi", MergeBranding(data, h.cfg, h.site))
}

// Resources renders the resource hub with optional filters.
func (h *PageHandler) Resources(c fiber.Ctx) error {
	filter := models.ContentFilter{
		Type:     c.Query("type"),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Query:    c.Query("q"),
	}

	items, err := h.content.ListPublishedContent(c.Context(), filter)
	if err != nil {
		return err
	}

	data := fiber.Map{
		"Title":      "Resources",
		"Items":      items,
		"Filter":     filter,
		"Types":      models.ContentTypes,
		"Categories": h.site.Categories,
	}
	if cat := h.site.GetCategoryBySlug(filter.Category); cat != nil {
		data["Category"] = cat
	}

	if isHTMX(c) {
		return c.Render("partials/resource_list", data, "")
	}
	return c.Render("resources", MergeBranding(data, h.cfg, h.site))
}

// Resource renders one published resource.
func (h *PageHandler) Resource(c fiber.Ctx) error {
	slug := c.Params("slug")

	item, err := h.content.GetPublishedContentBySlug(c.Context(), slug)
	if err != nil {
		if errors.Is(err, db.ErrContentNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Resource not found")
		}
		return err
	}

	h.views(item.Slug)

	return c.Render("resource", MergeBranding(fiber.Map{
		"Title":    item.Title,
		"Item":     item,
		"Body":     template.HTML(h.render.Render(item.Body)),
		"Category": h.site.GetCategoryBySlug(item.Category),
	}, h.cfg, h.site))
}

func (h *PageHandler) presetOptions(selected string) []PresetOption {
	names := h.site.PresetNames()
	out := make([]PresetOption, 0, len(names))
	for _, name := range names {
		p, _ := h.site.Preset(name)
		out = append(out, PresetOption{Key: name, Label: p.Label, Selected: name == selected})
	}
	return out
}

var roiFieldDefs = []ROIField{
	{Name: "monthlyInquiries", Label: "Monthly inquiries", Step: "1"},
	{Name: "contactRate", Label: "Current contact rate", Unit: "%", Step: "0.1"},
	{Name: "conversionRate", Label: "Contact to application rate", Unit: "%", Step: "0.1"},
	{Name: "avgTuition", Label: "Average annual tuition", Unit: "$", Step: "100"},
	{Name: "staffCost", Label: "Staff cost per hour", Unit: "$", Step: "0.5"},
	{Name: "touchesPerLead", Label: "Manual touches per lead", Step: "1"},
	{Name: "coryContactRate", Label: "Contact rate with automation", Unit: "%", Step: "0.1"},
	{Name: "responseUplift", Label: "Response uplift", Unit: "%", Step: "0.1"},
	{Name: "automationCoverage", Label: "Touches automated", Unit: "%", Step: "0.1"},
}

func roiFields(in roi.Inputs, fieldErrs map[string]string) []ROIField {
	snap := in.Snapshot()
	out := make([]ROIField, len(roiFieldDefs))
	for i, f := range roiFieldDefs {
		f.Value = snap[f.Name]
		f.Error = fieldErrs[f.Name]
		out[i] = f
	}
	return out
}

// requestField returns the Request slot for a JSON field name.
func requestField(r *roi.Request, name string) **float64 {
	switch name {
	case "monthlyInquiries":
		return &r.MonthlyInquiries
	case "contactRate":
		return &r.ContactRate
	case "conversionRate":
		return &r.ConversionRate
	case "avgTuition":
		return &r.AvgTuition
	case "staffCost":
		return &r.StaffCost
	case "touchesPerLead":
		return &r.TouchesPerLead
	case "coryContactRate":
		return &r.CoryContactRate
	case "responseUplift":
		return &r.ResponseUplift
	default:
		return &r.AutomationCoverage
	}
}

// partialInputs keeps whatever the visitor did enter so the form can be redisplayed.
func partialInputs(r roi.Request) roi.Inputs {
	val := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	return roi.Inputs{
		MonthlyInquiries:   val(r.MonthlyInquiries),
		ContactRate:        val(r.ContactRate),
		ConversionRate:     val(r.ConversionRate),
		AvgTuition:         val(r.AvgTuition),
		StaffCost:          val(r.StaffCost),
		TouchesPerLead:     val(r.TouchesPerLead),
		CoryContactRate:    val(r.CoryContactRate),
		ResponseUplift:     val(r.ResponseUplift),
		AutomationCoverage: val(r.AutomationCoverage),
	}
}
