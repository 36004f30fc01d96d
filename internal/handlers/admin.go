package handlers

import (
	"errors"
	"html/template"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"corysite/internal/config"
	"corysite/internal/db"
	"corysite/internal/models"
)

// recentLeadsLimit caps the admin leads table.
const recentLeadsLimit = 200

// AdminHandler handles content management and the leads inbox.
type AdminHandler struct {
	store   ContentAdmin
	leads   LeadLister
	preview Renderer
	cache   Invalidator
	cfg     *config.Config
	site    *config.SiteConfig
}

// NewAdminHandler creates a new admin handler. preview renders the live
// editor preview; cache may be nil.
func NewAdminHandler(store ContentAdmin, leads LeadLister, preview Renderer, cache Invalidator, cfg *config.Config, site *config.SiteConfig) *AdminHandler {
	return &AdminHandler{store: store, leads: leads, preview: preview, cache: cache, cfg: cfg, site: site}
}

// Index renders the content list.
func (h *AdminHandler) Index(c fiber.Ctx) error {
	items, err := h.store.ListAllContent(c.Context())
	if err != nil {
		return err
	}

	data := fiber.Map{
		"Title": "Content",
		"Items": items,
	}

	if isHTMX(c) {
		return c.Render("partials/admin_content_list", data, "")
	}
	return c.Render("admin/index", MergeBranding(data, h.cfg, h.site))
}

// New renders an empty editor.
func (h *AdminHandler) New(c fiber.Ctx) error {
	return h.renderEditor(c, &models.Content{Type: models.TypeArticle}, nil)
}

// Create saves a new resource from the editor form.
func (h *AdminHandler) Create(c fiber.Ctx) error {
	item := contentFromForm(c)

	if fieldErrs := prepare(item); fieldErrs != nil {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.renderEditor(c, item, fieldErrs)
	}

	if err := h.store.CreateContent(c.Context(), item); err != nil {
		if errors.Is(err, db.ErrDuplicateSlug) {
			c.Status(fiber.StatusConflict)
			return h.renderEditor(c, item, map[string]string{"slug": "a resource with this slug already exists"})
		}
		return err
	}

	return c.Redirect().Status(fiber.StatusSeeOther).To("/admin")
}

// Edit renders the editor for an existing resource.
func (h *AdminHandler) Edit(c fiber.Ctx) error {
	item, err := h.load(c)
	if err != nil {
		return err
	}
	return h.renderEditor(c, item, nil)
}

// Update saves editor changes.
func (h *AdminHandler) Update(c fiber.Ctx) error {
	existing, err := h.load(c)
	if err != nil {
		return err
	}

	item := contentFromForm(c)
	item.ID = existing.ID
	item.Published = existing.Published
	item.CreatedAt = existing.CreatedAt

	if fieldErrs := prepare(item); fieldErrs != nil {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.renderEditor(c, item, fieldErrs)
	}

	if err := h.store.UpdateContent(c.Context(), item); err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicateSlug):
			c.Status(fiber.StatusConflict)
			return h.renderEditor(c, item, map[string]string{"slug": "a resource with this slug already exists"})
		case errors.Is(err, db.ErrContentNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Resource not found")
		}
		return err
	}

	if h.cache != nil && existing.Body != item.Body {
		h.cache.Invalidate(existing.Body)
	}

	return c.Redirect().Status(fiber.StatusSeeOther).To("/admin")
}

// Publish makes a resource live.
func (h *AdminHandler) Publish(c fiber.Ctx) error {
	return h.setPublished(c, true)
}

// Unpublish takes a resource off the public site.
func (h *AdminHandler) Unpublish(c fiber.Ctx) error {
	return h.setPublished(c, false)
}

func (h *AdminHandler) setPublished(c fiber.Ctx, published bool) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid content id")
	}

	if err := h.store.SetContentPublished(c.Context(), id, published); err != nil {
		if errors.Is(err, db.ErrContentNotFound) {
			if isHTMX(c) {
				return htmxError(c, "Resource not found")
			}
			return fiber.NewError(fiber.StatusNotFound, "Resource not found")
		}
		return err
	}

	if isHTMX(c) {
		return h.Index(c)
	}
	return c.Redirect().Status(fiber.StatusSeeOther).To("/admin")
}

// Delete removes a resource.
func (h *AdminHandler) Delete(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid content id")
	}

	if err := h.store.DeleteContent(c.Context(), id); err != nil {
		if errors.Is(err, db.ErrContentNotFound) {
			if isHTMX(c) {
				return htmxError(c, "Resource not found")
			}
			return fiber.NewError(fiber.StatusNotFound, "Resource not found")
		}
		return err
	}

	if isHTMX(c) {
		// Empty body removes the row.
		return c.SendString("")
	}
	return c.Redirect().Status(fiber.StatusSeeOther).To("/admin")
}

// Preview renders the posted body with the editor rule set.
func (h *AdminHandler) Preview(c fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.SendString(h.preview.Render(c.FormValue("body")))
}

// Leads renders the captured leads table.
func (h *AdminHandler) Leads(c fiber.Ctx) error {
	leads, err := h.leads.Recent(c.Context(), recentLeadsLimit)
	if err != nil {
		return err
	}

	return c.Render("admin/leads", MergeBranding(fiber.Map{
		"Title": "Leads",
		"Leads": leads,
	}, h.cfg, h.site))
}

func (h *AdminHandler) load(c fiber.Ctx) (*models.Content, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid content id")
	}

	item, err := h.store.GetContentByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrContentNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Resource not found")
		}
		return nil, err
	}
	return item, nil
}

func (h *AdminHandler) renderEditor(c fiber.Ctx, item *models.Content, fieldErrs map[string]string) error {
	title := "New resource"
	if item.ID != uuid.Nil {
		title = "Edit " + item.Title
	}

	return c.Render("admin/edit", MergeBranding(fiber.Map{
		"Title":      title,
		"Item":       item,
		"IsNew":      item.ID == uuid.Nil,
		"TagList":    strings.Join(item.Tags, ", "),
		"MetricList": formatMetrics(item.Metrics),
		"Preview":    template.HTML(h.preview.Render(item.Body)),
		"Types":      models.ContentTypes,
		"Categories": h.site.Categories,
		"Errors":     fieldErrs,
	}, h.cfg, h.site))
}

// contentFromForm reads the editor form.
func contentFromForm(c fiber.Ctx) *models.Content {
	return &models.Content{
		Title:     c.FormValue("title"),
		Slug:      c.FormValue("slug"),
		Excerpt:   c.FormValue("excerpt"),
		Body:      c.FormValue("body"),
		Type:      c.FormValue("type"),
		Category:  c.FormValue("category"),
		Tags:      models.ParseTags(c.FormValue("tags")),
		Featured:  c.FormValue("featured") != "",
		Published: c.FormValue("published") != "",
		Metrics:   parseMetrics(c.FormValue("metrics")),
	}
}

// prepare normalizes and validates an edited item. Returns nil when valid.
func prepare(item *models.Content) map[string]string {
	if err := item.Normalize(); err != nil {
		return map[string]string{"slug": err.Error()}
	}
	if err := item.Validate(); err != nil {
		if fields, ok := models.FieldErrors(err); ok {
			return fields
		}
		return map[string]string{"title": err.Error()}
	}
	return nil
}

// parseMetrics reads "Label: value" lines into a map.
func parseMetrics(raw string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		label, value = strings.TrimSpace(label), strings.TrimSpace(value)
		if label != "" && value != "" {
			out[label] = value
		}
	}
	return out
}

// formatMetrics is the inverse of parseMetrics, sorted by label.
func formatMetrics(m map[string]string) string {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	lines := make([]string, 0, len(labels))
	for _, label := range labels {
		lines = append(lines, label+": "+m[label])
	}
	return strings.Join(lines, "\n")
}
