package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"corysite/internal/db"
	"corysite/internal/models"
)

// maxContentLimit caps ?limit= on the listing endpoint.
const maxContentLimit = 100

// ContentReader is the read side of the content store. *db.DB satisfies it.
type ContentReader interface {
	ListPublishedContent(ctx context.Context, f models.ContentFilter) ([]models.Content, error)
	GetPublishedContentBySlug(ctx context.Context, slug string) (*models.Content, error)
}

// Renderer turns a Markdown body into HTML.
type Renderer interface {
	Render(source string) string
}

// ContentHandler serves the resource hub as JSON.
type ContentHandler struct {
	content ContentReader
	render  Renderer
	views   func(slug string)
}

// NewContentHandler creates a new content API handler. views may be nil.
func NewContentHandler(content ContentReader, render Renderer, views func(slug string)) *ContentHandler {
	if views == nil {
		views = func(string) {}
	}
	return &ContentHandler{content: content, render: render, views: views}
}

// List returns published summaries filtered by type, category, tag and q.
func (h *ContentHandler) List(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit < 0 || limit > maxContentLimit {
		limit = maxContentLimit
	}

	items, err := h.content.ListPublishedContent(c.Context(), models.ContentFilter{
		Type:     c.Query("type"),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Query:    c.Query("q"),
		Limit:    limit,
	})
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch content")
	}

	out := make([]models.ContentSummary, 0, len(items))
	for _, item := range items {
		out = append(out, models.Summarize(item))
	}
	return jsonSuccess(c, out)
}

// Get returns one published item with its rendered body.
func (h *ContentHandler) Get(c fiber.Ctx) error {
	item, err := h.content.GetPublishedContentBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		if errors.Is(err, db.ErrContentNotFound) {
			return jsonError(c, fiber.StatusNotFound, "content not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch content")
	}

	h.views(item.Slug)

	return jsonSuccess(c, models.ContentDetail{
		Content: *item,
		HTML:    h.render.Render(item.Body),
	})
}
