package handlers

import (
	"context"
	"html"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"corysite/internal/models"
)

// ContentReader is the public read side of the content store. *db.DB satisfies it.
type ContentReader interface {
	ListPublishedContent(ctx context.Context, f models.ContentFilter) ([]models.Content, error)
	GetFeaturedContent(ctx context.Context, limit int) ([]models.Content, error)
	GetPublishedContentBySlug(ctx context.Context, slug string) (*models.Content, error)
}

// ContentAdmin is the editor side of the content store. *db.DB satisfies it.
type ContentAdmin interface {
	ListAllContent(ctx context.Context) ([]models.Content, error)
	GetContentByID(ctx context.Context, id uuid.UUID) (*models.Content, error)
	CreateContent(ctx context.Context, c *models.Content) error
	UpdateContent(ctx context.Context, c *models.Content) error
	SetContentPublished(ctx context.Context, id uuid.UUID, published bool) error
	DeleteContent(ctx context.Context, id uuid.UUID) error
}

// LeadLister returns recent leads. *leads.Service satisfies it.
type LeadLister interface {
	Recent(ctx context.Context, limit int) ([]models.Lead, error)
}

// Renderer turns a Markdown body into HTML. *cache.RenderCache and
// *markdown.Renderer satisfy it.
type Renderer interface {
	Render(source string) string
}

// Invalidator drops a cached render. *cache.RenderCache satisfies it.
type Invalidator interface {
	Invalidate(source string)
}

// ViewRecorder counts a resource page view without blocking the request.
type ViewRecorder func(slug string)

// htmxError returns an error message as HTML that HTMX will display.
// Uses 200 status so HTMX processes the swap (HTMX ignores non-2xx by default).
func htmxError(c fiber.Ctx, message string) error {
	return c.SendString(
		`<div class="alert alert-error">` + html.EscapeString(message) + `</div>`,
	)
}

func isHTMX(c fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}
