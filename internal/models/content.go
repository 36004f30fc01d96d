package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"corysite/internal/markdown"
)

// Content type constants
const (
	TypeArticle    = "article"
	TypeGuide      = "guide"
	TypeCaseStudy  = "case-study"
	TypeWebinar    = "webinar"
	TypeWhitepaper = "whitepaper"
)

// ContentTypes lists the accepted content types in display order.
var ContentTypes = []string{TypeArticle, TypeGuide, TypeCaseStudy, TypeWebinar, TypeWhitepaper}

// Content is a resource hub entry. Body holds Markdown.
type Content struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Excerpt     string            `json:"excerpt"`
	Body        string            `json:"body"`
	Type        string            `json:"type"`
	Category    string            `json:"category"`
	Tags        []string          `json:"tags"`
	Published   bool              `json:"published"`
	Featured    bool              `json:"featured"`
	Metrics     map[string]string `json:"metrics"` // KPI call-outs, e.g. "Response time" -> "90 sec"
	ViewCount   int64             `json:"view_count"`
	PublishedAt *time.Time        `json:"published_at"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ContentFilter narrows a published content listing. Zero fields are ignored.
type ContentFilter struct {
	Type     string
	Category string
	Tag      string
	Query    string
	Limit    int
}

// Normalize trims text fields, converts body line endings to LF, lowercases
// tags and derives the slug from the title when none was given.
func (c *Content) Normalize() error {
	c.Title = strings.TrimSpace(c.Title)
	c.Body = markdown.NormalizeNewlines(c.Body)
	c.Excerpt = strings.TrimSpace(c.Excerpt)
	c.Category = strings.TrimSpace(c.Category)
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	if c.Type == "" {
		c.Type = TypeArticle
	}

	source := strings.TrimSpace(c.Slug)
	if source == "" {
		source = c.Title
	}
	normalized, err := slug.Normalize(source)
	if err != nil {
		return err
	}
	c.Slug = normalized

	c.Tags = NormalizeTags(c.Tags)
	return nil
}

// Validate checks the fields an editor must supply.
func (c *Content) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.Slug, validation.Required, validation.Length(1, 200), validation.By(validSlug)),
		validation.Field(&c.Excerpt, validation.Length(0, 500)),
		validation.Field(&c.Type, validation.Required, validation.In(toAny(ContentTypes)...)),
	)
}

// HasTag reports whether the item carries the given tag.
func (c *Content) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NormalizeTags lowercases, trims and de-duplicates tags, keeping order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ParseTags splits a comma-separated tag list from a form field.
func ParseTags(raw string) []string {
	return NormalizeTags(strings.Split(raw, ","))
}

func validSlug(value any) error {
	s, _ := value.(string)
	if s != "" && !slug.IsValid(s) {
		return validation.NewError("content_slug_invalid", "must contain only lowercase letters, numbers and hyphens")
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
