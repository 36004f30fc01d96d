package db

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"corysite/internal/models"
)

// DefaultContentLimit caps listings when the filter has no limit.
const DefaultContentLimit = 50

// contentColumns is the standard column list for content queries.
const contentColumns = `id, title, slug, excerpt, body, type, category, tags,
	published, featured, metrics, view_count, published_at, created_at, updated_at`

func contentDest(c *models.Content) []any {
	return []any{
		&c.ID,
		&c.Title,
		&c.Slug,
		&c.Excerpt,
		&c.Body,
		&c.Type,
		&c.Category,
		&c.Tags,
		&c.Published,
		&c.Featured,
		&c.Metrics,
		&c.ViewCount,
		&c.PublishedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
}

// scanContent scans a row into a Content struct.
func scanContent(row pgx.Row) (*models.Content, error) {
	var c models.Content
	err := row.Scan(contentDest(&c)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// scanContents scans multiple rows into a slice of Content.
func scanContents(rows pgx.Rows) ([]models.Content, error) {
	defer rows.Close()

	var items []models.Content
	for rows.Next() {
		var c models.Content
		if err := rows.Scan(contentDest(&c)...); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// writable fills in the empty collections Postgres expects as non-null.
func writable(c *models.Content) {
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Metrics == nil {
		c.Metrics = map[string]string{}
	}
}

// ListPublishedContent returns live resources matching the filter, newest first.
func (d *DB) ListPublishedContent(ctx context.Context, f models.ContentFilter) ([]models.Content, error) {
	sql := `
		SELECT ` + contentColumns + `
		FROM contents
		WHERE published = TRUE
	`
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Type != "" {
		sql += ` AND type = ` + next(f.Type)
	}
	if f.Category != "" {
		sql += ` AND category = ` + next(f.Category)
	}
	if f.Tag != "" {
		sql += ` AND ` + next(strings.ToLower(f.Tag)) + ` = ANY(tags)`
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		p := next("%" + q + "%")
		sql += ` AND (title ILIKE ` + p + ` OR excerpt ILIKE ` + p + ` OR body ILIKE ` + p + `)`
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultContentLimit
	}
	sql += ` ORDER BY featured DESC, published_at DESC NULLS LAST, title ASC LIMIT ` + next(limit)

	rows, err := d.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanContents(rows)
}

// GetFeaturedContent returns up to limit featured live resources.
func (d *DB) GetFeaturedContent(ctx context.Context, limit int) ([]models.Content, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM contents
		WHERE published = TRUE AND featured = TRUE
		ORDER BY published_at DESC NULLS LAST
		LIMIT $1
	`
	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanContents(rows)
}

// GetPublishedContentBySlug returns a live resource. Drafts are reported as not found.
func (d *DB) GetPublishedContentBySlug(ctx context.Context, slug string) (*models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents WHERE slug = $1 AND published = TRUE`
	return scanContent(d.Pool.QueryRow(ctx, query, slug))
}

// GetContentBySlug returns a resource whether or not it is published.
func (d *DB) GetContentBySlug(ctx context.Context, slug string) (*models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents WHERE slug = $1`
	return scanContent(d.Pool.QueryRow(ctx, query, slug))
}

// GetContentByID returns a resource by ID.
func (d *DB) GetContentByID(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents WHERE id = $1`
	return scanContent(d.Pool.QueryRow(ctx, query, id))
}

// ListAllContent returns every resource, drafts included, for the admin panel.
func (d *DB) ListAllContent(ctx context.Context) ([]models.Content, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM contents
		ORDER BY updated_at DESC
	`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanContents(rows)
}

// CreateContent inserts a new resource and fills in its generated fields.
func (d *DB) CreateContent(ctx context.Context, c *models.Content) error {
	writable(c)
	query := `
		INSERT INTO contents (title, slug, excerpt, body, type, category, tags, published, featured, metrics, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CASE WHEN $8 THEN NOW() END)
		RETURNING id, view_count, published_at, created_at, updated_at
	`
	err := d.Pool.QueryRow(ctx, query,
		c.Title, c.Slug, c.Excerpt, c.Body, c.Type, c.Category, c.Tags, c.Published, c.Featured, c.Metrics,
	).Scan(&c.ID, &c.ViewCount, &c.PublishedAt, &c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateSlug
	}
	return err
}

// UpdateContent saves an edited resource. Publishing state is changed via SetContentPublished.
func (d *DB) UpdateContent(ctx context.Context, c *models.Content) error {
	writable(c)
	query := `
		UPDATE contents
		SET title = $1, slug = $2, excerpt = $3, body = $4, type = $5, category = $6,
			tags = $7, featured = $8, metrics = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`
	err := d.Pool.QueryRow(ctx, query,
		c.Title, c.Slug, c.Excerpt, c.Body, c.Type, c.Category, c.Tags, c.Featured, c.Metrics, c.ID,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrContentNotFound
	}
	if isUniqueViolation(err) {
		return ErrDuplicateSlug
	}
	return err
}

// UpsertContentBySlug creates or replaces the resource with c.Slug.
// Returns true when a new row was inserted.
func (d *DB) UpsertContentBySlug(ctx context.Context, c *models.Content) (bool, error) {
	writable(c)
	query := `
		INSERT INTO contents (title, slug, excerpt, body, type, category, tags, published, featured, metrics, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CASE WHEN $8 THEN NOW() END)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			excerpt = EXCLUDED.excerpt,
			body = EXCLUDED.body,
			type = EXCLUDED.type,
			category = EXCLUDED.category,
			tags = EXCLUDED.tags,
			published = EXCLUDED.published,
			featured = EXCLUDED.featured,
			metrics = EXCLUDED.metrics,
			published_at = CASE
				WHEN EXCLUDED.published THEN COALESCE(contents.published_at, NOW())
			END,
			updated_at = NOW()
		RETURNING id, view_count, published_at, created_at, updated_at, (xmax = 0)
	`
	var inserted bool
	err := d.Pool.QueryRow(ctx, query,
		c.Title, c.Slug, c.Excerpt, c.Body, c.Type, c.Category, c.Tags, c.Published, c.Featured, c.Metrics,
	).Scan(&c.ID, &c.ViewCount, &c.PublishedAt, &c.CreatedAt, &c.UpdatedAt, &inserted)
	return inserted, err
}

// SetContentPublished publishes or unpublishes a resource. The first publish
// stamps published_at; unpublishing clears it.
func (d *DB) SetContentPublished(ctx context.Context, id uuid.UUID, published bool) error {
	query := `
		UPDATE contents
		SET published = $1,
			published_at = CASE WHEN $1 THEN COALESCE(published_at, NOW()) END,
			updated_at = NOW()
		WHERE id = $2
	`
	result, err := d.Pool.Exec(ctx, query, published, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrContentNotFound
	}
	return nil
}

// DeleteContent deletes a resource by ID.
func (d *DB) DeleteContent(ctx context.Context, id uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `DELETE FROM contents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrContentNotFound
	}
	return nil
}

// IncrementViewCount bumps the view counter of a live resource.
func (d *DB) IncrementViewCount(ctx context.Context, slug string) error {
	_, err := d.Pool.Exec(ctx, `UPDATE contents SET view_count = view_count + 1 WHERE slug = $1 AND published = TRUE`, slug)
	return err
}

// GetContentViewCounts returns view totals for every live resource.
func (d *DB) GetContentViewCounts(ctx context.Context) ([]models.ContentViewCount, error) {
	rows, err := d.Pool.Query(ctx, `SELECT slug, type, view_count FROM contents WHERE published = TRUE ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.ContentViewCount
	for rows.Next() {
		var vc models.ContentViewCount
		if err := rows.Scan(&vc.Slug, &vc.Type, &vc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, vc)
	}
	return counts, rows.Err()
}
