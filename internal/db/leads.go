package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"corysite/internal/models"
)

const leadColumns = `id, source, name, email, phone, institution, role, message, roi, page_url, created_at, forwarded_at`

func scanLeads(rows pgx.Rows) ([]models.Lead, error) {
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		var l models.Lead
		if err := rows.Scan(
			&l.ID,
			&l.Source,
			&l.Name,
			&l.Email,
			&l.Phone,
			&l.Institution,
			&l.Role,
			&l.Message,
			&l.ROI,
			&l.PageURL,
			&l.CreatedAt,
			&l.ForwardedAt,
		); err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// InsertLead stores a captured lead and fills in its ID and timestamp.
func (d *DB) InsertLead(ctx context.Context, l *models.Lead) error {
	// A nil map must reach Postgres as SQL NULL, not the JSON literal.
	var roiSnapshot any
	if len(l.ROI) > 0 {
		roiSnapshot = l.ROI
	}
	query := `
		INSERT INTO leads (source, name, email, phone, institution, role, message, roi, page_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	return d.Pool.QueryRow(ctx, query,
		l.Source, l.Name, l.Email, l.Phone, l.Institution, l.Role, l.Message, roiSnapshot, l.PageURL,
	).Scan(&l.ID, &l.CreatedAt)
}

// ListLeads returns the most recent leads first.
func (d *DB) ListLeads(ctx context.Context, limit int) ([]models.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanLeads(rows)
}

// ListUnforwardedLeads returns the oldest leads not yet delivered to the CRM.
func (d *DB) ListUnforwardedLeads(ctx context.Context, limit int) ([]models.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE forwarded_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanLeads(rows)
}

// MarkLeadForwarded records CRM delivery. Already forwarded leads keep their first timestamp.
func (d *DB) MarkLeadForwarded(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE leads SET forwarded_at = COALESCE(forwarded_at, NOW()) WHERE id = $1`
	result, err := d.Pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// CountLeadsBySource returns lead totals per source.
func (d *DB) CountLeadsBySource(ctx context.Context) (map[string]int64, error) {
	rows, err := d.Pool.Query(ctx, `SELECT source, COUNT(*) FROM leads GROUP BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var source string
		var n int64
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		counts[source] = n
	}
	return counts, rows.Err()
}
