package db

import (
	"context"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"corysite/migrations"
)

// DB wraps a pgxpool connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// RunMigrations runs all embedded SQL migrations.
func (d *DB) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}

// SeedDevContent inserts sample resources for development. Skips slugs that already exist.
func (d *DB) SeedDevContent(ctx context.Context) error {
	items := []struct {
		title, slug, excerpt, body, typ, category string
		tags                                      []string
		featured                                  bool
	}{
		{
			"Speed to Lead in Higher Ed", "speed-to-lead", "Why the first five minutes decide the enrollment.",
			"# Speed to Lead\n\nInquiries contacted within **five minutes** are far more likely to apply.\n\n* Respond instantly\n* Follow up on every channel\n\n[Calculate your ROI](/roi)",
			"guide", "enrollment", []string{"speed-to-lead", "enrollment"}, true,
		},
		{
			"How Riverside College Doubled Applications", "riverside-case-study", "Automation took contact rates from 40% to 94%.",
			"## The challenge\n\nA three-person team could not reach *every* inquiry.\n\n## The result\n\n1. Contact rate up to 94%\n2. Applications doubled",
			"case-study", "results", []string{"community-college"}, true,
		},
		{
			"The Admissions Automation Playbook", "automation-playbook", "A step-by-step guide to automating follow-up.",
			"### Step one\n\nAudit your current `touches per lead`.\n\n### Step two\n\nAutomate the first touch.",
			"whitepaper", "operations", []string{"automation", "operations"}, false,
		},
	}

	query := `
		INSERT INTO contents (title, slug, excerpt, body, type, category, tags, published, featured, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, NOW())
		ON CONFLICT (slug) DO NOTHING
	`

	for _, it := range items {
		if _, err := d.Pool.Exec(ctx, query, it.title, it.slug, it.excerpt, it.body, it.typ, it.category, it.tags, it.featured); err != nil {
			return fmt.Errorf("failed to seed content %s: %w", it.slug, err)
		}
	}

	return nil
}
