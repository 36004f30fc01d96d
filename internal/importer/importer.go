// Package importer loads resource hub articles from Markdown files with YAML
// front matter and upserts them by slug.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"

	"corysite/internal/logger"
	"corysite/internal/models"
)

// Upserter writes a resource keyed by slug. *db.DB satisfies it.
type Upserter interface {
	UpsertContentBySlug(ctx context.Context, c *models.Content) (bool, error)
}

type frontMatter struct {
	Title     string            `yaml:"title"`
	Slug      string            `yaml:"slug"`
	Excerpt   string            `yaml:"excerpt"`
	Type      string            `yaml:"type"`
	Category  string            `yaml:"category"`
	Tags      []string          `yaml:"tags"`
	Published bool              `yaml:"published"`
	Featured  bool              `yaml:"featured"`
	Metrics   map[string]string `yaml:"metrics"`
}

// Parse reads one document. name is the file name; its base becomes the slug
// when the front matter has none.
func Parse(name string, source []byte) (*models.Content, error) {
	var meta frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}

	if meta.Slug == "" {
		meta.Slug = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}

	c := &models.Content{
		Title:     meta.Title,
		Slug:      meta.Slug,
		Excerpt:   meta.Excerpt,
		Body:      strings.TrimSpace(string(body)),
		Type:      meta.Type,
		Category:  meta.Category,
		Tags:      meta.Tags,
		Published: meta.Published,
		Featured:  meta.Featured,
		Metrics:   meta.Metrics,
	}
	if err := c.Normalize(); err != nil {
		return nil, fmt.Errorf("normalize slug: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Report summarizes an import run.
type Report struct {
	Inserted []string
	Updated  []string
	Failed   map[string]error // file name -> error
}

// Total is the number of files processed.
func (r *Report) Total() int {
	return len(r.Inserted) + len(r.Updated) + len(r.Failed)
}

// Importer upserts Markdown documents into the content store.
type Importer struct {
	store Upserter
	log   logger.Logger
}

// New creates an importer over store.
func New(store Upserter, log logger.Logger) *Importer {
	return &Importer{store: store, log: log}
}

// ImportDir imports every .md file under fsys in path order. A file that fails
// to parse or save is recorded in the report and the run continues. The
// returned error is only set for walk failures and cancellation.
func (im *Importer) ImportDir(ctx context.Context, fsys fs.FS) (*Report, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(path.Ext(p), ".md") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk import dir: %w", err)
	}
	sort.Strings(files)

	report := &Report{Failed: make(map[string]error)}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		inserted, err := im.importFile(ctx, fsys, name)
		if err != nil {
			report.Failed[name] = err
			im.log.WithError(err).Warn("import failed", logger.Fields{"file": name})
			continue
		}
		if inserted {
			report.Inserted = append(report.Inserted, name)
		} else {
			report.Updated = append(report.Updated, name)
		}
	}

	im.log.Info("import finished", logger.Fields{
		"inserted": len(report.Inserted),
		"updated":  len(report.Updated),
		"failed":   len(report.Failed),
	})
	return report, nil
}

func (im *Importer) importFile(ctx context.Context, fsys fs.FS, name string) (bool, error) {
	source, err := fs.ReadFile(fsys, name)
	if err != nil {
		return false, err
	}

	c, err := Parse(name, source)
	if err != nil {
		return false, err
	}

	inserted, err := im.store.UpsertContentBySlug(ctx, c)
	if err != nil {
		return false, fmt.Errorf("save %s: %w", c.Slug, err)
	}
	return inserted, nil
}
