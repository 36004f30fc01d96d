package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"corysite/internal/config"
	"corysite/internal/db"
	"corysite/internal/importer"
	"corysite/internal/logger"
)

// openDatabase connects using DATABASE_URL unless url overrides it.
func openDatabase(ctx context.Context, url string) (*db.DB, string, error) {
	if url == "" {
		url = config.Load().DatabaseURL
	}
	database, err := db.New(ctx, url)
	if err != nil {
		return nil, "", fmt.Errorf("connect to database: %w", err)
	}
	return database, url, nil
}

func newImportCmd() *cobra.Command {
	var (
		databaseURL string
		migrate     bool
	)

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Import Markdown resources with front matter into the library",
		Long: `Walks dir for .md files and upserts each one by slug. Files that fail
to parse or save are reported and the rest of the run continues.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", args[0])
			}

			ctx := cmd.Context()
			database, url, err := openDatabase(ctx, databaseURL)
			if err != nil {
				return err
			}
			defer database.Close()

			if migrate {
				if err := database.RunMigrations(url); err != nil {
					return fmt.Errorf("run migrations: %w", err)
				}
			}

			log := logger.NewStructured("warn", "console")
			defer func() { _ = log.Sync() }()
			return runImport(ctx, cmd.OutOrStdout(), importer.New(database, log), os.DirFS(args[0]))
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "database to import into (default: $DATABASE_URL)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply migrations before importing")
	return cmd
}

func runImport(ctx context.Context, out io.Writer, im *importer.Importer, dir fs.FS) error {
	report, err := im.ImportDir(ctx, dir)
	if report != nil {
		writeReport(out, report)
	}
	if err != nil {
		return err
	}
	if n := len(report.Failed); n > 0 {
		return fmt.Errorf("%d of %d files failed to import", n, report.Total())
	}
	return nil
}

func writeReport(out io.Writer, r *importer.Report) {
	for _, name := range r.Inserted {
		fmt.Fprintf(out, "inserted  %s\n", name)
	}
	for _, name := range r.Updated {
		fmt.Fprintf(out, "updated   %s\n", name)
	}

	failed := make([]string, 0, len(r.Failed))
	for name := range r.Failed {
		failed = append(failed, name)
	}
	sort.Strings(failed)
	for _, name := range failed {
		fmt.Fprintf(out, "failed    %s: %v\n", name, r.Failed[name])
	}
}

func newMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, url, err := openDatabase(cmd.Context(), databaseURL)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.RunMigrations(url); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "database to migrate (default: $DATABASE_URL)")
	return cmd
}
