package main

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed seed
var seedContent embed.FS

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the example 'main' database into the schema directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seedFS, err := fs.Sub(seedContent, "seed")
			if err != nil {
				return err
			}
			seeded, err := ensureDatabaseSeeded(a.cfg.SchemaDir, seedFS, "main")
			if err != nil {
				return fmt.Errorf("seed main database: %w", err)
			}
			target := filepath.Join(a.cfg.SchemaDir, "main")
			if !seeded {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", target)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", target)
			return nil
		},
	}
}

// ensureDatabaseSeeded copies dbName from seedFS into basePath unless it is
// already there. Reports whether anything was written.
func ensureDatabaseSeeded(basePath string, seedFS fs.FS, dbName string) (bool, error) {
	targetDir := filepath.Join(basePath, dbName)

	// Check if target exists
	if _, err := os.Stat(targetDir); !os.IsNotExist(err) {
		return false, err
	}

	slog.Info("Seeding database...", "database", dbName)

	err := fs.WalkDir(seedFS, dbName, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Embedded paths look like "main/tables/users.yaml"
		targetPath := filepath.Join(basePath, filepath.FromSlash(path))

		if d.IsDir() {
			return os.MkdirAll(targetPath, 0755)
		}

		body, err := fs.ReadFile(seedFS, path)
		if err != nil {
			return err
		}
		return os.WriteFile(targetPath, body, 0644)
	})
	return err == nil, err
}
