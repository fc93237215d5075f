package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leengari/schemadb/internal/catalog"
	"github.com/leengari/schemadb/internal/config"
	"github.com/leengari/schemadb/internal/engine"
	"github.com/leengari/schemadb/internal/logging"
	"github.com/leengari/schemadb/internal/storage/badgerstore"
)

// app carries what a command needs once flags and config are resolved
type app struct {
	cfg      config.Config
	output   string
	logger   *slog.Logger
	closeLog func()

	store  *badgerstore.Store
	engine *engine.Engine
}

// close releases the store and flushes the logger
func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("failed to close store", slog.Any("error", err))
		}
		a.store = nil
	}
	if a.closeLog != nil {
		a.closeLog()
		a.closeLog = nil
	}
}

func execute() int {
	a := &app{}
	rootCmd := newRootCmd(a)
	err := rootCmd.Execute()
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	var (
		configPath string
		dataDir    string
		schemaDir  string
		inMemory   bool
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:           "schemadb",
		Short:         "Schema-described tables with validated inserts and indexed lookups",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Apply precedence: flag > config file > default
			if cmd.Flags().Changed("data-dir") {
				cfg.DataDir = dataDir
			}
			if cmd.Flags().Changed("schema-dir") {
				cfg.SchemaDir = schemaDir
			}
			if cmd.Flags().Changed("in-memory") {
				cfg.InMemory = inMemory
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := validateOutputFormat(a.output); err != nil {
				return err
			}

			a.cfg = cfg
			a.logger, a.closeLog = logging.SetupLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.SeqURL)
			slog.SetDefault(a.logger)

			a.logger.Debug("config resolved",
				slog.String("source", cfg.Source()),
				slog.String("data_dir", cfg.DataDir),
				slog.String("schema_dir", cfg.SchemaDir),
				slog.Bool("in_memory", cfg.InMemory),
			)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: nearest "+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for row storage")
	rootCmd.PersistentFlags().StringVar(&schemaDir, "schema-dir", "", "Directory holding one folder per database")
	rootCmd.PersistentFlags().BoolVar(&inMemory, "in-memory", false, "Keep rows in memory only")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(newInitCmd(a))
	rootCmd.AddCommand(newTablesCmd(a))
	rootCmd.AddCommand(newDescribeCmd(a))
	rootCmd.AddCommand(newValidateCmd(a))
	rootCmd.AddCommand(newInsertCmd(a))
	rootCmd.AddCommand(newFindCmd(a))
	rootCmd.AddCommand(newExportCmd(a))

	return rootCmd
}

// databaseDirs lists the schema directories to load: the configured names,
// or every folder under the schema dir
func (a *app) databaseDirs() ([]string, error) {
	names := a.cfg.Databases
	if len(names) == 0 {
		entries, err := os.ReadDir(a.cfg.SchemaDir)
		if os.IsNotExist(err) {
			a.logger.Warn("schema directory does not exist", slog.String("path", a.cfg.SchemaDir))
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read schema directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				names = append(names, e.Name())
			}
		}
	}

	dirs := make([]string, len(names))
	for i, name := range names {
		dirs[i] = filepath.Join(a.cfg.SchemaDir, name)
	}
	return dirs, nil
}

// loadCatalog registers every database schema, collecting all failures
func (a *app) loadCatalog() (*catalog.Registry, error) {
	dirs, err := a.databaseDirs()
	if err != nil {
		return nil, err
	}

	registry := catalog.NewRegistry(a.logger)
	var errs []error
	for _, dir := range dirs {
		if _, err := registry.LoadDatabaseSchema(dir); err != nil {
			errs = append(errs, err)
		}
	}
	return registry, stderrors.Join(errs...)
}

// openEngine loads the catalog, opens the row store and reloads every table
func (a *app) openEngine(ctx context.Context) (*engine.Engine, error) {
	if a.engine != nil {
		return a.engine, nil
	}

	registry, err := a.loadCatalog()
	if err != nil {
		return nil, err
	}

	store, err := badgerstore.Open(badgerstore.Options{
		Path:     a.cfg.DataDir,
		InMemory: a.cfg.InMemory,
		Logger:   a.logger,
	})
	if err != nil {
		return nil, err
	}
	a.store = store

	eng := engine.New(registry, store, a.logger)
	eng.AddObserver(engine.NewLoggingObserver(a.logger))
	if err := eng.Open(ctx); err != nil {
		return nil, fmt.Errorf("open engine: %w", err)
	}
	a.engine = eng
	return eng, nil
}
