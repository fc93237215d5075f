package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leengari/schemadb/internal/domain/data"
	"github.com/leengari/schemadb/internal/query/search"
	"github.com/leengari/schemadb/internal/storage/writer"
)

func newInsertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "insert <database> <table> <json>",
		Short:   "Validate and store a row, printing its _uid",
		Example: `  schemadb insert main users '{"name":"Alice","email":"alice@example.com"}'`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := data.FromJSON([]byte(args[2]))
			if err != nil {
				return fmt.Errorf("parse row: %w", err)
			}

			eng, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			uid, err := eng.Insert(cmd.Context(), args[0], args[1], row)
			if err != nil {
				return err
			}

			if a.isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]string{"_uid": uid})
			}
			fmt.Fprintln(cmd.OutOrStdout(), uid)
			return nil
		},
	}
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <database> <table> <key=value>...",
		Short: "Find rows matching every key=value condition",
		Long: `Conditions are combined with AND. When the condition keys are exactly the
members of an index, that index answers the query directly.`,
		Example: `  schemadb find main users country=KE
  schemadb find main users age=30 country=KE --output json`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := search.ParseEqualities(args[2:])
			if err != nil {
				return err
			}

			eng, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := eng.Search(args[0], args[1], q)
			if err != nil {
				return err
			}

			if a.isJSON() {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			t, err := eng.Table(args[0], args[1])
			if err != nil {
				return err
			}
			header := t.Schema().ColumnNames()
			out := make([][]string, len(rows))
			for i, row := range rows {
				line := make([]string, len(header))
				for j, col := range header {
					line[j] = cell(row.Data[col])
				}
				out[i] = line
			}
			return printTable(cmd.OutOrStdout(), header, out)
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "export <database> <dir>",
		Short: "Write table schemas as meta.json files",
		Example: `  schemadb export main ./out
  schemadb export main ./out --table users`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := a.loadCatalog()
			if err != nil {
				return err
			}

			if table != "" {
				ts, err := registry.Table(args[0], table)
				if err != nil {
					return err
				}
				path, err := writer.SaveTableMeta(args[1], ts)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}

			tables, err := registry.Tables(args[0])
			if err != nil {
				return err
			}
			if err := writer.SaveDatabaseMeta(args[1], args[0], tables); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d tables to %s\n", len(tables), args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&table, "table", "t", "", "Export a single table")
	return cmd
}
