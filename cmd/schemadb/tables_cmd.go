package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leengari/schemadb/internal/domain/schema"
)

func newTablesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List loaded databases and their tables",
		Example: `  schemadb tables
  schemadb tables --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}

			type entry struct {
				Database string `json:"database"`
				Table    string `json:"table"`
				Rows     int    `json:"rows"`
				Indexes  int    `json:"indexes"`
			}
			var entries []entry
			for _, db := range eng.Catalog().Databases() {
				names, err := eng.Tables(db)
				if err != nil {
					return err
				}
				for _, name := range names {
					t, err := eng.Table(db, name)
					if err != nil {
						return err
					}
					entries = append(entries, entry{
						Database: db,
						Table:    name,
						Rows:     t.Count(),
						Indexes:  len(t.Schema().Indexes),
					})
				}
			}

			if a.isJSON() {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{e.Database, e.Table, strconv.Itoa(e.Rows), strconv.Itoa(e.Indexes)}
			}
			return printTable(cmd.OutOrStdout(), []string{"database", "table", "rows", "indexes"}, rows)
		},
	}
}

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <database> <table>",
		Short: "Show a table's columns, indexes and primary key",
		Example: `  schemadb describe main users
  schemadb describe main users --output json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := a.loadCatalog()
			if err != nil {
				return err
			}
			ts, err := registry.Table(args[0], args[1])
			if err != nil {
				return err
			}
			if a.isJSON() {
				return printJSON(cmd.OutOrStdout(), ts)
			}
			return describeTable(cmd, ts)
		},
	}
}

func describeTable(cmd *cobra.Command, ts *schema.TableSchema) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "table: %s\nprimary key: %s\n\n", ts.Name, ts.PrimaryKey)

	var cols [][]string
	for _, name := range ts.ColumnNames() {
		col := ts.Columns[name]
		cols = append(cols, []string{
			name,
			string(col.Type),
			strconv.FormatBool(col.Required),
			cell(col.Default),
			col.Comment,
		})
	}
	if err := printTable(w, []string{"column", "type", "required", "default", "comment"}, cols); err != nil {
		return err
	}

	if len(ts.Indexes) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	idx := make([][]string, len(ts.Indexes))
	for i, index := range ts.Indexes {
		idx[i] = []string{index.Name, string(index.Type), strings.Join(index.Members, ", ")}
	}
	return printTable(w, []string{"index", "type", "members"}, idx)
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every table schema for integrity problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := a.loadCatalog()
			if err != nil {
				return err
			}
			if err := registry.ValidateAll(); err != nil {
				return err
			}

			count := 0
			for _, db := range registry.Databases() {
				names, _ := registry.TableNames(db)
				count += len(names)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d databases, %d tables: ok\n", len(registry.Databases()), count)
			return nil
		},
	}
}
