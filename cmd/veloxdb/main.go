// Package main contains the demo CLI for veloxdb: load a table/seed
// bootstrap file, run ad-hoc filtered scans, and watch a materialized
// view react to a live change.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"veloxdb/dataflow"
	"veloxdb/query"
	"veloxdb/query/planner"
	"veloxdb/reactive"
	"veloxdb/schema"
	"veloxdb/storage"
	"veloxdb/value"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "veloxdb",
		Short: "Embeddable relational engine demo",
	}

	rootCmd.AddCommand(loadCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <bootstrap.toml>",
		Short: "Load a TOML schema+seed file and print the resulting table sizes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := storage.NewTableCache()
			if err := loadBootstrap(args[0], cache); err != nil {
				return err
			}
			for _, name := range cache.TableNames() {
				store, _ := cache.GetTable(name)
				fmt.Printf("%s: %d rows\n", name, store.Len())
			}
			return nil
		},
	}
}

func queryCmd() *cobra.Command {
	var eqFlags []string
	var limit int

	cmd := &cobra.Command{
		Use:   "query <bootstrap.toml> <table>",
		Short: "Run a scan (optionally filtered by --eq col=value) against a loaded table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := storage.NewTableCache()
			if err := loadBootstrap(args[0], cache); err != nil {
				return err
			}
			table := args[1]
			store, ok := cache.GetTable(table)
			if !ok {
				return fmt.Errorf("table %s not found", table)
			}

			logical, err := buildScan(store.Schema, eqFlags)
			if err != nil {
				return err
			}
			if limit > 0 {
				logical = query.Limit(logical, limit, 0)
			}

			ctx := buildExecutionContext(cache)
			plan := planner.Plan(logical, ctx)
			rel, err := planner.Execute(plan, cache)
			if err != nil {
				return err
			}
			printRows(store.Schema, rel.Rows())
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&eqFlags, "eq", nil, "column=value equality filter, may be repeated (ANDed together)")
	cmd.Flags().IntVar(&limit, "limit", 0, "limit the number of rows returned (0 = no limit)")
	return cmd
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <bootstrap.toml> <table>",
		Short: "Register a materialized view over table, delete its last seed row, and print the view before/after",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := storage.NewTableCache()
			if err := loadBootstrap(args[0], cache); err != nil {
				return err
			}
			table := args[1]
			store, ok := cache.GetTable(table)
			if !ok {
				return fmt.Errorf("table %s not found", table)
			}
			rows := store.Scan()
			if len(rows) == 0 {
				return fmt.Errorf("table %s has no seed rows to demonstrate a change against", table)
			}
			victim := rows[len(rows)-1].ID

			op := dataflow.Chain(dataflow.Source{})
			view := reactive.NewMaterializedView("watch:"+table, op, []string{table}, cache)
			view.Seed()

			registry := reactive.NewQueryRegistry()
			id := registry.Register(view.Query())
			defer registry.Unregister(id)

			view.Query().Subscribe(func(rows []value.Row) {
				fmt.Printf("view updated: %d row(s)\n", len(rows))
			})

			fmt.Printf("before: %d row(s)\n", view.Query().Len())

			tx := storage.Begin()
			if _, err := tx.Delete(cache, table, victim); err != nil {
				return err
			}
			diffs := tx.Journal().AllDiffs()
			if _, err := tx.Commit(cache); err != nil {
				return err
			}
			for tbl, diff := range diffs {
				registry.OnTableChange(tbl, diff.ChangedRowIDs())
			}

			fmt.Printf("after: %d row(s)\n", view.Query().Len())
			return nil
		},
	}
}

// buildScan constructs a Scan(table), optionally wrapped in a chain of
// AND-combined equality filters parsed from "--eq col=value" flags.
func buildScan(tbl *schema.Table, eqFlags []string) (*query.LogicalPlan, error) {
	plan := query.Scan(tbl.Name)
	for _, f := range eqFlags {
		parts := strings.SplitN(f, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --eq %q, expected col=value", f)
		}
		colName, raw := parts[0], parts[1]
		pos, ok := tbl.GetColumnIndex(colName)
		if !ok {
			return nil, fmt.Errorf("column %s not found on table %s", colName, tbl.Name)
		}
		col, _ := tbl.GetColumn(colName)
		lit, err := parseLiteral(col.Type, raw)
		if err != nil {
			return nil, err
		}
		predicate := query.Eq(query.Col(tbl.Name, colName, pos), query.Lit(lit))
		plan = query.Filter(plan, predicate)
	}
	return plan, nil
}

func parseLiteral(kind value.Kind, raw string) (value.Value, error) {
	switch kind {
	case value.KindBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return value.Value{}, err
		}
		return value.Boolean(b), nil
	case value.KindInt32:
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int32(int32(n)), nil
	case value.KindInt64, value.KindDateTime:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return value.Value{}, err
		}
		if kind == value.KindDateTime {
			return value.DateTime(n), nil
		}
		return value.Int64(n), nil
	case value.KindFloat64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float64(f), nil
	default:
		return value.String(raw), nil
	}
}

// buildExecutionContext snapshots every table's row count and index
// shapes into a query.ExecutionContext for the optimizer's context-aware
// passes.
func buildExecutionContext(cache *storage.TableCache) *query.ExecutionContext {
	ctx := query.NewExecutionContext()
	for _, name := range cache.TableNames() {
		store, _ := cache.GetTable(name)
		pk := store.Schema.PrimaryKey()
		var indexes []query.IndexInfo
		for _, def := range store.Schema.Indexes {
			cols := make([]string, len(def.Columns))
			for i, c := range def.Columns {
				cols[i] = c.Name
			}
			info := query.NewIndexInfo(def.Name, cols, def.Unique)
			info.PK = def.Name == pk.Name
			if def.Type == schema.IndexGin {
				info.Gin = true
			} else if idx, ok := store.Index(def.Name); ok {
				info.Cost = estimateIndexCost(store.Len(), idx.Len())
			}
			indexes = append(indexes, info)
		}
		ctx.RegisterTable(name, query.TableStats{RowCount: store.Len(), Indexes: indexes})
	}
	return ctx
}

// estimateIndexCost approximates index.Cost(Only(key)) from a snapshot
// of row and distinct-key counts: the average number of rows posted
// under one key, the same "rows per key" quantity a live index would
// report for a narrow equality lookup.
func estimateIndexCost(rowCount, distinctKeys int) int {
	if distinctKeys <= 0 {
		return rowCount
	}
	cost := rowCount / distinctKeys
	if rowCount%distinctKeys != 0 {
		cost++
	}
	if cost <= 0 {
		cost = 1
	}
	return cost
}

func printRows(tbl *schema.Table, rows []query.Row) {
	names := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		names[i] = c.Name
	}
	fmt.Println(strings.Join(names, "\t"))
	for _, r := range rows {
		cells := make([]string, len(names))
		for i := range names {
			cells[i] = r.Get(i).String()
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
}
