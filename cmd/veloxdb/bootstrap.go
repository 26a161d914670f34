package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"veloxdb/dberr"
	"veloxdb/schema"
	"veloxdb/storage"
	"veloxdb/value"
)

// bootstrapDoc is the shape of the TOML file cmd/veloxdb loads to stand
// up a database: one or more table definitions plus the seed rows to
// populate them with.
type bootstrapDoc struct {
	Tables []tableDoc `toml:"tables"`
}

type tableDoc struct {
	Name       string                   `toml:"name"`
	Columns    []columnDoc              `toml:"columns"`
	PrimaryKey []string                 `toml:"primary_key"`
	Indexes    []indexDoc               `toml:"indexes"`
	Rows       []map[string]interface{} `toml:"rows"`
}

type columnDoc struct {
	Name    string `toml:"name"`
	Type    string `toml:"type"`
	NotNull bool   `toml:"not_null"`
	Unique  bool   `toml:"unique"`
}

type indexDoc struct {
	Name    string   `toml:"name"`
	Columns []string `toml:"columns"`
	Unique  bool     `toml:"unique"`
	Type    string   `toml:"type"`
}

// loadBootstrap reads path and builds one RowStore per declared table
// inside cache, populated with the declared seed rows.
func loadBootstrap(path string, cache *storage.TableCache) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read bootstrap file: %w", err)
	}
	var doc bootstrapDoc
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return fmt.Errorf("parse bootstrap file: %w", err)
	}
	for _, td := range doc.Tables {
		tbl, err := buildTable(td)
		if err != nil {
			return fmt.Errorf("table %s: %w", td.Name, err)
		}
		store, err := cache.CreateTable(tbl)
		if err != nil {
			return fmt.Errorf("table %s: %w", td.Name, err)
		}
		for i, raw := range td.Rows {
			row, err := rowFromDoc(tbl, raw)
			if err != nil {
				return fmt.Errorf("table %s row %d: %w", td.Name, i, err)
			}
			row.ID = store.NextRowID()
			if _, err := store.Insert(row); err != nil {
				return fmt.Errorf("table %s row %d: %w", td.Name, i, err)
			}
		}
	}
	return nil
}

func buildTable(td tableDoc) (*schema.Table, error) {
	b := schema.NewBuilder(td.Name)
	for _, cd := range td.Columns {
		kind, err := columnKind(cd.Type)
		if err != nil {
			return nil, err
		}
		var opts []schema.ColumnOption
		if cd.NotNull {
			opts = append(opts, schema.NotNull())
		}
		if cd.Unique {
			opts = append(opts, schema.UniqueColumn())
		}
		b = b.AddColumn(cd.Name, kind, opts...)
	}
	if len(td.PrimaryKey) > 0 {
		b = b.AddPrimaryKey(td.PrimaryKey...)
	}
	for _, id := range td.Indexes {
		cols := make([]schema.IndexColumn, len(id.Columns))
		for i, name := range id.Columns {
			cols[i] = schema.IndexColumn{Name: name, Order: schema.Asc}
		}
		b = b.AddIndex(schema.IndexDef{
			Name: id.Name, Columns: cols, Unique: id.Unique, Type: indexType(id.Type),
		})
	}
	return b.Build()
}

func indexType(s string) schema.IndexType {
	switch s {
	case "hash":
		return schema.IndexHash
	case "gin":
		return schema.IndexGin
	default:
		return schema.IndexBTree
	}
}

func columnKind(s string) (value.Kind, error) {
	switch s {
	case "bool", "boolean":
		return value.KindBoolean, nil
	case "int32":
		return value.KindInt32, nil
	case "int64", "int":
		return value.KindInt64, nil
	case "float64", "float":
		return value.KindFloat64, nil
	case "string", "text":
		return value.KindString, nil
	case "datetime", "timestamp":
		return value.KindDateTime, nil
	case "bytes", "blob":
		return value.KindBytes, nil
	case "jsonb", "json":
		return value.KindJsonb, nil
	default:
		return 0, &dberr.InvalidSchemaError{Entity: "column", Message: "unknown type " + s}
	}
}

// rowFromDoc converts one TOML row map (decoded as generic Go values)
// into a value.Row whose Values line up with tbl's column order.
func rowFromDoc(tbl *schema.Table, raw map[string]interface{}) (value.Row, error) {
	vals := make([]value.Value, len(tbl.Columns))
	for i, col := range tbl.Columns {
		v, ok := raw[col.Name]
		if !ok {
			if !col.Nullable {
				return value.Row{}, &dberr.NullConstraintError{Table: tbl.Name, Column: col.Name}
			}
			vals[i] = value.Null()
			continue
		}
		conv, err := toValue(col, v)
		if err != nil {
			return value.Row{}, err
		}
		vals[i] = conv
	}
	return value.New(0, vals), nil
}

func toValue(col schema.Column, raw interface{}) (value.Value, error) {
	if raw == nil {
		return value.Null(), nil
	}
	switch col.Type {
	case value.KindBoolean:
		b, ok := raw.(bool)
		if !ok {
			return value.Value{}, badRowType(col)
		}
		return value.Boolean(b), nil
	case value.KindInt32:
		n, ok := raw.(int64)
		if !ok {
			return value.Value{}, badRowType(col)
		}
		return value.Int32(int32(n)), nil
	case value.KindInt64, value.KindDateTime:
		n, ok := raw.(int64)
		if !ok {
			return value.Value{}, badRowType(col)
		}
		if col.Type == value.KindDateTime {
			return value.DateTime(n), nil
		}
		return value.Int64(n), nil
	case value.KindFloat64:
		switch n := raw.(type) {
		case float64:
			return value.Float64(n), nil
		case int64:
			return value.Float64(float64(n)), nil
		default:
			return value.Value{}, badRowType(col)
		}
	case value.KindString:
		s, ok := raw.(string)
		if !ok {
			return value.Value{}, badRowType(col)
		}
		return value.String(s), nil
	case value.KindBytes:
		s, ok := raw.(string)
		if !ok {
			return value.Value{}, badRowType(col)
		}
		return value.Bytes([]byte(s)), nil
	default:
		return value.Value{}, &dberr.InvalidSchemaError{Entity: "column", Name: col.Name, Message: "jsonb seed rows are not supported by the bootstrap loader"}
	}
}

func badRowType(col schema.Column) error {
	return &dberr.InvalidSchemaError{Entity: "column", Name: col.Name, Message: "seed value does not match declared type " + col.Type.String()}
}
