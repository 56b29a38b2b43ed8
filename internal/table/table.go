// Package table turns nested JSON attribute objects into flat, column-ordered
// tables and ranks them.
package table

import (
	"slices"

	"github.com/tidwall/gjson"
)

// Sep joins the key path of a flattened column.
const Sep = "_"

// Row maps a flattened column name to its leaf value. Leaves are string,
// float64, bool, []any, nil, or whatever scalar Flatten was handed.
type Row map[string]any

// Table is a list of rows coalesced into columnar form. Columns are kept in
// first-seen order; a row lacking a column reads as nil.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

func New() *Table {
	return &Table{Columns: []string{}, Rows: []Row{}}
}

// FromRows builds a table from rows whose key order is unknown. New columns of
// each row are appended in sorted order so the result is deterministic.
func FromRows(rows []Row) *Table {
	t := New()
	for _, r := range rows {
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		t.Append(r, keys)
	}
	return t
}

// Append adds a row. order lists the row's columns in the order they should
// be registered if the table has not seen them yet.
func (t *Table) Append(r Row, order []string) {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		seen[c] = struct{}{}
	}
	for _, k := range order {
		if _, ok := seen[k]; ok {
			continue
		}
		if _, ok := r[k]; !ok {
			continue
		}
		seen[k] = struct{}{}
		t.Columns = append(t.Columns, k)
	}
	t.Rows = append(t.Rows, r)
}

func (t *Table) Len() int {
	return len(t.Rows)
}

func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// Column returns the cells of one column, nil where a row lacks it.
func (t *Table) Column(name string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}

// Project returns a new table restricted to cols. Rows are copied.
func (t *Table) Project(cols ...string) *Table {
	out := &Table{Columns: slices.Clone(cols), Rows: make([]Row, 0, len(t.Rows))}
	for _, r := range t.Rows {
		nr := make(Row, len(cols))
		for _, c := range cols {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// Flatten walks a decoded JSON object. Nested objects recurse with their key
// as prefix; every other value is emitted under the joined key path.
func Flatten(obj map[string]any) Row {
	out := make(Row, len(obj))
	flattenMap(obj, "", out)
	return out
}

func flattenMap(obj map[string]any, prefix string, out Row) {
	for k, v := range obj {
		key := joinKey(prefix, k)
		if child, ok := v.(map[string]any); ok {
			flattenMap(child, key, out)
			continue
		}
		out[key] = v
	}
}

// FlattenJSON is Flatten over a raw JSON object. It also returns the columns
// in document order. A non-object result yields an empty row.
func FlattenJSON(obj gjson.Result) (Row, []string) {
	out := Row{}
	var order []string
	if !obj.IsObject() {
		return out, order
	}
	flattenResult(obj, "", out, &order)
	return out, order
}

func flattenResult(obj gjson.Result, prefix string, out Row, order *[]string) {
	obj.ForEach(func(k, v gjson.Result) bool {
		key := joinKey(prefix, k.String())
		if v.IsObject() {
			flattenResult(v, key, out, order)
			return true
		}
		if _, dup := out[key]; !dup {
			*order = append(*order, key)
		}
		out[key] = leaf(v)
		return true
	})
}

func leaf(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return v.Float()
	case gjson.String:
		return v.String()
	default:
		// arrays
		return v.Value()
	}
}

func joinKey(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + Sep + k
}
