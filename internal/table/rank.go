package table

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// NullPolicy decides where null cells of the ranking column land.
type NullPolicy int

const (
	// NullAsZero ranks a null cell as 0.0 and writes 0.0 into the output.
	NullAsZero NullPolicy = iota
	// NullLast keeps null cells as nil and ranks them after every number.
	NullLast
)

func ParseNullPolicy(s string) (NullPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero":
		return NullAsZero, nil
	case "last":
		return NullLast, nil
	}
	return NullAsZero, fmt.Errorf("unknown null policy %q", s)
}

func (p NullPolicy) String() string {
	if p == NullLast {
		return "last"
	}
	return "zero"
}

type Ranker struct {
	Nulls NullPolicy
}

// TopN ranks with the default NullAsZero policy.
func TopN(t *Table, column string, n int, project ...string) (*Table, error) {
	return Ranker{}.TopN(t, column, n, project...)
}

// TopN returns the first n rows of t sorted descending by column, ties kept in
// input order. The ranking column is coerced to float64 in the output; any
// non-null cell that is not numeric fails the whole call. project restricts
// the output columns, defaulting to all of t's columns. An empty table has
// no columns to check against and ranks to an empty table.
func (r Ranker) TopN(t *Table, column string, n int, project ...string) (*Table, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	if t.Len() == 0 {
		cols := project
		if len(cols) == 0 {
			cols = t.Columns
		}
		return &Table{Columns: append([]string{}, cols...), Rows: []Row{}}, nil
	}
	if !t.HasColumn(column) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}

	type keyed struct {
		idx  int
		val  float64
		null bool
	}
	keys := make([]keyed, len(t.Rows))
	for i, row := range t.Rows {
		f, null, err := coerce(row[column])
		if err != nil {
			return nil, &CoercionError{Column: column, Row: i, Value: row[column]}
		}
		if null && r.Nulls == NullAsZero {
			f, null = 0, false
		}
		keys[i] = keyed{idx: i, val: f, null: null}
	}

	sort.SliceStable(keys, func(a, b int) bool {
		ka, kb := keys[a], keys[b]
		if ka.null != kb.null {
			return kb.null
		}
		return ka.val > kb.val
	})

	if n < 0 {
		n = 0
	}
	if n > len(keys) {
		n = len(keys)
	}

	cols := project
	if len(cols) == 0 {
		cols = t.Columns
	}
	for _, c := range cols {
		if !t.HasColumn(c) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}

	out := &Table{Columns: append([]string(nil), cols...), Rows: make([]Row, 0, n)}
	for _, k := range keys[:n] {
		src := t.Rows[k.idx]
		row := make(Row, len(cols)+1)
		for _, c := range cols {
			if v, ok := src[c]; ok {
				row[c] = v
			}
		}
		if slices.Contains(cols, column) {
			if k.null {
				row[column] = nil
			} else {
				row[column] = k.val
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// Float reads a cell as float64. null reports a nil cell.
func Float(v any) (f float64, null bool, err error) {
	return coerce(v)
}

func coerce(v any) (float64, bool, error) {
	switch x := v.(type) {
	case nil:
		return 0, true, nil
	case float64:
		if math.IsNaN(x) {
			return 0, false, ErrTypeCoercion
		}
		return x, false, nil
	case float32:
		if math.IsNaN(float64(x)) {
			return 0, false, ErrTypeCoercion
		}
		return float64(x), false, nil
	case int:
		return float64(x), false, nil
	case int32:
		return float64(x), false, nil
	case int64:
		return float64(x), false, nil
	case uint:
		return float64(x), false, nil
	case uint32:
		return float64(x), false, nil
	case uint64:
		return float64(x), false, nil
	case json.Number:
		return parseNumeric(string(x))
	case string:
		return parseNumeric(x)
	}
	return 0, false, ErrTypeCoercion
}

func parseNumeric(s string) (float64, bool, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false, ErrTypeCoercion
	}
	return f, false, nil
}
