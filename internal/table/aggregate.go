package table

import (
	"fmt"
	"math"
)

// TxColumns returns the flattened buy and sell columns of a transaction window.
func TxColumns(window string) (buys, sells string) {
	prefix := "transactions" + Sep + window + Sep
	return prefix + "buys", prefix + "sells"
}

// AggregateBuysSells sums buy and sell counts of one window (e.g. "h1") across
// every row. Rows may be flattened (transactions_h1_buys) or keep the nested
// transactions object. Missing and null counts add nothing.
func AggregateBuysSells(t *Table, window string) (buys, sells int64, err error) {
	if t == nil {
		return 0, 0, nil
	}
	buyCol, sellCol := TxColumns(window)

	for i, row := range t.Rows {
		b, s := row[buyCol], row[sellCol]
		if nested, ok := row["transactions"].(map[string]any); ok {
			if w, ok := nested[window].(map[string]any); ok {
				b, s = w["buys"], w["sells"]
			}
		}

		nb, err := count(b)
		if err != nil {
			return 0, 0, &CoercionError{Column: buyCol, Row: i, Value: b}
		}
		ns, err := count(s)
		if err != nil {
			return 0, 0, &CoercionError{Column: sellCol, Row: i, Value: s}
		}
		buys += nb
		sells += ns
	}
	return buys, sells, nil
}

func count(v any) (int64, error) {
	f, null, err := coerce(v)
	if err != nil {
		return 0, err
	}
	if null {
		return 0, nil
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v is not a whole count", ErrTypeCoercion, v)
	}
	return int64(f), nil
}
