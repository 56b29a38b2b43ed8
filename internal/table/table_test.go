package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const poolAttributes = `{
	"address": "0xabc",
	"name": "WETH / USDC",
	"fdv_usd": null,
	"volume_usd": {"h1": "1200.5", "h24": "90000"},
	"price_change_percentage": {"h1": "5.0", "h24": "-1.25"},
	"transactions": {"h1": {"buys": 3, "sells": 1, "buyers": null}},
	"tags": ["new", "hot"]
}`

func TestFlattenJSON_IsTotalAndOrdered(t *testing.T) {
	row, order := FlattenJSON(gjson.Parse(poolAttributes))

	want := []string{
		"address",
		"name",
		"fdv_usd",
		"volume_usd_h1",
		"volume_usd_h24",
		"price_change_percentage_h1",
		"price_change_percentage_h24",
		"transactions_h1_buys",
		"transactions_h1_sells",
		"transactions_h1_buyers",
		"tags",
	}
	assert.Equal(t, want, order)
	assert.Len(t, row, len(want))

	assert.Equal(t, "0xabc", row["address"])
	assert.Nil(t, row["fdv_usd"])
	assert.Contains(t, row, "fdv_usd")
	assert.Equal(t, "5.0", row["price_change_percentage_h1"])
	assert.Equal(t, float64(3), row["transactions_h1_buys"])
	assert.Equal(t, []any{"new", "hot"}, row["tags"])
}

func TestFlattenJSON_NonObject(t *testing.T) {
	row, order := FlattenJSON(gjson.Parse(`[1,2]`))
	assert.Empty(t, row)
	assert.Empty(t, order)
}

func TestFlatten_MatchesFlattenJSON(t *testing.T) {
	obj, ok := gjson.Parse(poolAttributes).Value().(map[string]any)
	require.True(t, ok)

	fromMap := Flatten(obj)
	fromJSON, _ := FlattenJSON(gjson.Parse(poolAttributes))
	assert.Equal(t, fromJSON, fromMap)
}

func TestFlatten_DeepPaths(t *testing.T) {
	row := Flatten(map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1, "d": "x"},
			"e": true,
		},
		"f": nil,
	})
	assert.Equal(t, Row{"a_b_c": 1, "a_b_d": "x", "a_e": true, "f": nil}, row)
}

func TestFlatten_EmptyNestedObjectYieldsNoColumn(t *testing.T) {
	row := Flatten(map[string]any{"a": map[string]any{}, "b": 1})
	assert.Equal(t, Row{"b": 1}, row)
}

func TestTable_AppendCoalescesColumns(t *testing.T) {
	tb := New()
	tb.Append(Row{"name": "A", "x": 1.0}, []string{"name", "x"})
	tb.Append(Row{"name": "B", "y": 2.0}, []string{"name", "y"})

	assert.Equal(t, []string{"name", "x", "y"}, tb.Columns)
	assert.Equal(t, []any{1.0, nil}, tb.Column("x"))
	assert.Equal(t, []any{nil, 2.0}, tb.Column("y"))
	assert.Equal(t, 2, tb.Len())
}

func TestFromRows_SortsNewColumns(t *testing.T) {
	tb := FromRows([]Row{{"b": 1, "a": 2}, {"c": 3}})
	assert.Equal(t, []string{"a", "b", "c"}, tb.Columns)
}

func TestTable_Project(t *testing.T) {
	tb := FromRows([]Row{{"name": "A", "x": 1.0, "y": 2.0}})
	p := tb.Project("name", "y", "missing")

	assert.Equal(t, []string{"name", "y", "missing"}, p.Columns)
	assert.Equal(t, Row{"name": "A", "y": 2.0}, p.Rows[0])
	// source is untouched
	assert.Len(t, tb.Rows[0], 3)
}

func TestCoercionError_Is(t *testing.T) {
	err := error(&CoercionError{Column: "c", Row: 2, Value: "abc"})
	assert.True(t, errors.Is(err, ErrTypeCoercion))
	assert.Contains(t, err.Error(), `column "c" row 2`)
}
