package table

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const col = "price_change_percentage_h1"

func names(t *Table) []string {
	out := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, fmt.Sprint(r["name"]))
	}
	return out
}

func TestTopN_EndToEndOrdering(t *testing.T) {
	tb := FromRows([]Row{
		{"name": "B", col: "-2.5"},
		{"name": "A", col: "5.0"},
	})

	top, err := TopN(tb, col, 3, "name", col)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(top))
	assert.Equal(t, []string{"name", col}, top.Columns)
	assert.Equal(t, 5.0, top.Rows[0][col])
	assert.Equal(t, -2.5, top.Rows[1][col])
}

func TestTopN_ReturnsMinOfNAndRows(t *testing.T) {
	rows := make([]Row, 0, 5)
	for i := 0; i < 5; i++ {
		rows = append(rows, Row{"name": fmt.Sprint(i), col: float64(i)})
	}
	tb := FromRows(rows)

	for n := 0; n <= 7; n++ {
		top, err := TopN(tb, col, n)
		require.NoError(t, err)
		want := n
		if want > 5 {
			want = 5
		}
		assert.Equal(t, want, top.Len(), "n=%d", n)
	}

	top, err := TopN(tb, col, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, top.Len())
}

func TestTopN_SortedAndIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for iter := 0; iter < 50; iter++ {
		size := r.Intn(12)
		rows := make([]Row, 0, size)
		for i := 0; i < size; i++ {
			var v any = fmt.Sprintf("%.2f", r.Float64()*20-10)
			if r.Intn(5) == 0 {
				v = nil
			}
			rows = append(rows, Row{"name": fmt.Sprint(i), col: v})
		}
		tb := FromRows(rows)
		if !tb.HasColumn(col) {
			continue
		}

		for _, ranker := range []Ranker{{Nulls: NullAsZero}, {Nulls: NullLast}} {
			top, err := ranker.TopN(tb, col, 3)
			require.NoError(t, err)

			prev := 0.0
			for i, row := range top.Rows {
				v, null, err := Float(row[col])
				require.NoError(t, err)
				if null {
					continue
				}
				if i > 0 {
					assert.LessOrEqual(t, v, prev)
				}
				prev = v
			}

			again, err := ranker.TopN(top, col, 3)
			require.NoError(t, err)
			assert.Equal(t, top, again)
		}
	}
}

func TestTopN_NullRanksAsZero(t *testing.T) {
	tb := FromRows([]Row{
		{"name": "neg", col: "-1"},
		{"name": "null", col: nil},
		{"name": "pos", col: "0.5"},
		{"name": "missing"},
	})

	top, err := TopN(tb, col, 4, "name", col)
	require.NoError(t, err)
	assert.Equal(t, []string{"pos", "null", "missing", "neg"}, names(top))
	assert.Equal(t, 0.0, top.Rows[1][col])
	assert.Equal(t, 0.0, top.Rows[2][col])
}

func TestTopN_NullLast(t *testing.T) {
	tb := FromRows([]Row{
		{"name": "null", col: nil},
		{"name": "neg", col: -1.0},
		{"name": "pos", col: 2.0},
	})

	top, err := Ranker{Nulls: NullLast}.TopN(tb, col, 3, "name", col)
	require.NoError(t, err)
	assert.Equal(t, []string{"pos", "neg", "null"}, names(top))
	assert.Nil(t, top.Rows[2][col])
}

func TestTopN_StableTies(t *testing.T) {
	tb := FromRows([]Row{
		{"name": "first", col: "1"},
		{"name": "second", col: 1},
		{"name": "third", col: json.Number("1.0")},
	})

	top, err := TopN(tb, col, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, names(top))
}

func TestTopN_CoercionError(t *testing.T) {
	for _, bad := range []any{"n/a", "", true, []any{1}, "NaN"} {
		tb := FromRows([]Row{
			{"name": "ok", col: "1"},
			{"name": "bad", col: bad},
		})

		_, err := TopN(tb, col, 3)
		require.Error(t, err, "value %#v", bad)
		assert.True(t, errors.Is(err, ErrTypeCoercion))

		var ce *CoercionError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, 1, ce.Row)
		assert.Equal(t, col, ce.Column)
	}
}

func TestTopN_UnknownColumn(t *testing.T) {
	tb := FromRows([]Row{{"name": "A", col: 1.0}})

	_, err := TopN(tb, "volume", 3)
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = TopN(tb, col, 3, "name", "nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = TopN(nil, col, 3)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestTopN_EmptyTable(t *testing.T) {
	top, err := TopN(New(), col, 3, "name", col)
	require.NoError(t, err)
	assert.Equal(t, 0, top.Len())
	assert.NotNil(t, top.Rows)
	assert.Equal(t, []string{"name", col}, top.Columns)

	top, err = Ranker{Nulls: NullLast}.TopN(New(), col, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, top.Len())
	assert.Empty(t, top.Columns)
}

func TestTopN_DoesNotMutateInput(t *testing.T) {
	tb := FromRows([]Row{{"name": "A", col: "3"}, {"name": "B", col: "4"}})

	_, err := TopN(tb, col, 2)
	require.NoError(t, err)
	assert.Equal(t, "3", tb.Rows[0][col])
	assert.Equal(t, "A", tb.Rows[0]["name"])
}

func TestParseNullPolicy(t *testing.T) {
	p, err := ParseNullPolicy("")
	require.NoError(t, err)
	assert.Equal(t, NullAsZero, p)

	p, err = ParseNullPolicy("LAST")
	require.NoError(t, err)
	assert.Equal(t, NullLast, p)
	assert.Equal(t, "last", p.String())

	_, err = ParseNullPolicy("first")
	assert.Error(t, err)
}
