// Package present shapes ranked tables and candle series into the payloads
// the dashboard widgets draw: metric cards, bar, pie and candlestick series.
package present

import (
	"fmt"
	"time"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/constants"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/models"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/table"
)

type MetricCard struct {
	Label string  `json:"label"`
	Value string  `json:"value"`
	Raw   float64 `json:"raw"`
	Buys  int64   `json:"buys"`
	Sells int64   `json:"sells"`
}

type BarPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type BarChart struct {
	Title  string     `json:"title"`
	XLabel string     `json:"x_label"`
	Points []BarPoint `json:"points"`
}

type PieSlice struct {
	Label   string `json:"label"`
	Value   int64  `json:"value"`
	Percent string `json:"percent"`
}

type PieChart struct {
	Title  string     `json:"title"`
	Total  int64      `json:"total"`
	Slices []PieSlice `json:"slices"`
}

type CandlePoint struct {
	Time   string  `json:"time"`
	Unix   int64   `json:"unix"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

type CandlestickChart struct {
	Title   string           `json:"title"`
	Meta    models.OHLCVMeta `json:"meta"`
	Candles []CandlePoint    `json:"candles"`
	Empty   bool             `json:"empty"`
}

// MetricCards turns ranked rows into one card per pool. Rows carry the ranked
// column plus the buy and sell counts of window.
func MetricCards(top *table.Table, column, window string) ([]MetricCard, error) {
	if top == nil {
		return []MetricCard{}, nil
	}
	cards := make([]MetricCard, 0, top.Len())
	for i, row := range top.Rows {
		v, null, err := table.Float(row[column])
		if err != nil {
			return nil, &table.CoercionError{Column: column, Row: i, Value: row[column]}
		}
		value := fmt.Sprintf("%.2f%%", v)
		if null {
			value = "n/a"
		}
		buys, sells, err := table.AggregateBuysSells(&table.Table{Rows: []table.Row{row}}, window)
		if err != nil {
			return nil, err
		}
		cards = append(cards, MetricCard{
			Label: fmt.Sprint(row[constants.NameColumn]),
			Value: value,
			Raw:   v,
			Buys:  buys,
			Sells: sells,
		})
	}
	return cards, nil
}

// PriceChangeBars plots column per pool name. Null or blank cells plot as 0;
// anything else non-numeric fails.
func PriceChangeBars(t *table.Table, column string) (*BarChart, error) {
	chart := &BarChart{
		Title:  "Price Change Percentage by Pool",
		XLabel: "Price Change Percentage",
		Points: []BarPoint{},
	}
	if t == nil || t.Len() == 0 {
		return chart, nil
	}
	if !t.HasColumn(column) {
		return nil, fmt.Errorf("%w: %q", table.ErrUnknownColumn, column)
	}
	for i, row := range t.Rows {
		cell := row[column]
		if s, ok := cell.(string); ok && s == "" {
			cell = nil
		}
		v, _, err := table.Float(cell)
		if err != nil {
			return nil, &table.CoercionError{Column: column, Row: i, Value: row[column]}
		}
		chart.Points = append(chart.Points, BarPoint{Name: fmt.Sprint(row[constants.NameColumn]), Value: v})
	}
	return chart, nil
}

func BuySellPie(buys, sells int64) *PieChart {
	total := buys + sells
	share := func(n int64) string {
		if total == 0 {
			return "0.0%"
		}
		return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
	}
	return &PieChart{
		Title: "Buys vs Sells",
		Total: total,
		Slices: []PieSlice{
			{Label: "Buys", Value: buys, Percent: share(buys)},
			{Label: "Sells", Value: sells, Percent: share(sells)},
		},
	}
}

func Candlesticks(series *models.OHLCVSeries) *CandlestickChart {
	chart := &CandlestickChart{Candles: []CandlePoint{}, Empty: true}
	if series == nil {
		return chart
	}
	chart.Meta = series.Meta
	chart.Empty = series.Empty || len(series.Candles) == 0
	chart.Title = fmt.Sprintf("%s / %s", series.Meta.Base.Name, series.Meta.Quote.Name)

	for _, c := range series.Candles {
		chart.Candles = append(chart.Candles, CandlePoint{
			Time:   c.Time.UTC().Format(time.RFC3339),
			Unix:   c.Time.Unix(),
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: c.Volume,
		})
	}
	return chart
}
