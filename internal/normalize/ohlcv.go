package normalize

import (
	"fmt"
	"sort"
	"time"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/models"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/table"
	"github.com/tidwall/gjson"
)

const (
	ohlcvListPath = "data.attributes.ohlcv_list"
	ohlcvMetaPath = "meta"
)

// ParseOHLCV extracts candles and base/quote metadata. An absent or empty
// ohlcv_list yields a series marked Empty and no error. Candles come back
// sorted ascending by time whatever order the payload used.
func ParseOHLCV(body []byte) (*models.OHLCVSeries, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidJSON
	}

	series := &models.OHLCVSeries{
		Candles: []models.Candle{},
		Meta:    parseMeta(gjson.GetBytes(body, ohlcvMetaPath)),
	}

	list := gjson.GetBytes(body, ohlcvListPath)
	if !list.IsArray() || len(list.Array()) == 0 {
		series.Empty = true
		return series, nil
	}

	for i, entry := range list.Array() {
		c, err := parseCandle(entry)
		if err != nil {
			return nil, fmt.Errorf("%s.%d: %w", ohlcvListPath, i, err)
		}
		series.Candles = append(series.Candles, c)
	}

	sort.SliceStable(series.Candles, func(a, b int) bool {
		return series.Candles[a].Time.Before(series.Candles[b].Time)
	})
	return series, nil
}

func parseCandle(entry gjson.Result) (models.Candle, error) {
	fields := entry.Array()
	if !entry.IsArray() || len(fields) != 6 {
		return models.Candle{}, fmt.Errorf("%w: expected [timestamp, open, high, low, close, volume], got %s",
			table.ErrTypeCoercion, entry.Raw)
	}

	var vals [6]float64
	for i, f := range fields {
		v, null, err := table.Float(f.Value())
		if err != nil || null {
			return models.Candle{}, fmt.Errorf("%w: field %d is %s", table.ErrTypeCoercion, i, f.Raw)
		}
		vals[i] = v
	}

	return models.Candle{
		Time:   time.Unix(int64(vals[0]), 0).UTC(),
		Open:   vals[1],
		High:   vals[2],
		Low:    vals[3],
		Close:  vals[4],
		Volume: vals[5],
	}, nil
}

func parseMeta(meta gjson.Result) models.OHLCVMeta {
	token := func(r gjson.Result) models.TokenMeta {
		return models.TokenMeta{
			Address: r.Get("address").String(),
			Name:    r.Get("name").String(),
			Symbol:  r.Get("symbol").String(),
		}
	}
	return models.OHLCVMeta{
		Base:  token(meta.Get("base")),
		Quote: token(meta.Get("quote")),
	}
}
