package normalize

import (
	"fmt"
	"time"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/models"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/table"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// document validates body and returns its top-level data value.
func document(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, ErrInvalidJSON
	}
	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return gjson.Result{}, &FieldError{Path: "data"}
	}
	return data, nil
}

func dataArray(body []byte) ([]gjson.Result, error) {
	data, err := document(body)
	if err != nil {
		return nil, err
	}
	if !data.IsArray() {
		return nil, &FieldError{Path: "data", Reason: "expected an array"}
	}
	return data.Array(), nil
}

// poolAttributes returns the attributes object of every pool, requiring each
// to carry an address and a name.
func poolAttributes(body []byte) ([]gjson.Result, error) {
	items, err := dataArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]gjson.Result, 0, len(items))
	for i, item := range items {
		p := fmt.Sprintf("data.%d.attributes", i)
		attrs := item.Get("attributes")
		if !attrs.IsObject() {
			return nil, &FieldError{Path: p}
		}
		if _, err := requiredString(attrs, p, "address"); err != nil {
			return nil, err
		}
		if _, err := requiredString(attrs, p, "name"); err != nil {
			return nil, err
		}
		out = append(out, attrs)
	}
	return out, nil
}

// PoolTable flattens the attributes object of every pool into one row.
// Values are left as sent; only address and name are checked.
func PoolTable(body []byte) (*table.Table, error) {
	pools, err := poolAttributes(body)
	if err != nil {
		return nil, err
	}
	t := table.New()
	for _, attrs := range pools {
		row, order := table.FlattenJSON(attrs)
		t.Append(row, order)
	}
	return t, nil
}

// ParsePools validates a pool list payload into typed records. address and
// name are required; optional numbers stay null instead of becoming zero.
func ParsePools(body []byte) ([]models.PoolRecord, error) {
	pools, err := poolAttributes(body)
	if err != nil {
		return nil, err
	}

	out := make([]models.PoolRecord, 0, len(pools))
	for i, attrs := range pools {
		p := fmt.Sprintf("data.%d.attributes", i)
		rec := models.PoolRecord{
			Address: attrs.Get("address").String(),
			Name:    attrs.Get("name").String(),
		}
		if ts := attrs.Get("pool_created_at").String(); ts != "" {
			created, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				return nil, &FieldError{Path: p + ".pool_created_at", Reason: err.Error()}
			}
			rec.CreatedAt = created.UTC()
		}

		if rec.FDVUSD, err = nullDecimal(attrs, p, "fdv_usd"); err != nil {
			return nil, err
		}
		if rec.MarketCapUSD, err = nullDecimal(attrs, p, "market_cap_usd"); err != nil {
			return nil, err
		}
		if rec.ReserveUSD, err = nullDecimal(attrs, p, "reserve_in_usd"); err != nil {
			return nil, err
		}

		vol1, err := nullDecimal(attrs, p, "volume_usd.h1")
		if err != nil {
			return nil, err
		}
		vol24, err := nullDecimal(attrs, p, "volume_usd.h24")
		if err != nil {
			return nil, err
		}
		rec.VolumeUSDH1, rec.VolumeUSDH24 = vol1.Decimal, vol24.Decimal

		if rec.PriceChangePercentH1, err = nullFloat(attrs, p, "price_change_percentage.h1"); err != nil {
			return nil, err
		}
		if rec.PriceChangePercentH24, err = nullFloat(attrs, p, "price_change_percentage.h24"); err != nil {
			return nil, err
		}

		if rec.TransactionsH1Buys, err = countField(attrs, p, "transactions.h1.buys"); err != nil {
			return nil, err
		}
		if rec.TransactionsH1Sells, err = countField(attrs, p, "transactions.h1.sells"); err != nil {
			return nil, err
		}

		out = append(out, rec)
	}
	return out, nil
}

// ParseNetworks reads the network selector entries.
func ParseNetworks(body []byte) ([]models.Network, error) {
	items, err := dataArray(body)
	if err != nil {
		return nil, err
	}
	out := make([]models.Network, 0, len(items))
	for i, item := range items {
		id := item.Get("id").String()
		if id == "" {
			return nil, &FieldError{Path: fmt.Sprintf("data.%d.id", i)}
		}
		name := item.Get("attributes.name").String()
		if name == "" {
			name = id
		}
		out = append(out, models.Network{ID: id, Name: name})
	}
	return out, nil
}

func requiredString(obj gjson.Result, prefix, path string) (string, error) {
	v := obj.Get(path)
	if v.Type != gjson.String || v.String() == "" {
		return "", &FieldError{Path: prefix + "." + path}
	}
	return v.String(), nil
}

func nullDecimal(obj gjson.Result, prefix, path string) (decimal.NullDecimal, error) {
	v := obj.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s.%s: %v", table.ErrTypeCoercion, prefix, path, err)
	}
	return decimal.NewNullDecimal(d), nil
}

func nullFloat(obj gjson.Result, prefix, path string) (*float64, error) {
	v := obj.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}
	var raw any = v.Value()
	f, null, err := table.Float(raw)
	if err != nil {
		return nil, &table.CoercionError{Column: prefix + "." + path, Value: raw}
	}
	if null {
		return nil, nil
	}
	return &f, nil
}

func countField(obj gjson.Result, prefix, path string) (int64, error) {
	v := obj.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return 0, nil
	}
	if v.Type != gjson.Number || v.Float() != float64(v.Int()) {
		return 0, &table.CoercionError{Column: prefix + "." + path, Value: v.Value()}
	}
	return v.Int(), nil
}
