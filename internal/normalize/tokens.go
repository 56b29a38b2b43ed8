package normalize

import (
	"fmt"
	"strings"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/models"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/table"
	"github.com/tidwall/gjson"
)

// ParseTokens reads the recently-updated token list. A token without a name
// falls back to its symbol, then its address; one with neither is rejected.
func ParseTokens(body []byte) ([]models.TokenRecord, error) {
	items, err := dataArray(body)
	if err != nil {
		return nil, err
	}

	out := make([]models.TokenRecord, 0, len(items))
	for i, item := range items {
		p := fmt.Sprintf("data.%d.attributes", i)
		attrs := item.Get("attributes")
		if !attrs.IsObject() {
			return nil, &FieldError{Path: p}
		}

		rec := models.TokenRecord{
			Address:     attrs.Get("address").String(),
			Name:        strings.TrimSpace(attrs.Get("name").String()),
			Symbol:      attrs.Get("symbol").String(),
			Description: attrs.Get("description").String(),
			ImageURL:    strings.TrimSpace(attrs.Get("image_url").String()),
			Network:     item.Get("relationships.network.data.id").String(),
			Websites:    []string{},
		}
		if rec.Name == "" {
			rec.Name = rec.Symbol
		}
		if rec.Name == "" {
			rec.Name = rec.Address
		}
		if rec.Name == "" {
			return nil, &FieldError{Path: p + ".name"}
		}

		if rec.GTScore, err = nullFloat(attrs, p, "gt_score"); err != nil {
			return nil, err
		}

		sites := attrs.Get("websites")
		if sites.Exists() && sites.Type != gjson.Null {
			if !sites.IsArray() {
				return nil, &table.CoercionError{Column: p + ".websites", Value: sites.Value()}
			}
			for _, s := range sites.Array() {
				if u := strings.TrimSpace(s.String()); u != "" {
					rec.Websites = append(rec.Websites, u)
				}
			}
		}

		out = append(out, rec)
	}
	return out, nil
}

// TokenTable flattens every token's attributes, like PoolTable does for pools.
func TokenTable(body []byte) (*table.Table, error) {
	items, err := dataArray(body)
	if err != nil {
		return nil, err
	}
	t := table.New()
	for i, item := range items {
		attrs := item.Get("attributes")
		if !attrs.IsObject() {
			return nil, &FieldError{Path: fmt.Sprintf("data.%d.attributes", i)}
		}
		row, order := table.FlattenJSON(attrs)
		t.Append(row, order)
	}
	return t, nil
}
