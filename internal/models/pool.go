package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PoolRecord is one liquidity pool's attributes at fetch time.
type PoolRecord struct {
	Address      string              `json:"address"`
	Name         string              `json:"name"`
	CreatedAt    time.Time           `json:"pool_created_at"`
	FDVUSD       decimal.NullDecimal `json:"fdv_usd"`
	MarketCapUSD decimal.NullDecimal `json:"market_cap_usd"`
	ReserveUSD   decimal.NullDecimal `json:"reserve_in_usd"`

	VolumeUSDH1  decimal.Decimal `json:"volume_usd_h1"`
	VolumeUSDH24 decimal.Decimal `json:"volume_usd_h24"`

	// nil when the API reports null
	PriceChangePercentH1  *float64 `json:"price_change_percentage_h1"`
	PriceChangePercentH24 *float64 `json:"price_change_percentage_h24"`

	TransactionsH1Buys  int64 `json:"transactions_h1_buys"`
	TransactionsH1Sells int64 `json:"transactions_h1_sells"`
}

// Network is an entry of the network selector.
type Network struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
