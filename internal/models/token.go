package models

import "time"

type TokenRecord struct {
	Address     string   `json:"address"`
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	Description string   `json:"description"`
	GTScore     *float64 `json:"gt_score"`
	ImageURL    string   `json:"image_url,omitempty"`
	Websites    []string `json:"websites"`
	Network     string   `json:"network,omitempty"`
}

// Candle is one OHLCV time bucket.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

type TokenMeta struct {
	Address string `json:"address,omitempty"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol,omitempty"`
}

type OHLCVMeta struct {
	Base  TokenMeta `json:"base"`
	Quote TokenMeta `json:"quote"`
}

// OHLCVSeries holds candles sorted ascending by time. Empty is set when the
// payload carried no candles at all.
type OHLCVSeries struct {
	Candles []Candle  `json:"candles"`
	Meta    OHLCVMeta `json:"meta"`
	Empty   bool      `json:"empty"`
}
