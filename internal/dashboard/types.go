package dashboard

import (
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/models"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/present"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/table"
)

// PoolOverview is the pool overview page. Each section carries its own error
// so one bad column does not blank the whole page.
type PoolOverview struct {
	Network string       `json:"network"`
	Table   *table.Table `json:"table"`
	Pools   PoolSection  `json:"pools"`
	Top     TopSection   `json:"top"`
	Bars    BarSection   `json:"bars"`
	Pie     PieSection   `json:"pie"`
}

// PoolSection holds the typed pool records, with USD amounts as decimals.
type PoolSection struct {
	Records []models.PoolRecord `json:"records,omitempty"`
	Error   string              `json:"error,omitempty"`
}

type TopSection struct {
	Column string               `json:"column"`
	Rows   *table.Table         `json:"rows,omitempty"`
	Cards  []present.MetricCard `json:"cards,omitempty"`
	Error  string               `json:"error,omitempty"`
}

type BarSection struct {
	Chart *present.BarChart `json:"chart,omitempty"`
	Error string            `json:"error,omitempty"`
}

type PieSection struct {
	Window string            `json:"window"`
	Chart  *present.PieChart `json:"chart,omitempty"`
	Error  string            `json:"error,omitempty"`
}

type TokenPage struct {
	Tokens []present.TokenCard `json:"tokens"`
	Table  *table.Table        `json:"table"` // every attribute, flattened
}

type OHLCVView struct {
	Network   string                    `json:"network"`
	Pool      string                    `json:"pool"`
	Timeframe string                    `json:"timeframe"`
	Chart     *present.CandlestickChart `json:"chart"`
}
