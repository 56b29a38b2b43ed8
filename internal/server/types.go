package server

import (
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/models"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/table"
)

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK    bool   `json:"ok"`              // Service health status
	Cache string `json:"cache,omitempty"` // Response cache status
}

// NetworksResponse lists the networks GeckoTerminal tracks
type NetworksResponse struct {
	Items []models.Network `json:"items"`
}

// TopPoolsResponse is a ranking of pools by one column
type TopPoolsResponse struct {
	Network string       `json:"network,omitempty"` // Empty means new pools across all networks
	Column  string       `json:"column"`            // Ranked column
	N       int          `json:"n,omitempty"`       // Requested row count
	Nulls   string       `json:"nulls"`             // Null policy used for ranking
	Table   *table.Table `json:"table"`
}
