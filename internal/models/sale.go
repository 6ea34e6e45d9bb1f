package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is one row of the loaded dataset. Revenue is always >= 0; rows
// that fail that invariant are dropped during load. OrderID and
// Quantity are optional columns, zero-valued when absent.
type Sale struct {
	Date     time.Time
	OrderID  string
	City     string
	Channel  string
	Category string
	Product  string
	Revenue  decimal.Decimal
	Quantity int
}

// Dataset is an ordered, immutable snapshot of sale records. It is
// created on load and superseded wholesale on re-upload, never mutated.
type Dataset []Sale

// FilterSelection captures the active dashboard controls. A zero Start
// or End leaves that side of the date range open. Empty slices mean
// "no restriction", not "match nothing".
type FilterSelection struct {
	Start      time.Time
	End        time.Time
	Cities     []string
	Channels   []string
	Categories []string
}

type KPISummary struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	OrderCount        int             `json:"order_count"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// DailyRevenue is one point of the day series. Date is formatted as
// YYYY-MM-DD so lexical order matches chronological order.
type DailyRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// RevenueBreakdown is one slice of a grouped dimension (city, channel),
// sorted descending by revenue with alphabetical tie-breaks.
type RevenueBreakdown struct {
	Key     string          `json:"key"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type TopProduct struct {
	Product string          `json:"product"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// MonthlyRevenue carries a running total alongside each month's sum.
type MonthlyRevenue struct {
	Month      string          `json:"month"`
	Revenue    decimal.Decimal `json:"revenue"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

// FilterOptions holds the distinct values the UI offers as filter
// controls, derived from the loaded dataset.
type FilterOptions struct {
	Cities     []string `json:"cities"`
	Channels   []string `json:"channels"`
	Categories []string `json:"categories"`
	MinDate    string   `json:"min_date,omitempty"`
	MaxDate    string   `json:"max_date,omitempty"`
}

// LoadReport describes the outcome of the most recent dataset load,
// including how many malformed rows were skipped.
type LoadReport struct {
	Records     int       `json:"records"`
	SkippedRows int       `json:"skipped_rows"`
	Source      string    `json:"source"`
	LoadedAt    time.Time `json:"loaded_at"`
}
