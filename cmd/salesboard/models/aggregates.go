package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rows returned by the aggregate queries. Totals keep exact decimal precision until they are
// shaped into responses.

type SummaryRow struct {
	Orders  int64
	Total   decimal.Decimal
	MinDate *time.Time
	MaxDate *time.Time
}

type KPIRow struct {
	Total    decimal.Decimal
	Orders   int64
	Quantity int64
}

type DateTotal struct {
	Date  time.Time
	Total decimal.Decimal
}

type KeyTotal struct {
	Key   string
	Total decimal.Decimal
}

type KeyCount struct {
	Key   string
	Count int64
}

type RegionTotal struct {
	Region *string
	Orders int64
	Total  decimal.Decimal
}

type CityCount struct {
	City   *string
	State  *string
	Orders int64
}

// TopCitiesFilter narrows the top-cities query. Nil dates leave that side open.
type TopCitiesFilter struct {
	Limit     int
	StartDate *time.Time
	EndDate   *time.Time
}

type SalesSummary struct {
	TotalOrders int64   `json:"total_orders"`
	TotalSales  float64 `json:"total_sales"`
	MinDate     *string `json:"min_date"`
	MaxDate     *string `json:"max_date"`
}

type KPISummary struct {
	TotalSales    float64 `json:"total_sales"`
	TotalOrders   int64   `json:"total_orders"`
	TotalQuantity int64   `json:"total_quantity"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

type TrendPoint struct {
	Date       string  `json:"date"`
	TotalSales float64 `json:"total_sales"`
}

type CategorySales struct {
	Category   string  `json:"category"`
	TotalSales float64 `json:"total_sales"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type RegionSales struct {
	Region      *string `json:"region"`
	TotalOrders int64   `json:"total_orders"`
	TotalSales  float64 `json:"total_sales"`
}

type TopCity struct {
	City   *string `json:"city"`
	State  *string `json:"state"`
	Orders int64   `json:"orders"`
}

// RegionLevel selects the shipping column the region breakdown groups by.
type RegionLevel string

const (
	RegionCountry RegionLevel = "country"
	RegionState   RegionLevel = "state"
	RegionCity    RegionLevel = "city"
)
