package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/models"
)

const (
	UnknownLabel     = "Unknown"
	DefaultPageSize  = 20
	MaxPageSize      = 100
	DefaultTopCities = 10
)

type SalesRepo interface {
	CountSales(ctx context.Context) (int64, error)
	ListSales(ctx context.Context, limit, offset int) ([]models.Sale, error)
	Summary(ctx context.Context) (models.SummaryRow, error)
	KPI(ctx context.Context) (models.KPIRow, error)
	TotalsByDate(ctx context.Context) ([]models.DateTotal, error)
	TotalsByCategory(ctx context.Context, unknown string) ([]models.KeyTotal, error)
	CountsByStatus(ctx context.Context, unknown string) ([]models.KeyCount, error)
	TotalsByRegion(ctx context.Context, level models.RegionLevel) ([]models.RegionTotal, error)
	TopCities(ctx context.Context, f models.TopCitiesFilter) ([]models.CityCount, error)
}

type SalesService struct {
	SalesRepo SalesRepo
}

func NewSalesService(repo SalesRepo) *SalesService {
	return &SalesService{SalesRepo: repo}
}

// SalesPage is one page of sales ordered by id.
type SalesPage struct {
	Sales    []models.Sale
	Total    int64
	Page     int
	NumPages int
}

func (p *SalesPage) HasNext() bool     { return p.Page < p.NumPages }
func (p *SalesPage) HasPrevious() bool { return p.Page > 1 }

// PageSize resolves the page_size parameter: missing or invalid values fall back to the
// default, larger values are capped at MaxPageSize.
func PageSize(raw string) int {
	size, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || size < 1 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// ListSales returns the requested page. page is a 1-based number, "last", or empty for the first page.
func (s *SalesService) ListSales(ctx context.Context, page string, pageSize int) (*SalesPage, error) {
	total, err := s.SalesRepo.CountSales(ctx)
	if err != nil {
		return nil, err
	}
	numPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if numPages < 1 {
		numPages = 1
	}

	var number int
	switch page = strings.TrimSpace(page); page {
	case "":
		number = 1
	case "last":
		number = numPages
	default:
		number, err = strconv.Atoi(page)
		if err != nil {
			return nil, ErrInvalidPage
		}
	}
	if number < 1 || number > numPages {
		return nil, ErrInvalidPage
	}

	sales, err := s.SalesRepo.ListSales(ctx, pageSize, (number-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return &SalesPage{Sales: sales, Total: total, Page: number, NumPages: numPages}, nil
}

func (s *SalesService) Schema() map[string]string {
	return models.SaleSchema()
}

func (s *SalesService) Summary(ctx context.Context) (*models.SalesSummary, error) {
	row, err := s.SalesRepo.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return &models.SalesSummary{
		TotalOrders: row.Orders,
		TotalSales:  row.Total.InexactFloat64(),
		MinDate:     formatDate(row.MinDate),
		MaxDate:     formatDate(row.MaxDate),
	}, nil
}

func (s *SalesService) KPI(ctx context.Context) (*models.KPISummary, error) {
	row, err := s.SalesRepo.KPI(ctx)
	if err != nil {
		return nil, err
	}
	return &models.KPISummary{
		TotalSales:    row.Total.InexactFloat64(),
		TotalOrders:   row.Orders,
		TotalQuantity: row.Quantity,
		AvgOrderValue: AverageOrderValue(row.Total, row.Orders).InexactFloat64(),
	}, nil
}

// AverageOrderValue is total/orders rounded to cents, or zero when there are no orders.
func AverageOrderValue(total decimal.Decimal, orders int64) decimal.Decimal {
	if orders <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(orders)).Round(2)
}

func (s *SalesService) Trend(ctx context.Context) ([]models.TrendPoint, error) {
	rows, err := s.SalesRepo.TotalsByDate(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.TrendPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.TrendPoint{
			Date:       r.Date.Format(models.DateLayout),
			TotalSales: r.Total.InexactFloat64(),
		})
	}
	return out, nil
}

func (s *SalesService) ByCategory(ctx context.Context) ([]models.CategorySales, error) {
	rows, err := s.SalesRepo.TotalsByCategory(ctx, UnknownLabel)
	if err != nil {
		return nil, err
	}
	out := make([]models.CategorySales, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.CategorySales{Category: r.Key, TotalSales: r.Total.InexactFloat64()})
	}
	return out, nil
}

func (s *SalesService) ByStatus(ctx context.Context) ([]models.StatusCount, error) {
	rows, err := s.SalesRepo.CountsByStatus(ctx, UnknownLabel)
	if err != nil {
		return nil, err
	}
	out := make([]models.StatusCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.StatusCount{Status: r.Key, Count: r.Count})
	}
	return out, nil
}

// ByRegion groups on the raw shipping column. Unlike category and status, NULL regions are
// reported as null rather than folded into UnknownLabel.
func (s *SalesService) ByRegion(ctx context.Context, level string) ([]models.RegionSales, error) {
	lvl, err := ParseRegionLevel(level)
	if err != nil {
		return nil, err
	}
	rows, err := s.SalesRepo.TotalsByRegion(ctx, lvl)
	if err != nil {
		return nil, err
	}
	out := make([]models.RegionSales, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.RegionSales{
			Region:      r.Region,
			TotalOrders: r.Orders,
			TotalSales:  r.Total.InexactFloat64(),
		})
	}
	return out, nil
}

func ParseRegionLevel(raw string) (models.RegionLevel, error) {
	switch lvl := models.RegionLevel(strings.ToLower(strings.TrimSpace(raw))); lvl {
	case "":
		return models.RegionState, nil
	case models.RegionCountry, models.RegionState, models.RegionCity:
		return lvl, nil
	default:
		return "", fmt.Errorf("%w: level must be one of country, state, city", ErrInvalidParam)
	}
}

func (s *SalesService) TopCities(ctx context.Context, f models.TopCitiesFilter) ([]models.TopCity, error) {
	rows, err := s.SalesRepo.TopCities(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]models.TopCity, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.TopCity{City: r.City, State: r.State, Orders: r.Orders})
	}
	return out, nil
}

// ParseTopCitiesFilter validates the limit, start_date and end_date query values.
func ParseTopCitiesFilter(limit, startDate, endDate string) (models.TopCitiesFilter, error) {
	f := models.TopCitiesFilter{Limit: DefaultTopCities}
	if limit = strings.TrimSpace(limit); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			return f, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidParam)
		}
		f.Limit = n
	}
	var err error
	if f.StartDate, err = parseDateParam("start_date", startDate); err != nil {
		return f, err
	}
	if f.EndDate, err = parseDateParam("end_date", endDate); err != nil {
		return f, err
	}
	return f, nil
}

func parseDateParam(name, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a date in YYYY-MM-DD format", ErrInvalidParam, name)
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(models.DateLayout)
	return &s
}
