package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/models"
)

type SalesRepoPG struct {
	db *sql.DB
}

func NewSalesRepoPG(db *sql.DB) *SalesRepoPG {
	return &SalesRepoPG{db: db}
}

const saleColumns = `order_id, order_date, status, fulfilment, sales_channel, ship_service_level,
	style, sku, category, size, asin, courier_status, qty, currency, amount,
	ship_city, ship_state, ship_postal_code, ship_country, promotion_ids, b2b, fulfilled_by`

const insertSale = `INSERT INTO sales (` + saleColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	RETURNING id`

var regionColumns = map[models.RegionLevel]string{
	models.RegionCountry: "ship_country",
	models.RegionState:   "ship_state",
	models.RegionCity:    "ship_city",
}

func saleArgs(s *models.Sale) []any {
	return []any{
		s.OrderID, s.OrderDate, s.Status, s.Fulfilment, s.SalesChannel, s.ShipServiceLevel,
		s.Style, s.SKU, s.Category, s.Size, s.ASIN, s.CourierStatus, s.Qty, s.Currency, s.Amount,
		s.ShipCity, s.ShipState, s.ShipPostalCode, s.ShipCountry, s.PromotionIDs, s.B2B, s.FulfilledBy,
	}
}

// InsertSales writes the batch in one transaction; either every row lands or none does.
func (r *SalesRepoPG) InsertSales(ctx context.Context, sales []models.Sale) error {
	return WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertSale)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i := range sales {
			if err := stmt.QueryRowContext(ctx, saleArgs(&sales[i])...).Scan(&sales[i].ID); err != nil {
				return fmt.Errorf("insert sale %s: %w", sales[i].OrderID, err)
			}
		}
		return nil
	})
}

func (r *SalesRepoPG) CountSales(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return total, nil
}

func (r *SalesRepoPG) ListSales(ctx context.Context, limit, offset int) ([]models.Sale, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, `+saleColumns+` FROM sales ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	sales := []models.Sale{}
	for rows.Next() {
		var s models.Sale
		err := rows.Scan(
			&s.ID, &s.OrderID, &s.OrderDate, &s.Status, &s.Fulfilment, &s.SalesChannel, &s.ShipServiceLevel,
			&s.Style, &s.SKU, &s.Category, &s.Size, &s.ASIN, &s.CourierStatus, &s.Qty, &s.Currency, &s.Amount,
			&s.ShipCity, &s.ShipState, &s.ShipPostalCode, &s.ShipCountry, &s.PromotionIDs, &s.B2B, &s.FulfilledBy,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *SalesRepoPG) Summary(ctx context.Context) (models.SummaryRow, error) {
	var (
		row              models.SummaryRow
		minDate, maxDate sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(id), COALESCE(SUM(amount), 0), MIN(order_date), MAX(order_date) FROM sales`,
	).Scan(&row.Orders, &row.Total, &minDate, &maxDate)
	if err != nil {
		return row, fmt.Errorf("sales summary: %w", err)
	}
	if minDate.Valid {
		row.MinDate = &minDate.Time
	}
	if maxDate.Valid {
		row.MaxDate = &maxDate.Time
	}
	return row, nil
}

func (r *SalesRepoPG) KPI(ctx context.Context) (models.KPIRow, error) {
	var row models.KPIRow
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0), COUNT(id), COALESCE(SUM(qty), 0) FROM sales`,
	).Scan(&row.Total, &row.Orders, &row.Quantity)
	if err != nil {
		return row, fmt.Errorf("sales kpi: %w", err)
	}
	return row, nil
}

func (r *SalesRepoPG) TotalsByDate(ctx context.Context) ([]models.DateTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT order_date, SUM(amount) FROM sales GROUP BY order_date ORDER BY order_date`)
	if err != nil {
		return nil, fmt.Errorf("sales trend: %w", err)
	}
	defer rows.Close()

	out := []models.DateTotal{}
	for rows.Next() {
		var t models.DateTotal
		if err := rows.Scan(&t.Date, &t.Total); err != nil {
			return nil, fmt.Errorf("scan sales trend: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TotalsByCategory folds NULL and empty categories into the unknown label.
func (r *SalesRepoPG) TotalsByCategory(ctx context.Context, unknown string) ([]models.KeyTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT COALESCE(NULLIF(category, ''), $1) AS category_key, SUM(amount) AS total
		 FROM sales
		 GROUP BY category_key
		 ORDER BY total DESC, category_key`, unknown)
	if err != nil {
		return nil, fmt.Errorf("sales by category: %w", err)
	}
	defer rows.Close()

	out := []models.KeyTotal{}
	for rows.Next() {
		var t models.KeyTotal
		if err := rows.Scan(&t.Key, &t.Total); err != nil {
			return nil, fmt.Errorf("scan sales by category: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountsByStatus folds NULL and empty statuses into the unknown label.
func (r *SalesRepoPG) CountsByStatus(ctx context.Context, unknown string) ([]models.KeyCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT COALESCE(NULLIF(status, ''), $1) AS status_key, COUNT(id) AS orders
		 FROM sales
		 GROUP BY status_key
		 ORDER BY orders DESC, status_key`, unknown)
	if err != nil {
		return nil, fmt.Errorf("orders by status: %w", err)
	}
	defer rows.Close()

	out := []models.KeyCount{}
	for rows.Next() {
		var c models.KeyCount
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, fmt.Errorf("scan orders by status: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// TotalsByRegion groups on the raw shipping column; NULL regions come back as nil.
func (r *SalesRepoPG) TotalsByRegion(ctx context.Context, level models.RegionLevel) ([]models.RegionTotal, error) {
	column, ok := regionColumns[level]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
	query := fmt.Sprintf(
		`SELECT %[1]s, COUNT(id), COALESCE(SUM(amount), 0) AS total FROM sales GROUP BY %[1]s ORDER BY total DESC`, column)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sales by region: %w", err)
	}
	defer rows.Close()

	out := []models.RegionTotal{}
	for rows.Next() {
		var (
			t      models.RegionTotal
			region sql.NullString
		)
		if err := rows.Scan(&region, &t.Orders, &t.Total); err != nil {
			return nil, fmt.Errorf("scan sales by region: %w", err)
		}
		if region.Valid {
			t.Region = &region.String
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TopCities ranks (city, state) pairs by order count. Ties keep the pair seen first.
func (r *SalesRepoPG) TopCities(ctx context.Context, f models.TopCitiesFilter) ([]models.CityCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ship_city, ship_state, COUNT(id) AS orders
		 FROM sales
		 WHERE ($1::date IS NULL OR order_date >= $1::date)
		   AND ($2::date IS NULL OR order_date <= $2::date)
		 GROUP BY ship_city, ship_state
		 ORDER BY orders DESC, MIN(id)
		 LIMIT $3`, f.StartDate, f.EndDate, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("top cities: %w", err)
	}
	defer rows.Close()

	out := []models.CityCount{}
	for rows.Next() {
		var (
			c           models.CityCount
			city, state sql.NullString
		)
		if err := rows.Scan(&city, &state, &c.Orders); err != nil {
			return nil, fmt.Errorf("scan top cities: %w", err)
		}
		if city.Valid {
			c.City = &city.String
		}
		if state.Valid {
			c.State = &state.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
