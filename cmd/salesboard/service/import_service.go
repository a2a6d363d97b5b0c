package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/models"
)

type SalesInserter interface {
	InsertSales(ctx context.Context, sales []models.Sale) error
}

// ImportService loads a sales report export into the sales table.
type ImportService struct {
	Repo      SalesInserter
	BatchSize int
	Logger    *zap.Logger
}

func NewImportService(repo SalesInserter, batchSize int, logger *zap.Logger) *ImportService {
	return &ImportService{Repo: repo, BatchSize: batchSize, Logger: logger}
}

type ImportResult struct {
	Inserted int
	Skipped  int
}

var importDateLayouts = []string{"01-02-06", models.DateLayout, "01/02/2006", "01-02-2006"}

var requiredImportColumns = []string{"order-id", "date", "qty", "currency", "amount"}

// Import reads the whole report and inserts it in batches. Rows missing an amount or currency,
// or with an unparseable date or quantity, are skipped and counted.
func (s *ImportService) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return res, fmt.Errorf("%w: read header: %v", ErrInvalidCSV, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[normalizeColumn(h)] = i
	}
	for _, c := range requiredImportColumns {
		if _, ok := cols[c]; !ok {
			return res, fmt.Errorf("%w: missing column %q", ErrInvalidCSV, c)
		}
	}

	batch := make([]models.Sale, 0, s.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.Repo.InsertSales(ctx, batch); err != nil {
			return err
		}
		res.Inserted += len(batch)
		s.Logger.Debug("sales batch inserted", zap.Int("rows", len(batch)), zap.Int("total", res.Inserted))
		batch = batch[:0]
		return nil
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("%w: line %d: %v", ErrInvalidCSV, line, err)
		}
		sale, err := parseSaleRecord(record, cols)
		if err != nil {
			res.Skipped++
			s.Logger.Debug("sales row skipped", zap.Int("line", line), zap.Error(err))
			continue
		}
		batch = append(batch, sale)
		if len(batch) >= s.BatchSize {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}
	if err := flush(); err != nil {
		return res, err
	}
	return res, nil
}

// normalizeColumn maps header variants such as "Sales Channel " and "ship_city" onto
// lower-case dash-separated keys.
func normalizeColumn(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(h)
}

func parseSaleRecord(record []string, cols map[string]int) (models.Sale, error) {
	get := func(col string) string {
		i, ok := cols[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	opt := func(col string) *string {
		if v := get(col); v != "" {
			return &v
		}
		return nil
	}

	var sale models.Sale
	sale.OrderID = get("order-id")
	if sale.OrderID == "" {
		return sale, errors.New("missing order id")
	}
	date, err := parseImportDate(get("date"))
	if err != nil {
		return sale, err
	}
	sale.OrderDate = date

	sale.Currency = get("currency")
	if sale.Currency == "" {
		return sale, errors.New("missing currency")
	}
	amount := get("amount")
	if amount == "" {
		return sale, errors.New("missing amount")
	}
	if sale.Amount, err = decimal.NewFromString(amount); err != nil {
		return sale, fmt.Errorf("amount %q: %w", amount, err)
	}
	sale.Amount = sale.Amount.Round(2)
	if sale.Qty, err = strconv.Atoi(get("qty")); err != nil {
		return sale, fmt.Errorf("qty: %w", err)
	}

	sale.Status = opt("status")
	sale.Fulfilment = opt("fulfilment")
	sale.SalesChannel = opt("sales-channel")
	sale.ShipServiceLevel = opt("ship-service-level")
	sale.Style = opt("style")
	sale.SKU = opt("sku")
	sale.Category = opt("category")
	sale.Size = opt("size")
	sale.ASIN = opt("asin")
	sale.CourierStatus = opt("courier-status")
	sale.ShipCity = opt("ship-city")
	sale.ShipState = opt("ship-state")
	sale.ShipPostalCode = opt("ship-postal-code")
	sale.ShipCountry = opt("ship-country")
	sale.PromotionIDs = opt("promotion-ids")
	sale.FulfilledBy = opt("fulfilled-by")
	sale.B2B, _ = strconv.ParseBool(get("b2b"))
	return sale, nil
}

func parseImportDate(raw string) (time.Time, error) {
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}
