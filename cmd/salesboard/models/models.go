package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	PasswordHash string    `db:"password_hash"`
	IsActive     bool      `db:"is_active"`
	DateJoined   time.Time `db:"date_joined"`
}

// Sale is one order line of the sales report. Optional text columns are nil when NULL.
type Sale struct {
	ID               int64           `db:"id"`
	OrderID          string          `db:"order_id"`
	OrderDate        time.Time       `db:"order_date"`
	Status           *string         `db:"status"`
	Fulfilment       *string         `db:"fulfilment"`
	SalesChannel     *string         `db:"sales_channel"`
	ShipServiceLevel *string         `db:"ship_service_level"`
	Style            *string         `db:"style"`
	SKU              *string         `db:"sku"`
	Category         *string         `db:"category"`
	Size             *string         `db:"size"`
	ASIN             *string         `db:"asin"`
	CourierStatus    *string         `db:"courier_status"`
	Qty              int             `db:"qty"`
	Currency         string          `db:"currency"`
	Amount           decimal.Decimal `db:"amount"`
	ShipCity         *string         `db:"ship_city"`
	ShipState        *string         `db:"ship_state"`
	ShipPostalCode   *string         `db:"ship_postal_code"`
	ShipCountry      *string         `db:"ship_country"`
	PromotionIDs     *string         `db:"promotion_ids"`
	B2B              bool            `db:"b2b"`
	FulfilledBy      *string         `db:"fulfilled_by"`
}

type UploadLog struct {
	ID         int64     `db:"id"`
	FileName   string    `db:"file_name"`
	RowCount   int       `db:"row_count"`
	UserID     int64     `db:"user_id"`
	Username   string    `db:"username"`
	UploadTime time.Time `db:"upload_time"`
}

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=150,username"`
	Email     string `json:"email" validate:"omitempty,max=254,email"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
}

type RegisterResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type AccessToken struct {
	Access string `json:"access"`
}

type SaleResponse struct {
	ID               int64   `json:"id"`
	OrderID          string  `json:"order_id"`
	OrderDate        string  `json:"order_date"`
	Status           *string `json:"status"`
	Fulfilment       *string `json:"fulfilment"`
	SalesChannel     *string `json:"sales_channel"`
	ShipServiceLevel *string `json:"ship_service_level"`
	Style            *string `json:"style"`
	SKU              *string `json:"sku"`
	Category         *string `json:"category"`
	Size             *string `json:"size"`
	ASIN             *string `json:"asin"`
	CourierStatus    *string `json:"courier_status"`
	Qty              int     `json:"qty"`
	Currency         string  `json:"currency"`
	Amount           string  `json:"amount"`
	ShipCity         *string `json:"ship_city"`
	ShipState        *string `json:"ship_state"`
	ShipPostalCode   *string `json:"ship_postal_code"`
	ShipCountry      *string `json:"ship_country"`
	PromotionIDs     *string `json:"promotion_ids"`
	B2B              bool    `json:"b2b"`
	FulfilledBy      *string `json:"fulfilled_by"`
}

func NewSaleResponse(s Sale) SaleResponse {
	return SaleResponse{
		ID:               s.ID,
		OrderID:          s.OrderID,
		OrderDate:        s.OrderDate.Format(DateLayout),
		Status:           s.Status,
		Fulfilment:       s.Fulfilment,
		SalesChannel:     s.SalesChannel,
		ShipServiceLevel: s.ShipServiceLevel,
		Style:            s.Style,
		SKU:              s.SKU,
		Category:         s.Category,
		Size:             s.Size,
		ASIN:             s.ASIN,
		CourierStatus:    s.CourierStatus,
		Qty:              s.Qty,
		Currency:         s.Currency,
		Amount:           s.Amount.StringFixed(2),
		ShipCity:         s.ShipCity,
		ShipState:        s.ShipState,
		ShipPostalCode:   s.ShipPostalCode,
		ShipCountry:      s.ShipCountry,
		PromotionIDs:     s.PromotionIDs,
		B2B:              s.B2B,
		FulfilledBy:      s.FulfilledBy,
	}
}

// Page is the list envelope: total count, neighbour page links and the current slice.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type UploadResponse struct {
	Message  string `json:"message"`
	FileName string `json:"file_name"`
	RowCount int    `json:"row_count"`
}

type UploadLogResponse struct {
	FileName   string `json:"file_name"`
	RowCount   int    `json:"row_count"`
	User       string `json:"user"`
	UploadTime string `json:"upload_time"`
}
