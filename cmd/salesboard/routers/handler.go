package routers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/auth"
	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/models"
	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/service"
)

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error)
	Refresh(ctx context.Context, req models.RefreshRequest) (*models.AccessToken, error)
}

type SalesService interface {
	ListSales(ctx context.Context, page string, pageSize int) (*service.SalesPage, error)
	Schema() map[string]string
	Summary(ctx context.Context) (*models.SalesSummary, error)
	KPI(ctx context.Context) (*models.KPISummary, error)
	Trend(ctx context.Context) ([]models.TrendPoint, error)
	ByCategory(ctx context.Context) ([]models.CategorySales, error)
	ByStatus(ctx context.Context) ([]models.StatusCount, error)
	ByRegion(ctx context.Context, level string) ([]models.RegionSales, error)
	TopCities(ctx context.Context, f models.TopCitiesFilter) ([]models.TopCity, error)
}

type UploadService interface {
	Upload(ctx context.Context, fileName string, content io.Reader, userID int64) (*models.UploadResponse, error)
	ListLogs(ctx context.Context) ([]models.UploadLogResponse, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	UserService    UserService
	SalesService   SalesService
	UploadService  UploadService
	DB             Pinger
	Logger         *zap.Logger
	MaxUploadBytes int64
}

func NewHandler(users UserService, sales SalesService, uploads UploadService, db Pinger, logger *zap.Logger, maxUploadBytes int64) *Handler {
	return &Handler{
		UserService:    users,
		SalesService:   sales,
		UploadService:  uploads,
		DB:             db,
		Logger:         logger,
		MaxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.DB.PingContext(r.Context()); err != nil {
			h.Logger.Error("database ping failed", zap.Error(err))
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (h *Handler) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		resp, err := h.UserService.Register(r.Context(), req)
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				respondJSON(w, http.StatusBadRequest, verr.Fields)
				return
			}
			h.internalError(w, r, "register failed", err)
			return
		}
		respondJSON(w, http.StatusCreated, resp)
	}
}

func (h *Handler) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		tokens, err := h.UserService.Login(r.Context(), req)
		if err != nil {
			var verr *service.ValidationError
			switch {
			case errors.As(err, &verr):
				respondJSON(w, http.StatusBadRequest, verr.Fields)
			case errors.Is(err, service.ErrInvalidCredentials):
				respondDetail(w, http.StatusUnauthorized, "No active account found with the given credentials", "")
			default:
				h.internalError(w, r, "login failed", err)
			}
			return
		}
		respondJSON(w, http.StatusOK, tokens)
	}
}

func (h *Handler) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		token, err := h.UserService.Refresh(r.Context(), req)
		if err != nil {
			var verr *service.ValidationError
			switch {
			case errors.As(err, &verr):
				respondJSON(w, http.StatusBadRequest, verr.Fields)
			case errors.Is(err, service.ErrInvalidToken):
				respondDetail(w, http.StatusUnauthorized, "Token is invalid or expired", "token_not_valid")
			default:
				h.internalError(w, r, "token refresh failed", err)
			}
			return
		}
		respondJSON(w, http.StatusOK, token)
	}
}

func (h *Handler) ListSalesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := h.SalesService.ListSales(r.Context(), q.Get("page"), service.PageSize(q.Get("page_size")))
		if err != nil {
			if errors.Is(err, service.ErrInvalidPage) {
				respondDetail(w, http.StatusNotFound, "Invalid page.", "")
				return
			}
			h.internalError(w, r, "list sales failed", err)
			return
		}
		resp := models.Page[models.SaleResponse]{
			Count:   page.Total,
			Results: make([]models.SaleResponse, 0, len(page.Sales)),
		}
		for _, s := range page.Sales {
			resp.Results = append(resp.Results, models.NewSaleResponse(s))
		}
		if page.HasNext() {
			resp.Next = pageURL(r, page.Page+1)
		}
		if page.HasPrevious() {
			resp.Previous = pageURL(r, page.Page-1)
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// pageURL rebuilds the absolute request URL pointing at page n. The first page drops the
// page parameter altogether.
func pageURL(r *http.Request, n int) *string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	q := r.URL.Query()
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	s := u.String()
	return &s
}

func (h *Handler) SalesSchemaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, h.SalesService.Schema())
	}
}

func (h *Handler) SalesSummaryHandler() http.HandlerFunc {
	return aggregate(h, "sales summary failed", func(r *http.Request) (any, error) {
		return h.SalesService.Summary(r.Context())
	})
}

func (h *Handler) KPIHandler() http.HandlerFunc {
	return aggregate(h, "kpi summary failed", func(r *http.Request) (any, error) {
		return h.SalesService.KPI(r.Context())
	})
}

func (h *Handler) SalesTrendHandler() http.HandlerFunc {
	return aggregate(h, "sales trend failed", func(r *http.Request) (any, error) {
		return h.SalesService.Trend(r.Context())
	})
}

func (h *Handler) SalesByCategoryHandler() http.HandlerFunc {
	return aggregate(h, "sales by category failed", func(r *http.Request) (any, error) {
		return h.SalesService.ByCategory(r.Context())
	})
}

func (h *Handler) OrdersByStatusHandler() http.HandlerFunc {
	return aggregate(h, "orders by status failed", func(r *http.Request) (any, error) {
		return h.SalesService.ByStatus(r.Context())
	})
}

func (h *Handler) SalesByRegionHandler() http.HandlerFunc {
	return aggregate(h, "sales by region failed", func(r *http.Request) (any, error) {
		return h.SalesService.ByRegion(r.Context(), r.URL.Query().Get("level"))
	})
}

func (h *Handler) TopCitiesHandler() http.HandlerFunc {
	return aggregate(h, "top cities failed", func(r *http.Request) (any, error) {
		q := r.URL.Query()
		f, err := service.ParseTopCitiesFilter(q.Get("limit"), q.Get("start_date"), q.Get("end_date"))
		if err != nil {
			return nil, err
		}
		return h.SalesService.TopCities(r.Context(), f)
	})
}

// aggregate wraps a read-only query: bad parameters become 400, anything else 500.
func aggregate(h *Handler, failMsg string, query func(r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := query(r)
		if err != nil {
			if errors.Is(err, service.ErrInvalidParam) {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			h.internalError(w, r, failMsg, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) UploadCSVHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			respondDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.", "")
			return
		}
		if h.MaxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respondError(w, http.StatusBadRequest, "File too large")
				return
			}
			respondError(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			respondError(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		defer file.Close()

		resp, err := h.UploadService.Upload(r.Context(), header.Filename, file, claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNoFile):
				respondError(w, http.StatusBadRequest, "No file uploaded")
			case errors.Is(err, service.ErrNotCSV):
				respondError(w, http.StatusBadRequest, "Only CSV files are allowed")
			case errors.Is(err, service.ErrInvalidCSV):
				respondError(w, http.StatusBadRequest, err.Error())
			default:
				h.internalError(w, r, "csv upload failed", err)
			}
			return
		}
		respondJSON(w, http.StatusCreated, resp)
	}
}

func (h *Handler) UploadLogsHandler() http.HandlerFunc {
	return aggregate(h, "list upload logs failed", func(r *http.Request) (any, error) {
		return h.UploadService.ListLogs(r.Context())
	})
}
