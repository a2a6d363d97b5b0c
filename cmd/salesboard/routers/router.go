package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func SetupRoutersWithLogger(h *Handler, tokens TokenParser, corsOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health/", h.HealthHandler())
		r.Post("/auth/register/", h.RegisterHandler())
		r.Post("/auth/login/", h.LoginHandler())
		r.Post("/auth/refresh/", h.RefreshHandler())

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokens))
			r.Get("/sales/", h.ListSalesHandler())
			r.Get("/sales/schema/", h.SalesSchemaHandler())
			r.Get("/sales/summary/", h.SalesSummaryHandler())
			r.Get("/sales/region/", h.SalesByRegionHandler())
			r.Get("/sales/top-cities/", h.TopCitiesHandler())
			r.Get("/analytics/kpi/", h.KPIHandler())
			r.Get("/sales-trend/", h.SalesTrendHandler())
			r.Get("/sales-by-category/", h.SalesByCategoryHandler())
			r.Get("/orders-by-status/", h.OrdersByStatusHandler())
			r.Post("/upload-csv/", h.UploadCSVHandler())
			r.Get("/csv-upload-logs/", h.UploadLogsHandler())
		})
	})
	return r
}
