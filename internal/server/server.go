package server

import (
	"log/slog"
	"net/http"

	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/services"
)

type Server struct {
	dashboard   *services.Dashboard
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(dashboard *services.Dashboard, logger *slog.Logger, uploadMaxBytes int64, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		dashboard:   dashboard,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(dashboard, logger, uploadMaxBytes),
		sseHandlers: handlers.NewSSEHandlers(dashboard, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard page, exact root only; unknown paths fall through to
	// the mux 404 rather than silently serving the page.
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints; all read endpoints accept the filter query
	// parameters (start, end, cities, channels, categories).
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/revenue-by-day", s.apiHandlers.HandleRevenueByDay)
	s.mux.HandleFunc("GET /api/revenue-by-city", s.apiHandlers.HandleRevenueByCity)
	s.mux.HandleFunc("GET /api/revenue-by-channel", s.apiHandlers.HandleRevenueByChannel)
	s.mux.HandleFunc("GET /api/monthly-revenue", s.apiHandlers.HandleMonthlyRevenue)
	s.mux.HandleFunc("GET /api/top-products", s.apiHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /api/filter-options", s.apiHandlers.HandleFilterOptions)
	s.mux.HandleFunc("POST /api/upload", s.apiHandlers.HandleUpload)

	// Anything else under /api/ gets a JSON 404 envelope.
	s.mux.HandleFunc("/api/", s.apiHandlers.HandleNotFound)

	// Datastar SSE endpoint: one pass patches KPIs, chart signals and
	// the top-products table for the requested filter selection.
	s.mux.HandleFunc("GET /sse/dashboard", s.sseHandlers.HandleDashboard)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
