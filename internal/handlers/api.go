package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

type APIHandlers struct {
	dashboard      *services.Dashboard
	logger         *slog.Logger
	uploadMaxBytes int64
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger, uploadMaxBytes int64) *APIHandlers {
	return &APIHandlers{
		dashboard:      dashboard,
		logger:         logger,
		uploadMaxBytes: uploadMaxBytes,
	}
}

// withSelection runs fn with the parsed filter selection, writing a
// validation error envelope when the query parameters are malformed.
func (h *APIHandlers) withSelection(w http.ResponseWriter, r *http.Request, fn func(sel models.FilterSelection)) {
	sel, err := parseFilterSelection(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	fn(sel)
}

type summaryResponse struct {
	Summary models.KPISummary `json:"summary"`
	Load    models.LoadReport `json:"load"`
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	h.withSelection(w, r, func(sel models.FilterSelection) {
		dataset, report := h.dashboard.Snapshot()
		summary := services.Summarize(services.Apply(dataset, sel))

		errors.WriteSuccess(w, summaryResponse{Summary: summary, Load: report})
	})
}

func (h *APIHandlers) HandleRevenueByDay(w http.ResponseWriter, r *http.Request) {
	h.withSelection(w, r, func(sel models.FilterSelection) {
		dataset, _ := h.dashboard.Snapshot()
		errors.WriteSuccess(w, services.RevenueByDay(services.Apply(dataset, sel)))
	})
}

func (h *APIHandlers) HandleRevenueByCity(w http.ResponseWriter, r *http.Request) {
	h.withSelection(w, r, func(sel models.FilterSelection) {
		dataset, _ := h.dashboard.Snapshot()
		errors.WriteSuccess(w, services.RevenueBy(services.Apply(dataset, sel), func(s models.Sale) string { return s.City }))
	})
}

func (h *APIHandlers) HandleRevenueByChannel(w http.ResponseWriter, r *http.Request) {
	h.withSelection(w, r, func(sel models.FilterSelection) {
		dataset, _ := h.dashboard.Snapshot()
		errors.WriteSuccess(w, services.RevenueBy(services.Apply(dataset, sel), func(s models.Sale) string { return s.Channel }))
	})
}

func (h *APIHandlers) HandleMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	h.withSelection(w, r, func(sel models.FilterSelection) {
		dataset, _ := h.dashboard.Snapshot()
		errors.WriteSuccess(w, services.RevenueByMonth(services.Apply(dataset, sel)))
	})
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	h.withSelection(w, r, func(sel models.FilterSelection) {
		errors.WriteSuccess(w, h.dashboard.QueryTopProducts(sel, limit))
	})
}

// HandleFilterOptions serves the distinct filter values. Options only
// change on upload, so clients may cache them briefly.
func (h *APIHandlers) HandleFilterOptions(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.dashboard.Options(), map[string]string{
		"Cache-Control": "max-age=60",
	})
}

// HandleNotFound is the fallback for API paths with no matching route,
// so API clients get a JSON envelope instead of the plain-text 404.
func (h *APIHandlers) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	errors.WriteError(w, h.logger,
		errors.NotFound("no such API route: "+r.URL.Path),
		observability.GetRequestID(r.Context()))
}

// HandleUpload replaces the current dataset with an uploaded CSV file.
// Format failures leave the previous dataset in place and report a
// DATA_FORMAT_ERROR; rows skipped during coercion are surfaced in the
// returned load report.
func (h *APIHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "missing or oversized file upload"), requestID)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "read uploaded file"), requestID)
		return
	}

	report, err := h.dashboard.LoadFromBytes(r.Context(), data, header.Filename)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	h.logger.Info("dataset replaced",
		"source", report.Source,
		"records", report.Records,
		"skipped_rows", report.SkippedRows,
		"request_id", requestID,
	)
	errors.WriteSuccess(w, report)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.Stats())
}
