package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func saleDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(services.DateFormat, value)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func createTestDashboard(t *testing.T) *services.Dashboard {
	t.Helper()
	d := services.NewDashboard(10, testLogger())
	d.SetData(models.Dataset{
		{Date: saleDate(t, "2024-01-01"), OrderID: "ORD-1", City: "A", Channel: "Online", Category: "X", Product: "P1", Revenue: decimal.RequireFromString("100")},
		{Date: saleDate(t, "2024-01-01"), OrderID: "ORD-2", City: "B", Channel: "Retail", Category: "Y", Product: "P2", Revenue: decimal.RequireFromString("50")},
		{Date: saleDate(t, "2024-01-05"), OrderID: "ORD-3", City: "A", Channel: "Online", Category: "X", Product: "P1", Revenue: decimal.RequireFromString("75")},
	})
	return d
}

func newAPIHandlers(t *testing.T) *APIHandlers {
	t.Helper()
	return NewAPIHandlers(createTestDashboard(t), testLogger(), 1<<20)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var response map[string]any
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	return response
}

func TestAPIHandlers_HandleSummary(t *testing.T) {
	h := newAPIHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	w := httptest.NewRecorder()

	h.HandleSummary(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	response := decodeEnvelope(t, w)
	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}

	data := response["data"].(map[string]any)
	summary := data["summary"].(map[string]any)
	if summary["order_count"] != float64(3) {
		t.Errorf("expected order_count 3, got %v", summary["order_count"])
	}
	if summary["total_revenue"] != "225" {
		t.Errorf("expected total_revenue 225, got %v", summary["total_revenue"])
	}
}

func TestAPIHandlers_HandleSummary_Filtered(t *testing.T) {
	h := newAPIHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/summary?cities=A&end=2024-01-01", nil)
	w := httptest.NewRecorder()

	h.HandleSummary(w, req)

	response := decodeEnvelope(t, w)
	summary := response["data"].(map[string]any)["summary"].(map[string]any)
	if summary["order_count"] != float64(1) {
		t.Errorf("expected order_count 1, got %v", summary["order_count"])
	}
	if summary["total_revenue"] != "100" {
		t.Errorf("expected total_revenue 100, got %v", summary["total_revenue"])
	}
	if summary["average_order_value"] != "100" {
		t.Errorf("expected average 100, got %v", summary["average_order_value"])
	}
}

func TestAPIHandlers_InvalidFilterParams(t *testing.T) {
	h := newAPIHandlers(t)

	tests := []struct {
		name  string
		query string
	}{
		{name: "bad start date", query: "?start=01/02/2024"},
		{name: "bad end date", query: "?end=notadate"},
		{name: "inverted range", query: "?start=2024-02-01&end=2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/summary"+tt.query, nil)
			w := httptest.NewRecorder()

			h.HandleSummary(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}

			response := decodeEnvelope(t, w)
			if success, ok := response["success"].(bool); !ok || success {
				t.Error("expected success=false in response")
			}
		})
	}
}

func TestAPIHandlers_HandleRevenueByDay(t *testing.T) {
	h := newAPIHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/revenue-by-day", nil)
	w := httptest.NewRecorder()

	h.HandleRevenueByDay(w, req)

	response := decodeEnvelope(t, w)
	days := response["data"].([]any)
	if len(days) != 2 {
		t.Fatalf("expected 2 day entries, got %d", len(days))
	}
	first := days[0].(map[string]any)
	if first["date"] != "2024-01-01" {
		t.Errorf("day series must be chronological, first entry %v", first)
	}
}

func TestAPIHandlers_HandleRevenueByChannel(t *testing.T) {
	h := newAPIHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/revenue-by-channel", nil)
	w := httptest.NewRecorder()

	h.HandleRevenueByChannel(w, req)

	response := decodeEnvelope(t, w)
	channels := response["data"].([]any)
	if len(channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(channels))
	}
	top := channels[0].(map[string]any)
	if top["key"] != "Online" {
		t.Errorf("expected Online first (175 > 50), got %v", top["key"])
	}
}

func TestAPIHandlers_HandleTopProducts(t *testing.T) {
	h := newAPIHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/top-products?limit=1", nil)
	w := httptest.NewRecorder()

	h.HandleTopProducts(w, req)

	response := decodeEnvelope(t, w)
	products := response["data"].([]any)
	if len(products) != 1 {
		t.Fatalf("expected limit=1 to truncate, got %d entries", len(products))
	}
	if products[0].(map[string]any)["product"] != "P1" {
		t.Errorf("expected P1 on top, got %v", products[0])
	}
}

func TestAPIHandlers_HandleTopProducts_BadLimit(t *testing.T) {
	h := newAPIHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/top-products?limit=zero", nil)
	w := httptest.NewRecorder()

	h.HandleTopProducts(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestAPIHandlers_HandleFilterOptions(t *testing.T) {
	h := newAPIHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/filter-options", nil)
	w := httptest.NewRecorder()

	h.HandleFilterOptions(w, req)

	if cc := w.Header().Get("Cache-Control"); cc != "max-age=60" {
		t.Errorf("expected Cache-Control max-age=60, got %q", cc)
	}

	response := decodeEnvelope(t, w)
	data := response["data"].(map[string]any)

	cities := data["cities"].([]any)
	if len(cities) != 2 || cities[0] != "A" || cities[1] != "B" {
		t.Errorf("expected sorted cities [A B], got %v", cities)
	}
	if data["min_date"] != "2024-01-01" || data["max_date"] != "2024-01-05" {
		t.Errorf("unexpected date span: %v .. %v", data["min_date"], data["max_date"])
	}
}

func TestAPIHandlers_HandleNotFound(t *testing.T) {
	h := newAPIHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/does-not-exist", nil)
	w := httptest.NewRecorder()

	h.HandleNotFound(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	response := decodeEnvelope(t, w)
	if success, ok := response["success"].(bool); !ok || success {
		t.Error("expected success=false in response")
	}
	errObj := response["error"].(map[string]any)
	if errObj["code"] != "NOT_FOUND" {
		t.Errorf("expected code NOT_FOUND, got %v", errObj["code"])
	}
}

func multipartCSV(t *testing.T, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "upload.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestAPIHandlers_HandleUpload(t *testing.T) {
	h := newAPIHandlers(t)

	csv := "date,city,channel,category,product,revenue\n" +
		"2024-03-01,C,Online,Z,P9,10\n" +
		"2024-03-02,C,Retail,Z,P9,abc\n"
	body, contentType := multipartCSV(t, csv)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	h.HandleUpload(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	response := decodeEnvelope(t, w)
	report := response["data"].(map[string]any)
	if report["records"] != float64(1) || report["skipped_rows"] != float64(1) {
		t.Errorf("unexpected load report: %v", report)
	}

	// The upload replaces the snapshot wholesale.
	sw := httptest.NewRecorder()
	h.HandleSummary(sw, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	summary := decodeEnvelope(t, sw)["data"].(map[string]any)["summary"].(map[string]any)
	if summary["order_count"] != float64(1) {
		t.Errorf("expected new dataset with 1 order, got %v", summary["order_count"])
	}
}

func TestAPIHandlers_HandleUpload_BadFormat(t *testing.T) {
	h := newAPIHandlers(t)

	body, contentType := multipartCSV(t, "foo,bar\n1,2\n")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	h.HandleUpload(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	// The previous dataset must survive a failed upload.
	sw := httptest.NewRecorder()
	h.HandleSummary(sw, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	summary := decodeEnvelope(t, sw)["data"].(map[string]any)["summary"].(map[string]any)
	if summary["order_count"] != float64(3) {
		t.Errorf("failed upload must keep previous dataset, got %v orders", summary["order_count"])
	}
}

func TestAPIHandlers_HandleUpload_MissingFile(t *testing.T) {
	h := newAPIHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", bytes.NewReader(nil))
	w := httptest.NewRecorder()

	h.HandleUpload(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	h := newAPIHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	h.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected content-type 'application/json', got %q", ct)
	}
}

func TestAPIHandlers_EmptyFilterResult(t *testing.T) {
	h := newAPIHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/summary?cities=Nowhere", nil)
	w := httptest.NewRecorder()

	h.HandleSummary(w, req)

	// An empty filtered view is a defined state, not an error.
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	summary := decodeEnvelope(t, w)["data"].(map[string]any)["summary"].(map[string]any)
	if summary["order_count"] != float64(0) {
		t.Errorf("expected order_count 0, got %v", summary["order_count"])
	}
	if summary["average_order_value"] != "0" {
		t.Errorf("expected average 0, got %v", summary["average_order_value"])
	}
}
