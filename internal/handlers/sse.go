package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

var kpiTemplate = template.Must(template.New("kpis").Parse(`
<div id="kpi-content">
<div class="kpi-card"><span class="kpi-label">Total Revenue</span><strong>${{.TotalRevenue}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Orders</span><strong>{{.OrderCount}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Average Order Value</span><strong>${{.AverageOrderValue}}</strong></div>
</div>`))

var topProductsTemplate = template.Must(template.New("topProducts").Parse(`
<div id="products-content">
<table class="modern-table">
<thead><tr><th>Product</th><th>Orders</th><th>Revenue</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.Product}}</td>
<td>{{.Orders}}</td>
<td><strong>${{.Revenue}}</strong></td>
</tr>{{else}}<tr><td colspan="3" class="empty-note">No rows match the selected filters</td></tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

type kpiView struct {
	TotalRevenue      string
	OrderCount        int
	AverageOrderValue string
}

type productRow struct {
	Product string
	Orders  int
	Revenue string
}

func (h *SSEHandlers) renderKPIs(summary models.KPISummary) (string, error) {
	var buf strings.Builder
	err := kpiTemplate.Execute(&buf, kpiView{
		TotalRevenue:      summary.TotalRevenue.StringFixed(2),
		OrderCount:        summary.OrderCount,
		AverageOrderValue: summary.AverageOrderValue.StringFixed(2),
	})
	return buf.String(), err
}

func (h *SSEHandlers) renderTopProducts(products []models.TopProduct) (string, error) {
	rows := make([]productRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, productRow{
			Product: p.Product,
			Orders:  p.Orders,
			Revenue: p.Revenue.StringFixed(2),
		})
	}

	var buf strings.Builder
	err := topProductsTemplate.Execute(&buf, struct{ Rows []productRow }{Rows: rows})
	return buf.String(), err
}

// HandleDashboard recomputes the full pipeline for the requested
// filter selection and patches every dashboard element in one SSE
// response: KPI cards, the top-products table and the chart signals.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	sel, err := parseFilterSelection(r)
	if err != nil {
		sse.PatchElements(`<div id="kpi-content" class="error-note">Invalid filter selection</div>`)
		return
	}

	results := h.dashboard.Query(sel)

	kpiHTML, err := h.renderKPIs(results.Summary)
	if err != nil {
		h.logger.Error("render kpis", "error", err)
		return
	}
	sse.PatchElements(kpiHTML)

	tableHTML, err := h.renderTopProducts(results.TopProducts)
	if err != nil {
		h.logger.Error("render top products", "error", err)
		return
	}
	sse.PatchElements(tableHTML)

	signals, err := json.Marshal(map[string]any{
		"dailyData":   results.ByDay,
		"cityData":    results.ByCity,
		"channelData": results.ByChannel,
		"monthlyData": results.ByMonth,
	})
	if err != nil {
		h.logger.Error("marshal chart signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
