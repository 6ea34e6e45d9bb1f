package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Dashboard renders the single-page dashboard shell. All data arrives
// through the /sse/dashboard endpoint, which patches the KPI cards,
// the top-products table and the chart signals whenever a filter
// control changes.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardPage)
		return err
	})
}

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>Sales Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@main/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6fa; color: #222; }
header { background: #1f2937; color: #fff; padding: 1rem 2rem; }
main { padding: 1.5rem 2rem; display: grid; gap: 1.5rem; }
.filters { display: flex; flex-wrap: wrap; gap: 1rem; align-items: end; background: #fff; padding: 1rem; border-radius: 8px; }
.filters label { display: flex; flex-direction: column; font-size: .85rem; gap: .25rem; }
#kpi-content { display: flex; gap: 1.5rem; }
.kpi-card { background: #fff; border-radius: 8px; padding: 1rem 1.5rem; flex: 1; }
.kpi-label { display: block; color: #6b7280; font-size: .85rem; }
.kpi-card strong { font-size: 1.6rem; }
.charts { display: grid; grid-template-columns: 1fr 1fr; gap: 1.5rem; }
.chart-panel, #products-content { background: #fff; border-radius: 8px; padding: 1rem; }
.modern-table { width: 100%; border-collapse: collapse; }
.modern-table th, .modern-table td { text-align: left; padding: .5rem .75rem; border-bottom: 1px solid #e5e7eb; }
.empty-note, .error-note { color: #6b7280; font-style: italic; }
</style>
</head>
<body data-signals="{start: '', end: '', cities: '', channels: '', categories: '', dailyData: [], cityData: [], channelData: [], monthlyData: []}"
      data-on-load="@get('/sse/dashboard')">
<header><h1>Sales Dashboard</h1></header>
<main>
<form class="filters" data-on-change="@get('/sse/dashboard?start=' + $start + '&end=' + $end + '&cities=' + $cities + '&channels=' + $channels + '&categories=' + $categories)">
<label>Start date <input type="date" data-bind-start/></label>
<label>End date <input type="date" data-bind-end/></label>
<label>Cities <input type="text" placeholder="comma-separated" data-bind-cities/></label>
<label>Channels <input type="text" placeholder="comma-separated" data-bind-channels/></label>
<label>Categories <input type="text" placeholder="comma-separated" data-bind-categories/></label>
</form>

<div id="kpi-content">
<div class="kpi-card"><span class="kpi-label">Total Revenue</span><strong>—</strong></div>
<div class="kpi-card"><span class="kpi-label">Orders</span><strong>—</strong></div>
<div class="kpi-card"><span class="kpi-label">Average Order Value</span><strong>—</strong></div>
</div>

<div class="charts">
<div class="chart-panel" data-effect="renderChart('daily-chart', 'line', $dailyData, 'date', 'revenue')"><h2>Revenue by Day</h2><canvas id="daily-chart"></canvas></div>
<div class="chart-panel" data-effect="renderChart('city-chart', 'bar', $cityData, 'key', 'revenue')"><h2>Revenue by City</h2><canvas id="city-chart"></canvas></div>
<div class="chart-panel" data-effect="renderChart('channel-chart', 'bar', $channelData, 'key', 'revenue')"><h2>Revenue by Channel</h2><canvas id="channel-chart"></canvas></div>
<div class="chart-panel" data-effect="renderChart('monthly-chart', 'line', $monthlyData, 'month', 'cumulative')"><h2>Monthly Revenue (cumulative)</h2><canvas id="monthly-chart"></canvas></div>
</div>

<div id="products-content"><p class="empty-note">Loading top products…</p></div>
</main>
<script>
// Called from the data-effect expressions above; re-runs whenever the
// SSE endpoint patches a chart signal. Revenue values arrive as
// decimal strings.
const charts = {};
function renderChart(id, type, rows, labelKey, valueKey) {
	if (!window.Chart || !Array.isArray(rows)) {
		return;
	}
	const labels = rows.map(r => r[labelKey]);
	const values = rows.map(r => parseFloat(r[valueKey]));
	if (charts[id]) {
		charts[id].data.labels = labels;
		charts[id].data.datasets[0].data = values;
		charts[id].update();
		return;
	}
	charts[id] = new Chart(document.getElementById(id), {
		type: type,
		data: {
			labels: labels,
			datasets: [{label: 'Revenue', data: values, backgroundColor: '#3b82f6', borderColor: '#1f2937', fill: false}]
		},
		options: {responsive: true, plugins: {legend: {display: false}}}
	});
}
</script>
</body>
</html>`
