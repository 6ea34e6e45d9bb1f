package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSummarize_EmptyView(t *testing.T) {
	summary := Summarize(nil)

	if !summary.TotalRevenue.IsZero() {
		t.Errorf("expected zero total revenue, got %s", summary.TotalRevenue)
	}
	if summary.OrderCount != 0 {
		t.Errorf("expected zero order count, got %d", summary.OrderCount)
	}
	// Average is defined as 0 for an empty view, never a division error.
	if !summary.AverageOrderValue.IsZero() {
		t.Errorf("expected zero average, got %s", summary.AverageOrderValue)
	}
}

func TestSummarize_TotalsAndAverage(t *testing.T) {
	view := []models.Sale{
		{Product: "P1", Revenue: dec("100")},
		{Product: "P2", Revenue: dec("50")},
		{Product: "P3", Revenue: dec("25.50")},
	}

	summary := Summarize(view)

	if !summary.TotalRevenue.Equal(dec("175.50")) {
		t.Errorf("expected total 175.50, got %s", summary.TotalRevenue)
	}
	if summary.OrderCount != 3 {
		t.Errorf("expected 3 orders, got %d", summary.OrderCount)
	}

	want := summary.TotalRevenue.Div(decimal.NewFromInt(3))
	if !summary.AverageOrderValue.Equal(want) {
		t.Errorf("expected average %s, got %s", want, summary.AverageOrderValue)
	}
}

func TestSummarize_DistinctOrderIDs(t *testing.T) {
	// Two rows of the same order count as one order; rows without an
	// order id count individually.
	view := []models.Sale{
		{OrderID: "ORD-1", Revenue: dec("100")},
		{OrderID: "ORD-1", Revenue: dec("20")},
		{OrderID: "ORD-2", Revenue: dec("30")},
		{Revenue: dec("10")},
	}

	summary := Summarize(view)
	if summary.OrderCount != 3 {
		t.Errorf("expected 3 orders (2 distinct ids + 1 bare row), got %d", summary.OrderCount)
	}
	if !summary.TotalRevenue.Equal(dec("160")) {
		t.Errorf("expected total 160, got %s", summary.TotalRevenue)
	}
}

func TestRevenueByDay_SortedAndSparse(t *testing.T) {
	view := []models.Sale{
		{Date: day(t, "2024-01-05"), Revenue: dec("10")},
		{Date: day(t, "2024-01-01"), Revenue: dec("100")},
		{Date: day(t, "2024-01-05"), Revenue: dec("15")},
		{Date: day(t, "2024-01-03"), Revenue: dec("50")},
	}

	got := RevenueByDay(view)

	// Sparse: no zero-revenue days are synthesized between entries.
	want := []models.DailyRevenue{
		{Date: "2024-01-01", Revenue: dec("100")},
		{Date: "2024-01-03", Revenue: dec("50")},
		{Date: "2024-01-05", Revenue: dec("25")},
	}
	if diff := cmp.Diff(want, got, decimalCmp); diff != "" {
		t.Errorf("RevenueByDay mismatch (-want +got):\n%s", diff)
	}
}

func TestRevenueByDay_SumEqualsKPITotal(t *testing.T) {
	view := sampleDataset(t)

	series := RevenueByDay(view)
	total := decimal.Zero
	for _, p := range series {
		total = total.Add(p.Revenue)
	}

	if kpi := Summarize(view).TotalRevenue; !total.Equal(kpi) {
		t.Errorf("day series sums to %s, KPI total is %s", total, kpi)
	}
}

func TestRevenueBy_DescendingWithAlphabeticalTies(t *testing.T) {
	view := []models.Sale{
		{City: "Beta", Revenue: dec("50")},
		{City: "Alpha", Revenue: dec("50")},
		{City: "Gamma", Revenue: dec("200")},
	}

	got := RevenueBy(view, func(s models.Sale) string { return s.City })

	want := []models.RevenueBreakdown{
		{Key: "Gamma", Revenue: dec("200"), Orders: 1},
		{Key: "Alpha", Revenue: dec("50"), Orders: 1},
		{Key: "Beta", Revenue: dec("50"), Orders: 1},
	}
	if diff := cmp.Diff(want, got, decimalCmp); diff != "" {
		t.Errorf("RevenueBy mismatch (-want +got):\n%s", diff)
	}
}

func TestTopProducts_TruncationAndTies(t *testing.T) {
	view := []models.Sale{
		{Product: "Zeta", Revenue: dec("30")},
		{Product: "Echo", Revenue: dec("30")},
		{Product: "Big", Revenue: dec("500")},
		{Product: "Mid", Revenue: dec("100")},
	}

	got := TopProducts(view, 3)

	if len(got) != 3 {
		t.Fatalf("expected truncation to 3, got %d", len(got))
	}

	want := []models.TopProduct{
		{Product: "Big", Orders: 1, Revenue: dec("500")},
		{Product: "Mid", Orders: 1, Revenue: dec("100")},
		{Product: "Echo", Orders: 1, Revenue: dec("30")},
	}
	if diff := cmp.Diff(want, got, decimalCmp); diff != "" {
		t.Errorf("TopProducts mismatch (-want +got):\n%s", diff)
	}

	// Strictly non-ascending revenue.
	for i := 1; i < len(got); i++ {
		if got[i].Revenue.GreaterThan(got[i-1].Revenue) {
			t.Errorf("ranking not descending at %d: %s > %s", i, got[i].Revenue, got[i-1].Revenue)
		}
	}
}

func TestRevenueByMonth_Cumulative(t *testing.T) {
	view := []models.Sale{
		{Date: day(t, "2023-01-15"), Revenue: dec("100")},
		{Date: day(t, "2023-01-20"), Revenue: dec("200")},
		{Date: day(t, "2023-02-10"), Revenue: dec("150")},
		{Date: day(t, "2023-02-25"), Revenue: dec("250")},
		{Date: day(t, "2023-03-05"), Revenue: dec("300")},
	}

	got := RevenueByMonth(view)

	want := []models.MonthlyRevenue{
		{Month: "2023-01", Revenue: dec("300"), Cumulative: dec("300")},
		{Month: "2023-02", Revenue: dec("400"), Cumulative: dec("700")},
		{Month: "2023-03", Revenue: dec("300"), Cumulative: dec("1000")},
	}
	if diff := cmp.Diff(want, got, decimalCmp); diff != "" {
		t.Errorf("RevenueByMonth mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_EmptyView(t *testing.T) {
	results := Aggregate(nil, 10)

	if results.Summary.OrderCount != 0 {
		t.Errorf("expected zero orders, got %d", results.Summary.OrderCount)
	}
	if len(results.ByDay) != 0 || len(results.ByCity) != 0 ||
		len(results.ByChannel) != 0 || len(results.TopProducts) != 0 || len(results.ByMonth) != 0 {
		t.Error("expected all series empty for an empty view")
	}
}

func TestAggregate_FullPipeline(t *testing.T) {
	dataset := sampleDataset(t)

	results := Aggregate(Apply(dataset, models.FilterSelection{Categories: []string{"X"}}), 10)

	if results.Summary.OrderCount != 2 {
		t.Errorf("expected 2 orders in category X, got %d", results.Summary.OrderCount)
	}
	if !results.Summary.TotalRevenue.Equal(dec("175")) {
		t.Errorf("expected total 175, got %s", results.Summary.TotalRevenue)
	}
	if len(results.TopProducts) != 1 || results.TopProducts[0].Product != "P1" {
		t.Errorf("expected single product P1, got %+v", results.TopProducts)
	}
}
