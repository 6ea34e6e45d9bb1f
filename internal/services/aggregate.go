package services

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

// Results is everything the presentation shell renders for one
// filtered view: KPI numbers, chart series and the top-products table.
type Results struct {
	Summary     models.KPISummary         `json:"summary"`
	ByDay       []models.DailyRevenue     `json:"by_day"`
	ByCity      []models.RevenueBreakdown `json:"by_city"`
	ByChannel   []models.RevenueBreakdown `json:"by_channel"`
	TopProducts []models.TopProduct       `json:"top_products"`
	ByMonth     []models.MonthlyRevenue   `json:"by_month"`
}

// Aggregate computes all dashboard outputs over a filtered view. It is
// a pure function of its input; an empty view yields zero KPIs and
// empty series rather than an error.
func Aggregate(view []models.Sale, topN int) Results {
	return Results{
		Summary:     Summarize(view),
		ByDay:       RevenueByDay(view),
		ByCity:      RevenueBy(view, func(s models.Sale) string { return s.City }),
		ByChannel:   RevenueBy(view, func(s models.Sale) string { return s.Channel }),
		TopProducts: TopProducts(view, topN),
		ByMonth:     RevenueByMonth(view),
	}
}

// orderCounter counts orders the way the KPI defines them: distinct
// order ids when the column is present, one order per row otherwise.
type orderCounter struct {
	ids  map[string]struct{}
	rows int
}

func (c *orderCounter) add(orderID string) {
	if orderID == "" {
		c.rows++
		return
	}
	if c.ids == nil {
		c.ids = make(map[string]struct{})
	}
	c.ids[orderID] = struct{}{}
}

func (c *orderCounter) count() int {
	return c.rows + len(c.ids)
}

// Summarize computes the KPI block. AverageOrderValue is defined as 0
// for an empty view so an empty filter result never becomes a
// division error.
func Summarize(view []models.Sale) models.KPISummary {
	total := decimal.Zero
	var orders orderCounter
	for _, s := range view {
		total = total.Add(s.Revenue)
		orders.add(s.OrderID)
	}

	count := orders.count()
	avg := decimal.Zero
	if count > 0 {
		avg = total.Div(decimal.NewFromInt(int64(count)))
	}

	return models.KPISummary{
		TotalRevenue:      total,
		OrderCount:        count,
		AverageOrderValue: avg,
	}
}

// RevenueByDay sums revenue per calendar date, ascending. Days with no
// matching rows are not synthesized; the series is sparse and the
// shell decides whether to fill gaps.
func RevenueByDay(view []models.Sale) []models.DailyRevenue {
	groups := make(map[string]decimal.Decimal)
	for _, s := range view {
		day := s.Date.Format(DateFormat)
		groups[day] = groups[day].Add(s.Revenue)
	}

	result := make([]models.DailyRevenue, 0, len(groups))
	for day, revenue := range groups {
		result = append(result, models.DailyRevenue{Date: day, Revenue: revenue})
	}
	slices.SortFunc(result, func(a, b models.DailyRevenue) int {
		return strings.Compare(a.Date, b.Date)
	})
	return result
}

// RevenueBy groups the view by an arbitrary string dimension and sums
// revenue per key, descending by revenue with ties broken by ascending
// key for determinism.
func RevenueBy(view []models.Sale, key func(models.Sale) string) []models.RevenueBreakdown {
	revenues := make(map[string]decimal.Decimal)
	orders := make(map[string]*orderCounter)
	for _, s := range view {
		k := key(s)
		revenues[k] = revenues[k].Add(s.Revenue)
		if orders[k] == nil {
			orders[k] = &orderCounter{}
		}
		orders[k].add(s.OrderID)
	}

	result := make([]models.RevenueBreakdown, 0, len(revenues))
	for k, revenue := range revenues {
		result = append(result, models.RevenueBreakdown{
			Key:     k,
			Revenue: revenue,
			Orders:  orders[k].count(),
		})
	}
	slices.SortFunc(result, func(a, b models.RevenueBreakdown) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	return result
}

// TopProducts ranks products by summed revenue, descending with
// alphabetical tie-breaks, truncated to at most n entries.
func TopProducts(view []models.Sale, n int) []models.TopProduct {
	revenues := make(map[string]decimal.Decimal)
	orders := make(map[string]*orderCounter)
	for _, s := range view {
		revenues[s.Product] = revenues[s.Product].Add(s.Revenue)
		if orders[s.Product] == nil {
			orders[s.Product] = &orderCounter{}
		}
		orders[s.Product].add(s.OrderID)
	}

	result := make([]models.TopProduct, 0, len(revenues))
	for product, revenue := range revenues {
		result = append(result, models.TopProduct{
			Product: product,
			Orders:  orders[product].count(),
			Revenue: revenue,
		})
	}
	slices.SortFunc(result, func(a, b models.TopProduct) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return strings.Compare(a.Product, b.Product)
	})

	if len(result) > n {
		result = result[:n]
	}
	return result
}

// RevenueByMonth sums revenue per YYYY-MM month, ascending, and
// carries a cumulative running total alongside each month.
func RevenueByMonth(view []models.Sale) []models.MonthlyRevenue {
	groups := make(map[string]decimal.Decimal)
	for _, s := range view {
		month := s.Date.Format("2006-01")
		groups[month] = groups[month].Add(s.Revenue)
	}

	result := make([]models.MonthlyRevenue, 0, len(groups))
	for month, revenue := range groups {
		result = append(result, models.MonthlyRevenue{Month: month, Revenue: revenue})
	}
	slices.SortFunc(result, func(a, b models.MonthlyRevenue) int {
		return strings.Compare(a.Month, b.Month)
	})

	running := decimal.Zero
	for i := range result {
		running = running.Add(result[i].Revenue)
		result[i].Cumulative = running
	}
	return result
}
