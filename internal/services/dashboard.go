package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"sales-dashboard/internal/models"
)

type parsedUpload struct {
	dataset models.Dataset
	skipped int
}

// Dashboard owns the current dataset snapshot. Uploads replace the
// snapshot wholesale; every query runs the pure filter and aggregate
// functions against whatever snapshot is current. Parsed uploads are
// memoized by content hash so re-uploading the same file skips the
// parse.
type Dashboard struct {
	mu      sync.RWMutex
	dataset models.Dataset
	report  models.LoadReport
	memo    map[[sha256.Size]byte]parsedUpload
	topN    int
	logger  *slog.Logger
}

func NewDashboard(topN int, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		memo:   make(map[[sha256.Size]byte]parsedUpload),
		topN:   topN,
		logger: logger,
	}
}

// LoadFromFile loads the default dataset from disk at startup.
func (d *Dashboard) LoadFromFile(ctx context.Context, path string) (models.LoadReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.LoadReport{}, err
	}
	return d.LoadFromBytes(ctx, data, path)
}

// LoadFromBytes parses CSV content and swaps it in as the current
// snapshot. On error the previous snapshot stays in place.
func (d *Dashboard) LoadFromBytes(ctx context.Context, data []byte, source string) (models.LoadReport, error) {
	key := sha256.Sum256(data)

	d.mu.RLock()
	cached, hit := d.memo[key]
	d.mu.RUnlock()

	if !hit {
		start := time.Now()
		dataset, skipped, err := ParseCSV(ctx, bytes.NewReader(data))
		if err != nil {
			return models.LoadReport{}, err
		}
		cached = parsedUpload{dataset: dataset, skipped: skipped}
		d.logger.Info("dataset parsed",
			"source", source,
			"records", len(dataset),
			"skipped_rows", skipped,
			"duration", time.Since(start),
		)
	}

	report := models.LoadReport{
		Records:     len(cached.dataset),
		SkippedRows: cached.skipped,
		Source:      source,
		LoadedAt:    time.Now().UTC(),
	}

	d.mu.Lock()
	d.memo[key] = cached
	d.dataset = cached.dataset
	d.report = report
	d.mu.Unlock()

	if cached.skipped > 0 {
		d.logger.Warn("rows skipped during load", "source", source, "skipped_rows", cached.skipped)
	}

	return report, nil
}

// SetData installs a dataset directly, bypassing the loader.
func (d *Dashboard) SetData(dataset models.Dataset) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dataset = dataset
	d.report = models.LoadReport{
		Records:  len(dataset),
		Source:   "inline",
		LoadedAt: time.Now().UTC(),
	}
}

// Snapshot returns the current dataset and its load report. The slice
// must be treated as read-only by callers.
func (d *Dashboard) Snapshot() (models.Dataset, models.LoadReport) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dataset, d.report
}

// Query recomputes the full pipeline for one filter selection.
func (d *Dashboard) Query(sel models.FilterSelection) Results {
	dataset, _ := d.Snapshot()
	return Aggregate(Apply(dataset, sel), d.topN)
}

// QueryTopProducts recomputes only the product ranking, with a caller
// supplied limit.
func (d *Dashboard) QueryTopProducts(sel models.FilterSelection, limit int) []models.TopProduct {
	dataset, _ := d.Snapshot()
	return TopProducts(Apply(dataset, sel), limit)
}

// Options derives the filter control values from the loaded dataset:
// distinct sorted cities, channels and categories plus the date span.
func (d *Dashboard) Options() models.FilterOptions {
	dataset, _ := d.Snapshot()

	var opts models.FilterOptions
	cities := make(map[string]struct{})
	channels := make(map[string]struct{})
	categories := make(map[string]struct{})

	var minDate, maxDate time.Time
	for _, s := range dataset {
		cities[s.City] = struct{}{}
		channels[s.Channel] = struct{}{}
		categories[s.Category] = struct{}{}

		if minDate.IsZero() || s.Date.Before(minDate) {
			minDate = s.Date
		}
		if maxDate.IsZero() || s.Date.After(maxDate) {
			maxDate = s.Date
		}
	}

	opts.Cities = sortedKeys(cities)
	opts.Channels = sortedKeys(channels)
	opts.Categories = sortedKeys(categories)
	if !minDate.IsZero() {
		opts.MinDate = minDate.Format(DateFormat)
		opts.MaxDate = maxDate.Format(DateFormat)
	}
	return opts
}

func (d *Dashboard) Stats() map[string]any {
	dataset, report := d.Snapshot()

	days := make(map[string]struct{})
	products := make(map[string]struct{})
	for _, s := range dataset {
		days[s.Date.Format(DateFormat)] = struct{}{}
		products[s.Product] = struct{}{}
	}

	return map[string]any{
		"record_count": report.Records,
		"skipped_rows": report.SkippedRows,
		"source":       report.Source,
		"loaded_at":    report.LoadedAt,
		"days":         len(days),
		"products":     len(products),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
