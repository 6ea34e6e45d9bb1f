package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

const (
	defaultTopProducts = 10
	maxTopProducts     = 50
)

// parseFilterSelection reads the filter controls from the query string:
// start, end (YYYY-MM-DD, inclusive) and comma-separated cities,
// channels and categories. Absent parameters leave the selection open.
func parseFilterSelection(r *http.Request) (models.FilterSelection, error) {
	q := r.URL.Query()
	var sel models.FilterSelection

	if v := strings.TrimSpace(q.Get("start")); v != "" {
		t, err := time.Parse(services.DateFormat, v)
		if err != nil {
			return sel, errors.ValidationWrap(err, "invalid start date, want "+services.DateFormat)
		}
		sel.Start = t
	}

	if v := strings.TrimSpace(q.Get("end")); v != "" {
		t, err := time.Parse(services.DateFormat, v)
		if err != nil {
			return sel, errors.ValidationWrap(err, "invalid end date, want "+services.DateFormat)
		}
		sel.End = t
	}

	if !sel.Start.IsZero() && !sel.End.IsZero() && sel.End.Before(sel.Start) {
		return sel, errors.Validation("end date must not be before start date")
	}

	sel.Cities = splitList(q.Get("cities"))
	sel.Channels = splitList(q.Get("channels"))
	sel.Categories = splitList(q.Get("categories"))

	return sel, nil
}

func parseLimit(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return defaultTopProducts, nil
	}

	limit, err := strconv.Atoi(v)
	if err != nil || limit < 1 {
		return 0, errors.Validation("limit must be a positive integer")
	}
	if limit > maxTopProducts {
		limit = maxTopProducts
	}
	return limit, nil
}

// splitList turns "A,B,C" into a set slice, dropping empty entries so
// a bare "?cities=" still means "no restriction".
func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
