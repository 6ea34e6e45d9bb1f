package services

import (
	"slices"

	"sales-dashboard/internal/models"
)

// Apply returns the rows of dataset matching sel. It is a pure
// function: the dataset is never mutated and every call produces a
// fresh slice. All predicates are ANDed, so application order cannot
// change the result.
func Apply(dataset models.Dataset, sel models.FilterSelection) []models.Sale {
	view := make([]models.Sale, 0, len(dataset))
	for _, s := range dataset {
		if matches(s, sel) {
			view = append(view, s)
		}
	}
	return view
}

func matches(s models.Sale, sel models.FilterSelection) bool {
	// Date range is inclusive on both ends; a zero bound is open.
	if !sel.Start.IsZero() && s.Date.Before(sel.Start) {
		return false
	}
	if !sel.End.IsZero() && s.Date.After(sel.End) {
		return false
	}

	return inSet(s.City, sel.Cities) &&
		inSet(s.Channel, sel.Channels) &&
		inSet(s.Category, sel.Categories)
}

// inSet treats an empty set as "no restriction", not "match nothing".
func inSet(value string, set []string) bool {
	if len(set) == 0 {
		return true
	}
	return slices.Contains(set, value)
}
