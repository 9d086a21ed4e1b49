// Package pager slices entry lists into numbered pages for button menus.
package pager

import "github.com/m3rciful/refbot/internal/catalog"

// DefaultPageSize is the number of entries shown per list page.
const DefaultPageSize = 15

// Page is one rendered slice of a collection.
type Page struct {
	// Number is the clamped zero-based page index.
	Number  int
	Items   []catalog.Entry
	HasPrev bool
	HasNext bool
}

// Render slices items for the requested page. The page index is clamped to
// the valid range. ok is false when there is nothing to render.
func Render(items []catalog.Entry, page, pageSize int) (Page, bool) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if len(items) == 0 {
		return Page{}, false
	}

	lastPage := (len(items) - 1) / pageSize
	if page < 0 {
		page = 0
	}
	if page > lastPage {
		page = lastPage
	}

	start := page * pageSize
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return Page{
		Number:  page,
		Items:   items[start:end],
		HasPrev: page > 0,
		HasNext: page < lastPage,
	}, true
}
