// internal/query/page.go

// Package query holds storage-agnostic list specifications: filters, sort
// order and page windows parsed from request options. The repository layer
// renders them into SQL.
package query

import (
	"math"
	"net/url"
	"strconv"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100

	// MaxPage keeps Offset within an int32 on every platform and dialect.
	MaxPage = math.MaxInt32 / MaxPerPage
)

// Page is a 1-indexed page window. Use NewPage to get clamped values.
type Page struct {
	Number  int
	PerPage int
}

// NewPage clamps page into [1, MaxPage] and perPage into [1, MaxPerPage].
// Zero or negative perPage falls back to DefaultPerPage.
func NewPage(page, perPage int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Page{Number: page, PerPage: perPage}
}

func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }
func (p Page) Limit() int  { return p.PerPage }

// Meta describes where a page sits in the full result.
type Meta struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	TotalPages  int  `json:"total_pages"`
	TotalCount  int  `json:"total_count"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

func NewMeta(p Page, total int) Meta {
	pages := int(math.Ceil(float64(total) / float64(p.PerPage)))
	return Meta{
		CurrentPage: p.Number,
		PerPage:     p.PerPage,
		TotalPages:  pages,
		TotalCount:  total,
		HasNextPage: p.Number < pages,
		HasPrevPage: p.Number > 1,
	}
}

// parsePage reads page and per_page. Unparsable values use the defaults.
func parsePage(v url.Values) Page {
	page, _ := strconv.Atoi(v.Get("page"))
	perPage, _ := strconv.Atoi(v.Get("per_page"))
	return NewPage(page, perPage)
}
