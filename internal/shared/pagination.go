package shared

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Default pagination values used by list endpoints.
const (
	DefaultPage           = 1
	DefaultResultsPerPage = 10
)

// PageRequest selects a one-based page of a collection.
type PageRequest struct {
	Page           int
	ResultsPerPage int
}

// ParsePageRequest reads page and resultsPerPage from the query string.
// Missing or unparsable values fall back to defaults and values below one are clamped to one.
func ParsePageRequest(q url.Values) PageRequest {
	return PageRequest{
		Page:           parsePositive(q.Get("page"), DefaultPage),
		ResultsPerPage: parsePositive(q.Get("resultsPerPage"), DefaultResultsPerPage),
	}
}

func parsePositive(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if v < 1 {
		return 1
	}
	return v
}

// Normalize replaces non-positive fields with defaults.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.ResultsPerPage < 1 {
		p.ResultsPerPage = DefaultResultsPerPage
	}
	return p
}

// Offset returns the index of the first row on the page. Offsets that would
// overflow int saturate at math.MaxInt, which is past the end of any collection.
func (p PageRequest) Offset() int {
	p = p.Normalize()
	if p.Page-1 > (math.MaxInt-p.ResultsPerPage)/p.ResultsPerPage {
		return math.MaxInt
	}
	return (p.Page - 1) * p.ResultsPerPage
}

// Query encodes the request as query parameters.
func (p PageRequest) Query() url.Values {
	p = p.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("resultsPerPage", strconv.Itoa(p.ResultsPerPage))
	return q
}

// Paginate returns the rows of items selected by req. A page past the end yields an empty slice.
func Paginate[T any](items []T, req PageRequest) []T {
	req = req.Normalize()
	start := req.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + min(req.ResultsPerPage, len(items)-start)
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// Page is the wire shape of every paginated list response.
type Page[T any] struct {
	Results []T `json:"results"`
	Total   int `json:"total"`
}

// NewPage builds a Page, never returning a nil Results slice.
func NewPage[T any](results []T, total int) Page[T] {
	if results == nil {
		results = []T{}
	}
	return Page[T]{Results: results, Total: total}
}

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultResultsPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// HasNext reports whether another page follows.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}
