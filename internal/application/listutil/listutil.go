// Package listutil parses list query parameters and paginates results.
package listutil

import (
	"net/url"
	"strconv"
	"strings"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed
	PerPage int
}

// SortParams carries sorting parameters parsed from a request.
type SortParams struct {
	Sort string // allowed column, or "" for the default order
	Dir  string // "asc" or "desc"
}

// PageInfo is the pagination metadata returned with a list.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 20

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50, 100}

// ParsePageParams extracts page and per_page from URL query values.
// POST: returns valid PageParams with defaults applied
func ParsePageParams(q url.Values) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !isValidPerPage(perPage) {
		perPage = DefaultPerPage
	}
	return PageParams{Page: page, PerPage: perPage}
}

// ParseSortParams extracts sort and dir from URL query values.
// POST: Sort is "" or one of allowedColumns; Dir is always "asc" or "desc"
func ParseSortParams(q url.Values, allowedColumns []string) SortParams {
	sort := q.Get("sort")
	dir := q.Get("dir")
	if !contains(allowedColumns, sort) {
		sort = ""
	}
	if dir != "asc" && dir != "desc" {
		dir = "asc"
	}
	return SortParams{Sort: sort, Dir: dir}
}

// ParseList reads a multi-valued parameter given either repeated
// (?level=a&level=b) or comma-separated (?level=a,b). Blank items are dropped.
func ParseList(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// ParseIntList is ParseList for integers. Items that do not parse are
// reported in bad rather than silently dropped.
func ParseIntList(q url.Values, key string) (values []int, bad []string) {
	for _, item := range ParseList(q, key) {
		n, err := strconv.Atoi(item)
		if err != nil {
			bad = append(bad, item)
			continue
		}
		values = append(values, n)
	}
	return values, bad
}

// ParseBool reads a boolean flag; "1", "true", "yes" and "on" are true.
func ParseBool(q url.Values, key string) bool {
	switch strings.ToLower(strings.TrimSpace(q.Get(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// ParseInt reads an integer parameter, returning def when absent or invalid.
func ParseInt(q url.Values, key string, def int) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return def
	}
	return n
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: Page is clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the index of the first item on the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Paginate returns the slice of items on the requested page and its metadata.
func Paginate[T any](items []T, params PageParams) ([]T, PageInfo) {
	info := NewPageInfo(params.Page, params.PerPage, len(items))
	start := info.Offset()
	end := start + info.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], info
}

func isValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
