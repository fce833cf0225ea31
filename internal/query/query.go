// Package query turns raw list parameters (title, sort, page, limit) into a
// normalized, deterministic query description shared by every store backend.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50

	DefaultSortField = "createdAt"
)

// sortColumns whitelists sortable fields and maps API names to columns.
// Anything outside this map falls back to the default sort; user input never
// reaches an ORDER BY clause verbatim.
var sortColumns = map[string]string{
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
	"category":  "category",
	"deadline":  "deadline",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// Params is a normalized list query. Identical Params against identical data
// must yield identical ordering and paging.
type Params struct {
	Title     string // exact match, case-insensitive; empty = no filter
	SortField string // one of the whitelisted API field names
	SortDesc  bool
	Paginated bool // set only when page or limit was supplied
	Page      int
	Limit     int
}

// Parse normalizes raw query values. Pagination activates only when page or
// limit is present; out-of-range values are coerced, never rejected.
func Parse(v url.Values) Params {
	p := Params{
		Title:     strings.TrimSpace(v.Get("title")),
		SortField: DefaultSortField,
		SortDesc:  true,
		Page:      1,
		Limit:     DefaultLimit,
	}

	if sort := strings.TrimSpace(v.Get("sort")); sort != "" {
		field, desc := strings.TrimPrefix(sort, "-"), strings.HasPrefix(sort, "-")
		if _, ok := sortColumns[field]; ok {
			p.SortField = field
			p.SortDesc = desc
		}
	}

	if v.Has("page") || v.Has("limit") {
		p.Paginated = true
		if n, err := strconv.Atoi(v.Get("page")); err == nil && n > 0 {
			p.Page = n
		}
		if n, err := strconv.Atoi(v.Get("limit")); err == nil && n > 0 {
			p.Limit = n
		}
		if p.Limit > MaxLimit {
			p.Limit = MaxLimit
		}
	}
	return p
}

// OrderBy renders the ORDER BY expression for SQL backends. Ties on the
// primary key fall back to insertion order (created_at, id) so paging is
// stable.
func (p Params) OrderBy() string {
	col := sortColumns[p.SortField]
	if col == "" {
		col = sortColumns[DefaultSortField]
	}
	dir := "ASC"
	if p.SortDesc {
		dir = "DESC"
	}
	if col == "created_at" {
		return col + " " + dir + ", id ASC"
	}
	return col + " " + dir + ", created_at ASC, id ASC"
}

func (p Params) Offset() int { return (p.Page - 1) * p.Limit }

// EscapeLike neutralizes LIKE/ILIKE metacharacters in user input so a title
// filter is always a literal full-string match, never a pattern.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// PageInfo is the pagination envelope returned when paging is active.
type PageInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func NewPageInfo(p Params, total int) PageInfo {
	pages := (total + p.Limit - 1) / p.Limit
	if pages < 1 {
		pages = 1
	}
	return PageInfo{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}
