package pagination

import (
	"net/url"
	"strconv"

	"github.com/iautomae/platform/pkg/query"
)

// PageRequest captures what a client asked a list endpoint for: which
// page, how many rows, and optional search and sort refinements.
type PageRequest struct {
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Search   *string           `json:"search,omitempty"`
	Sort     []query.SortField `json:"sort,omitempty"`
}

// Normalize clamps the request into the bounds the config allows. Pages
// start at 1; a missing or absurd page size falls back to the default.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Page < 1 {
		r.Page = 1
	}

	switch {
	case r.PageSize < 1:
		r.PageSize = cfg.DefaultPageSize
	case r.PageSize > cfg.MaxPageSize:
		r.PageSize = cfg.MaxPageSize
	}
}

// Offset converts the page number into the row count to skip.
func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// Window returns the LIMIT and OFFSET pair for the request, for queries
// built by hand rather than through the query builder.
func (r *PageRequest) Window() (limit, offset int) {
	return r.PageSize, r.Offset()
}

// PageRequestFromQuery reads page, page_size, search, and sort from URL
// query values. Sort is comma separated with a "-" prefix for descending
// fields. The result comes back already normalized.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	req := PageRequest{
		Page:     queryInt(values, "page"),
		PageSize: queryInt(values, "page_size"),
		Sort:     query.ParseSortFields(values.Get("sort")),
	}

	if s := values.Get("search"); s != "" {
		req.Search = &s
	}

	req.Normalize(cfg)
	return req
}

// queryInt parses a query parameter as an int, treating absent or
// malformed values as zero so Normalize can apply the defaults.
func queryInt(values url.Values, key string) int {
	n, err := strconv.Atoi(values.Get(key))
	if err != nil {
		return 0
	}
	return n
}

// PageResult is the wire shape every list endpoint responds with: one
// page of rows plus enough metadata for a client to render a pager.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult assembles a PageResult. An empty set still reports one
// page, and nil data serializes as an empty JSON array rather than null.
func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	if data == nil {
		data = []T{}
	}

	totalPages := 1
	if pageSize > 0 && total > pageSize {
		totalPages = (total + pageSize - 1) / pageSize
	}

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
