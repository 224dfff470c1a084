package pagination

import (
	"net/url"
	"testing"
)

var testConfig = Config{DefaultPageSize: 20, MaxPageSize: 100}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"zero values", 0, 0, 1, 20},
		{"negative page", -5, 10, 1, 10},
		{"oversized page size", 1, 500, 1, 100},
		{"valid request", 3, 50, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := PageRequest{Page: tt.page, PageSize: tt.pageSize}
			req.Normalize(testConfig)

			if req.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", req.Page, tt.wantPage)
			}
			if req.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d, want %d", req.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		want     int
	}{
		{"first page", 1, 20, 0},
		{"second page", 2, 20, 20},
		{"fifth page of ten", 5, 10, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := PageRequest{Page: tt.page, PageSize: tt.pageSize}
			if got := req.Offset(); got != tt.want {
				t.Errorf("Offset() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	req := PageRequest{Page: 3, PageSize: 25}

	limit, offset := req.Window()
	if limit != 25 || offset != 50 {
		t.Errorf("Window() = (%d, %d), want (25, 50)", limit, offset)
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	values := url.Values{
		"page":      {"2"},
		"page_size": {"25"},
		"search":    {"acme"},
		"sort":      {"name,-created_at"},
	}

	req := PageRequestFromQuery(values, testConfig)

	if req.Page != 2 || req.PageSize != 25 {
		t.Errorf("page = %d size = %d, want 2 and 25", req.Page, req.PageSize)
	}
	if req.Search == nil || *req.Search != "acme" {
		t.Errorf("Search = %v, want acme", req.Search)
	}
	if len(req.Sort) != 2 || req.Sort[0].Field != "name" || !req.Sort[1].Descending {
		t.Errorf("Sort = %v", req.Sort)
	}
}

func TestPageRequestFromQueryEmpty(t *testing.T) {
	req := PageRequestFromQuery(url.Values{}, testConfig)

	if req.Page != 1 || req.PageSize != 20 {
		t.Errorf("page = %d size = %d, want normalized defaults", req.Page, req.PageSize)
	}
	if req.Search != nil {
		t.Errorf("Search = %v, want nil", req.Search)
	}
}

func TestPageRequestFromQueryMalformed(t *testing.T) {
	values := url.Values{
		"page":      {"abc"},
		"page_size": {"1.5"},
	}

	req := PageRequestFromQuery(values, testConfig)
	if req.Page != 1 || req.PageSize != 20 {
		t.Errorf("page = %d size = %d, want normalized defaults", req.Page, req.PageSize)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		pageSize       int
		wantTotalPages int
	}{
		{"exact division", 100, 20, 5},
		{"with remainder", 101, 20, 6},
		{"empty set", 0, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewPageResult([]string{}, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
		})
	}
}

func TestNewPageResultNilData(t *testing.T) {
	result := NewPageResult[string](nil, 0, 1, 20)
	if result.Data == nil {
		t.Error("Data should be an empty slice, not nil")
	}
}
