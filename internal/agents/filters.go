package agents

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/iautomae/platform/pkg/query"
)

// Filters contains optional filtering criteria for agent queries.
type Filters struct {
	Name   *string
	UserID *uuid.UUID
	Active *bool
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}
	if u := values.Get("user_id"); u != "" {
		if id, err := uuid.Parse(u); err == nil {
			f.UserID = &id
		}
	}
	if a := values.Get("active"); a != "" {
		if b, err := strconv.ParseBool(a); err == nil {
			f.Active = &b
		}
	}

	return f
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.WhereContains("Name", f.Name)
	if f.UserID != nil {
		b.WhereEquals("UserID", *f.UserID)
	}
	if f.Active != nil {
		b.WhereEquals("Active", *f.Active)
	}
	return b
}
