package leads

import (
	"net/url"

	"github.com/google/uuid"
	"github.com/iautomae/platform/pkg/query"
)

// Filters contains optional filtering criteria for lead queries.
type Filters struct {
	AgentID *uuid.UUID
	Status  *Status
	Phone   *string
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if a := values.Get("agent_id"); a != "" {
		if id, err := uuid.Parse(a); err == nil {
			f.AgentID = &id
		}
	}
	if s := values.Get("status"); s != "" {
		status := Status(s)
		if status.Validate() == nil {
			f.Status = &status
		}
	}
	if p := values.Get("phone"); p != "" {
		f.Phone = &p
	}

	return f
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	if f.AgentID != nil {
		b.WhereEquals("AgentID", *f.AgentID)
	}
	if f.Status != nil {
		b.WhereEquals("Status", string(*f.Status))
	}
	b.WhereContains("Phone", f.Phone)
	return b
}
