// Package query provides a fluent SQL builder with field-to-column
// projection maps and automatic parameter numbering.
package query

import (
	"fmt"
	"strings"
)

type projectedColumn struct {
	column string
	field  string
}

// ProjectionMap maps logical field names to database columns for a table.
// Handlers and filters reference fields by their logical name; the map
// resolves them to alias-qualified column expressions.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns []projectedColumn
	fields  map[string]string
}

// NewProjectionMap creates a projection for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		fields: make(map[string]string),
	}
}

// Project registers a column under a logical field name. Columns are
// selected in registration order.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	p.columns = append(p.columns, projectedColumn{column: column, field: field})
	p.fields[field] = fmt.Sprintf("%s.%s", p.alias, column)
	return p
}

// Table returns the aliased table reference for FROM clauses.
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Columns returns the comma-separated list of projected columns.
func (p *ProjectionMap) Columns() string {
	cols := make([]string, len(p.columns))
	for i, c := range p.columns {
		cols[i] = fmt.Sprintf("%s.%s", p.alias, c.column)
	}
	return strings.Join(cols, ", ")
}

// Column resolves a logical field name to its aliased column expression.
// Unknown fields resolve to an empty string.
func (p *ProjectionMap) Column(field string) string {
	return p.fields[field]
}

// HasField reports whether the projection contains the logical field.
func (p *ProjectionMap) HasField(field string) bool {
	_, ok := p.fields[field]
	return ok
}
