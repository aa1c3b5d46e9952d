// Package report reconciles persisted observations into the final
// one-row-per-company table and renders it.
package report

import (
	"github.com/sells-group/leadspider-cli/internal/model"
)

// Value is a nullable cell: a string, a float64, or nil.
type Value any

// Row maps column name to cell value. Missing keys read as nil.
type Row map[string]Value

// Table is a small column-ordered frame keyed by company identity.
// Row order follows insertion order of identities.
type Table struct {
	columns []string
	order   []model.CompanyID
	rows    map[model.CompanyID]Row
}

// NewTable creates an empty table with the given column order. The
// company identity itself is the row key, not a column.
func NewTable(columns ...string) *Table {
	return &Table{
		columns: columns,
		rows:    make(map[model.CompanyID]Row),
	}
}

// Columns returns the column order.
func (t *Table) Columns() []string {
	return t.columns
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.order)
}

// Companies returns row keys in insertion order.
func (t *Table) Companies() []model.CompanyID {
	return t.order
}

// Get returns the row for a company, or nil.
func (t *Table) Get(id model.CompanyID) Row {
	return t.rows[id]
}

// Set inserts or replaces the row for a company.
func (t *Table) Set(id model.CompanyID, row Row) {
	if _, exists := t.rows[id]; !exists {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

// AddColumn appends a column if not already present.
func (t *Table) AddColumn(name string) {
	for _, c := range t.columns {
		if c == name {
			return
		}
	}
	t.columns = append(t.columns, name)
}

// LeftJoin merges other into t on company identity: every row of t keeps
// its identity, gaining other's columns; companies only present in other
// are dropped. Returns a new table, inputs are not mutated.
func (t *Table) LeftJoin(other *Table) *Table {
	joined := NewTable()
	joined.columns = append(joined.columns, t.columns...)
	for _, c := range other.columns {
		joined.AddColumn(c)
	}

	for _, id := range t.order {
		row := make(Row, len(joined.columns))
		for col, v := range t.rows[id] {
			row[col] = v
		}
		if right := other.rows[id]; right != nil {
			for col, v := range right {
				row[col] = v
			}
		}
		joined.Set(id, row)
	}
	return joined
}

// DropEmptyColumns removes every column that is nil for all rows. A
// column present in the schema with zero populated rows is noise, not
// signal. Returns t for chaining.
func (t *Table) DropEmptyColumns() *Table {
	kept := t.columns[:0:0]
	for _, col := range t.columns {
		populated := false
		for _, row := range t.rows {
			if row[col] != nil {
				populated = true
				break
			}
		}
		if populated {
			kept = append(kept, col)
		}
	}
	t.columns = kept
	return t
}
