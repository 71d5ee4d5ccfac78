package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// Column is a single named, typed column. Exactly one of Nums or Strs is
// populated depending on Kind. Missing numeric values are NaN, missing
// categorical values are "".
type Column struct {
	Name   string
	Header string // original header text, used when writing the table back out
	Unit   string
	Kind   Kind
	Nums   []float64
	Strs   []string
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	if c.Kind == KindNumeric {
		return len(c.Nums)
	}
	return len(c.Strs)
}

// Missing reports whether row i holds no value.
func (c *Column) Missing(i int) bool {
	if c.Kind == KindNumeric {
		return math.IsNaN(c.Nums[i])
	}
	return strings.TrimSpace(c.Strs[i]) == ""
}

// Format renders row i the way it is written to CSV.
func (c *Column) Format(i int) string {
	if c.Kind == KindNumeric {
		v := c.Nums[i]
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return c.Strs[i]
}

func (c *Column) header() string {
	if c.Header != "" {
		return c.Header
	}
	return c.Name
}

// pick returns a copy of the column holding only the given row positions.
func (c *Column) pick(rows []int) *Column {
	out := &Column{Name: c.Name, Header: c.Header, Unit: c.Unit, Kind: c.Kind}
	if c.Kind == KindNumeric {
		out.Nums = make([]float64, len(rows))
		for i, r := range rows {
			out.Nums[i] = c.Nums[r]
		}
		return out
	}
	out.Strs = make([]string, len(rows))
	for i, r := range rows {
		out.Strs[i] = c.Strs[r]
	}
	return out
}

// Table is an ordered set of equally long columns, optionally carrying an
// internal row identifier per row. IDs is nil until WithRowIDs is called.
type Table struct {
	Name    string
	Columns []*Column
	IDs     []int
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	if t == nil {
		return 0
	}
	if t.IDs != nil {
		return len(t.IDs)
	}
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Names returns column names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// NumericNames returns the names of numeric columns in table order.
func (t *Table) NumericNames() []string {
	var out []string
	for _, c := range t.Columns {
		if c.Kind == KindNumeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// Index returns the position of the column matching name, or -1. Matching is
// case-insensitive against both the cleaned name and the original header.
func (t *Table) Index(name string) int {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, c := range t.Columns {
		if strings.ToLower(c.Name) == key {
			return i
		}
	}
	for i, c := range t.Columns {
		if strings.ToLower(strings.TrimSpace(c.Header)) == key {
			return i
		}
	}
	return -1
}

// Column returns the column matching name, or nil.
func (t *Table) Column(name string) *Column {
	if i := t.Index(name); i >= 0 {
		return t.Columns[i]
	}
	return nil
}

// Validate checks that every column has the same number of rows.
func (t *Table) Validate() error {
	n := -1
	if t.IDs != nil {
		n = len(t.IDs)
	}
	seen := map[string]struct{}{}
	for _, c := range t.Columns {
		if n < 0 {
			n = c.Len()
		}
		if c.Len() != n {
			return fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), n)
		}
		key := strings.ToLower(c.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// WithRowIDs returns a copy of the table whose rows are numbered 0..n-1.
// Call it once the row set that enters outlier removal is final.
func (t *Table) WithRowIDs() *Table {
	n := t.Rows()
	all := make([]int, n)
	ids := make([]int, n)
	for i := range ids {
		all[i] = i
		ids[i] = i
	}
	out := t.pick(all)
	out.IDs = ids
	return out
}

// WithoutRowIDs returns a shallow copy of the table with the row identifier removed.
func (t *Table) WithoutRowIDs() *Table {
	return &Table{Name: t.Name, Columns: t.Columns}
}

// Project returns a table holding the row identifier and only the named
// columns, in the order given.
func (t *Table) Project(names ...string) (*Table, error) {
	out := &Table{Name: t.Name, IDs: t.IDs}
	for _, n := range names {
		c := t.Column(n)
		if c == nil {
			return nil, fmt.Errorf("column %q not found", n)
		}
		out.Columns = append(out.Columns, c)
	}
	return out, nil
}

// Without returns a table with the named columns removed.
func (t *Table) Without(names ...string) *Table {
	drop := map[int]struct{}{}
	for _, n := range names {
		if i := t.Index(n); i >= 0 {
			drop[i] = struct{}{}
		}
	}
	out := &Table{Name: t.Name, IDs: t.IDs}
	for i, c := range t.Columns {
		if _, ok := drop[i]; !ok {
			out.Columns = append(out.Columns, c)
		}
	}
	return out
}

// FilterRows returns a new table with only the rows where keep is true.
func (t *Table) FilterRows(keep []bool) *Table {
	rows := make([]int, 0, len(keep))
	for i, k := range keep {
		if k {
			rows = append(rows, i)
		}
	}
	return t.pick(rows)
}

// DropMissing removes rows holding a missing value in any of the named
// columns, or in any column when names is empty.
func (t *Table) DropMissing(names ...string) (*Table, error) {
	cols := t.Columns
	if len(names) > 0 {
		p, err := t.Project(names...)
		if err != nil {
			return nil, err
		}
		cols = p.Columns
	}
	keep := make([]bool, t.Rows())
	for i := range keep {
		keep[i] = true
		for _, c := range cols {
			if c.Missing(i) {
				keep[i] = false
				break
			}
		}
	}
	return t.FilterRows(keep), nil
}

// Take returns a new table holding the rows at the given positions, in that order.
func (t *Table) Take(rows []int) *Table {
	return t.pick(rows)
}

func (t *Table) pick(rows []int) *Table {
	out := &Table{Name: t.Name, Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = c.pick(rows)
	}
	if t.IDs != nil {
		out.IDs = make([]int, len(rows))
		for i, r := range rows {
			out.IDs[i] = t.IDs[r]
		}
	}
	return out
}

// Headers returns the header line used when writing the table.
func (t *Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.header()
	}
	return out
}

// Record returns row i formatted as strings.
func (t *Table) Record(i int) []string {
	rec := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		rec[j] = c.Format(i)
	}
	return rec
}
