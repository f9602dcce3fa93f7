package dataset

import (
	"fmt"
	"strconv"
)

// ValueType defines the storage type for cell values
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeNumeric ValueType = "numeric"
	ValueTypeMissing ValueType = "missing"
)

// Value represents one cell: a number, raw text, or missing. Cleaning needs
// the raw pre-coercion cell, so text is kept verbatim until a component asks
// for the numeric projection.
type Value struct {
	Type       ValueType `json:"type"`
	StringVal  *string   `json:"string_val,omitempty"`
	NumericVal *float64  `json:"numeric_val,omitempty"`
}

// NewStringValue creates a string value; empty text is treated as missing
func NewStringValue(s string) Value {
	if s == "" {
		return Value{Type: ValueTypeMissing}
	}
	return Value{Type: ValueTypeString, StringVal: &s}
}

// NewNumericValue creates a numeric value
func NewNumericValue(n float64) Value {
	return Value{Type: ValueTypeNumeric, NumericVal: &n}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing}
}

// IsMissing returns true if the cell holds no value
func (v Value) IsMissing() bool {
	return v.Type == ValueTypeMissing
}

// IsNumeric returns true if the value represents a valid number
func (v Value) IsNumeric() bool {
	return v.Type == ValueTypeNumeric && v.NumericVal != nil
}

// AsFloat64 returns the numeric value as float64, or 0 if not numeric
func (v Value) AsFloat64() float64 {
	if v.NumericVal != nil {
		return *v.NumericVal
	}
	return 0.0
}

// AsString returns the string value, or empty string if not a string
func (v Value) AsString() string {
	if v.StringVal != nil {
		return *v.StringVal
	}
	return ""
}

// Interface returns the cell as nil / float64 / string for JSON previews
func (v Value) Interface() interface{} {
	switch v.Type {
	case ValueTypeNumeric:
		if v.NumericVal != nil {
			return *v.NumericVal
		}
	case ValueTypeString:
		if v.StringVal != nil {
			return *v.StringVal
		}
	}
	return nil
}

// String returns the string representation of the value
func (v Value) String() string {
	switch v.Type {
	case ValueTypeString:
		if v.StringVal != nil {
			return *v.StringVal
		}
	case ValueTypeNumeric:
		if v.NumericVal != nil {
			return strconv.FormatFloat(*v.NumericVal, 'g', -1, 64)
		}
	case ValueTypeMissing:
		return "<missing>"
	}
	return "<invalid>"
}

// Column is one named, ordered sequence of cells
type Column struct {
	Name  string  `json:"name"`
	Cells []Value `json:"cells"`
}

// MissingCount returns the number of missing cells in the column
func (c Column) MissingCount() int {
	count := 0
	for _, cell := range c.Cells {
		if cell.IsMissing() {
			count++
		}
	}
	return count
}

// Dataset is an ordered sequence of named columns aligned by a shared row
// index. All columns have equal length; index values stay stable across
// cleaning operations that preserve rows.
type Dataset struct {
	Columns []Column `json:"columns"`
	Index   []int    `json:"index"`
}

// FromColumns builds a dataset from equally sized columns, assigning a fresh
// zero-based row index.
func FromColumns(columns []Column) (Dataset, error) {
	rows := 0
	if len(columns) > 0 {
		rows = len(columns[0].Cells)
	}
	for _, col := range columns {
		if len(col.Cells) != rows {
			return Dataset{}, fmt.Errorf("column %q has %d cells, want %d", col.Name, len(col.Cells), rows)
		}
	}
	index := make([]int, rows)
	for i := range index {
		index[i] = i
	}
	return Dataset{Columns: columns, Index: index}, nil
}

// RowCount returns the number of rows
func (d Dataset) RowCount() int {
	return len(d.Index)
}

// ColumnNames returns the column names in dataset order
func (d Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		names[i] = col.Name
	}
	return names
}

// HasColumn reports whether a column with the given name exists
func (d Dataset) HasColumn(name string) bool {
	return d.columnIndex(name) >= 0
}

// Column returns the named column
func (d Dataset) Column(name string) (Column, bool) {
	idx := d.columnIndex(name)
	if idx < 0 {
		return Column{}, false
	}
	return d.Columns[idx], true
}

func (d Dataset) columnIndex(name string) int {
	for i, col := range d.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy; mutations on the copy never leak into the
// original, which callers may keep for further exploration.
func (d Dataset) Clone() Dataset {
	columns := make([]Column, len(d.Columns))
	for i, col := range d.Columns {
		cells := make([]Value, len(col.Cells))
		copy(cells, col.Cells)
		columns[i] = Column{Name: col.Name, Cells: cells}
	}
	index := make([]int, len(d.Index))
	copy(index, d.Index)
	return Dataset{Columns: columns, Index: index}
}

// DropColumn removes the named column in place; unknown names are a no-op
func (d *Dataset) DropColumn(name string) {
	idx := d.columnIndex(name)
	if idx < 0 {
		return
	}
	d.Columns = append(d.Columns[:idx], d.Columns[idx+1:]...)
}

// ReplaceColumn swaps the cells of the named column in place
func (d *Dataset) ReplaceColumn(name string, cells []Value) {
	idx := d.columnIndex(name)
	if idx < 0 {
		return
	}
	d.Columns[idx].Cells = cells
}

// FilterRows keeps only the rows whose position is marked true, preserving
// the original row index values for the survivors.
func (d *Dataset) FilterRows(keep []bool) {
	for i := range d.Columns {
		kept := d.Columns[i].Cells[:0:0]
		for pos, cell := range d.Columns[i].Cells {
			if keep[pos] {
				kept = append(kept, cell)
			}
		}
		d.Columns[i].Cells = kept
	}
	index := d.Index[:0:0]
	for pos, id := range d.Index {
		if keep[pos] {
			index = append(index, id)
		}
	}
	d.Index = index
}

// Preview returns up to n leading rows as column-name → cell records
func (d Dataset) Preview(n int) []map[string]interface{} {
	if n > d.RowCount() {
		n = d.RowCount()
	}
	rows := make([]map[string]interface{}, 0, n)
	for pos := 0; pos < n; pos++ {
		row := make(map[string]interface{}, len(d.Columns))
		for _, col := range d.Columns {
			row[col.Name] = col.Cells[pos].Interface()
		}
		rows = append(rows, row)
	}
	return rows
}
