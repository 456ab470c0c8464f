package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Well-known column names of the air-quality dataset.
const (
	ColYear    = "year"
	ColMonth   = "month"
	ColStation = "station"
	ColTemp    = "TEMP"
)

// Pollutants lists the measured contaminant columns in dashboard order.
var Pollutants = []string{"PM2.5", "PM10", "SO2", "NO2", "CO", "O3"}

// ErrUnknownColumn is returned when an operation names a column the table lacks.
var ErrUnknownColumn = errors.New("unknown column")

// Kind is the storage type of a column.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindNumber
	KindLabel
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindNumber:
		return "number"
	case KindLabel:
		return "label"
	default:
		return "unknown"
	}
}

// Number is a float cell with an explicit missing marker.
type Number struct {
	Value float64
	Valid bool
}

// Missing is the zero Number.
var Missing = Number{}

// Num wraps a valid value.
func Num(v float64) Number { return Number{Value: v, Valid: true} }

// Column is one named, typed column. Columns are never mutated after a Table
// is built, so tables may share them.
type Column struct {
	Name string
	Kind Kind
	// Levels is the ordered level list of a KindLabel column; a label's rank is
	// its index here.
	Levels []string

	texts []string
	ints  []int
	nums  []Number
}

// Len returns the number of cells.
func (c *Column) Len() int {
	switch c.Kind {
	case KindInt:
		return len(c.ints)
	case KindNumber:
		return len(c.nums)
	default:
		return len(c.texts)
	}
}

// Rank returns the position of a label in Levels, or -1.
func (c *Column) Rank(label string) int {
	for i, l := range c.Levels {
		if l == label {
			return i
		}
	}
	return -1
}

// String renders cell i as text.
func (c *Column) String(i int) string {
	switch c.Kind {
	case KindInt:
		return strconv.Itoa(c.ints[i])
	case KindNumber:
		n := c.nums[i]
		if !n.Valid {
			return ""
		}
		return strconv.FormatFloat(n.Value, 'f', -1, 64)
	default:
		return c.texts[i]
	}
}

// NewTextColumn builds a text column.
func NewTextColumn(name string, vals []string) *Column {
	return &Column{Name: name, Kind: KindText, texts: vals}
}

// NewIntColumn builds an integer column.
func NewIntColumn(name string, vals []int) *Column {
	return &Column{Name: name, Kind: KindInt, ints: vals}
}

// NewNumberColumn builds a numeric column.
func NewNumberColumn(name string, vals []Number) *Column {
	return &Column{Name: name, Kind: KindNumber, nums: vals}
}

// NewLabelColumn builds an ordered categorical column.
func NewLabelColumn(name string, vals []string, levels []string) *Column {
	return &Column{Name: name, Kind: KindLabel, texts: vals, Levels: levels}
}

// Table is an immutable, column-oriented air-quality table.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// NewTable assembles columns of equal length into a table.
func NewTable(cols ...*Column) (*Table, error) {
	t := &Table{cols: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		t.index[c.Name] = i
		if i == 0 {
			t.rows = c.Len()
			continue
		}
		if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), t.rows)
		}
	}
	return t, nil
}

// Len returns the row count.
func (t *Table) Len() int { return t.rows }

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Columns returns the columns in order.
func (t *Table) Columns() []*Column { return append([]*Column(nil), t.cols...) }

// Row returns a view of row i.
func (t *Table) Row(i int) Row { return Row{t: t, i: i} }

// withColumn returns a copy of t with the named column replaced.
func (t *Table) withColumn(c *Column) *Table {
	cols := make([]*Column, len(t.cols))
	copy(cols, t.cols)
	cols[t.index[c.Name]] = c
	return &Table{cols: cols, index: t.index, rows: t.rows}
}

// Filter returns the rows matching pred, in their original order.
func (t *Table) Filter(pred func(Row) bool) *Table {
	var keep []int
	for i := 0; i < t.rows; i++ {
		if pred(Row{t: t, i: i}) {
			keep = append(keep, i)
		}
	}
	return t.take(keep)
}

// Head returns at most n leading rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n >= t.rows {
		return t
	}
	keep := make([]int, n)
	for i := range keep {
		keep[i] = i
	}
	return t.take(keep)
}

func (t *Table) take(idx []int) *Table {
	cols := make([]*Column, len(t.cols))
	for j, c := range t.cols {
		nc := &Column{Name: c.Name, Kind: c.Kind, Levels: c.Levels}
		switch c.Kind {
		case KindInt:
			nc.ints = make([]int, len(idx))
			for k, i := range idx {
				nc.ints[k] = c.ints[i]
			}
		case KindNumber:
			nc.nums = make([]Number, len(idx))
			for k, i := range idx {
				nc.nums[k] = c.nums[i]
			}
		default:
			nc.texts = make([]string, len(idx))
			for k, i := range idx {
				nc.texts[k] = c.texts[i]
			}
		}
		cols[j] = nc
	}
	return &Table{cols: cols, index: t.index, rows: len(idx)}
}

// DistinctInts returns the sorted distinct values of an int column.
func (t *Table) DistinctInts(name string) ([]int, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	if c.Kind != KindInt {
		return nil, fmt.Errorf("column %s is %s, not int", name, c.Kind)
	}
	seen := map[int]struct{}{}
	var out []int
	for _, v := range c.ints {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out, nil
}

// DistinctTexts returns the sorted distinct values of a text or label column.
func (t *Table) DistinctTexts(name string) ([]string, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	seen := map[string]struct{}{}
	var out []string
	for i := 0; i < c.Len(); i++ {
		v := c.String(i)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// Records renders the table as a header row followed by text rows.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, t.rows+1)
	out = append(out, t.Names())
	for i := 0; i < t.rows; i++ {
		rec := make([]string, len(t.cols))
		for j, c := range t.cols {
			rec[j] = c.String(i)
		}
		out = append(out, rec)
	}
	return out
}

// Row is a read-only view of one table row.
type Row struct {
	t *Table
	i int
}

// Index returns the row position in its table.
func (r Row) Index() int { return r.i }

// Text returns the cell as text; unknown columns read as "".
func (r Row) Text(name string) string {
	c, ok := r.t.Column(name)
	if !ok {
		return ""
	}
	return c.String(r.i)
}

// Int returns an int cell; ok is false for unknown or non-int columns.
func (r Row) Int(name string) (int, bool) {
	c, ok := r.t.Column(name)
	if !ok || c.Kind != KindInt {
		return 0, false
	}
	return c.ints[r.i], true
}

// Number returns a numeric cell; non-numeric columns read as Missing.
func (r Row) Number(name string) Number {
	c, ok := r.t.Column(name)
	if !ok {
		return Missing
	}
	switch c.Kind {
	case KindNumber:
		return c.nums[r.i]
	case KindInt:
		return Num(float64(c.ints[r.i]))
	default:
		return Missing
	}
}
