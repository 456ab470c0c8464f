package aggregate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/aqdash/internal/dataset"
)

// Pearson returns the Pearson correlation of columns x and y over the rows
// where both are valid. The result is Missing for fewer than two pairs or a
// zero variance.
func Pearson(t *dataset.Table, x, y string) (dataset.Number, error) {
	for _, name := range []string{x, y} {
		if _, err := numericColumn(t, name); err != nil {
			return dataset.Missing, fmt.Errorf("correlation: %w", err)
		}
	}
	xs := make([]float64, 0, t.Len())
	ys := make([]float64, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		a, b := row.Number(x), row.Number(y)
		if !a.Valid || !b.Valid {
			continue
		}
		xs = append(xs, a.Value)
		ys = append(ys, b.Value)
	}
	if len(xs) < 2 {
		return dataset.Missing, nil
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return dataset.Missing, nil
	}
	return dataset.Num(math.Max(-1, math.Min(1, r))), nil
}

// Extreme is the max and min of one column.
type Extreme struct {
	Column string
	Max    dataset.Number
	Min    dataset.Number
}

// Extremes returns the max and min of each column in the given order,
// skipping missing values.
func Extremes(t *dataset.Table, columns []string) ([]Extreme, error) {
	out := make([]Extreme, 0, len(columns))
	all := make([]int, t.Len())
	for i := range all {
		all[i] = i
	}
	for _, name := range columns {
		col, err := numericColumn(t, name)
		if err != nil {
			return nil, fmt.Errorf("extremes: %w", err)
		}
		vals := validValues(col, t, all)
		out = append(out, Extreme{Column: name, Max: Compute(Max, vals), Min: Compute(Min, vals)})
	}
	return out, nil
}

// numericColumn returns the named column if it holds numbers.
func numericColumn(t *dataset.Table, name string) (*dataset.Column, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", dataset.ErrUnknownColumn, name)
	}
	if col.Kind != dataset.KindNumber && col.Kind != dataset.KindInt {
		return nil, fmt.Errorf("column %s is %s; coerce it first", name, col.Kind)
	}
	return col, nil
}
