package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/aqdash/internal/dataset"
)

// Stat is a summary statistic over the valid values of a group.
type Stat int

const (
	Median Stat = iota
	Count
	Max
	Min
)

func (s Stat) String() string {
	switch s {
	case Median:
		return "median"
	case Count:
		return "count"
	case Max:
		return "max"
	case Min:
		return "min"
	default:
		return fmt.Sprintf("stat(%d)", int(s))
	}
}

// ParseStat maps a name to a Stat.
func ParseStat(s string) (Stat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "median":
		return Median, nil
	case "count":
		return Count, nil
	case "max":
		return Max, nil
	case "min":
		return Min, nil
	default:
		return Median, fmt.Errorf("unknown statistic %q (use median, count, max or min)", s)
	}
}

// Compute evaluates s over vals. Median, Max and Min of an empty slice are
// Missing; Count of an empty slice is 0.
func Compute(s Stat, vals []float64) dataset.Number {
	if s == Count {
		return dataset.Num(float64(len(vals)))
	}
	if len(vals) == 0 {
		return dataset.Missing
	}
	switch s {
	case Median:
		cp := make([]float64, len(vals))
		copy(cp, vals)
		sort.Float64s(cp)
		return dataset.Num(quantile(cp, 0.5))
	case Max:
		m := vals[0]
		for _, v := range vals[1:] {
			m = math.Max(m, v)
		}
		return dataset.Num(m)
	case Min:
		m := vals[0]
		for _, v := range vals[1:] {
			m = math.Min(m, v)
		}
		return dataset.Num(m)
	}
	return dataset.Missing
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// validValues collects the valid values of a numeric column over rows.
func validValues(col *dataset.Column, t *dataset.Table, rows []int) []float64 {
	out := make([]float64, 0, len(rows))
	for _, i := range rows {
		if n := t.Row(i).Number(col.Name); n.Valid {
			out = append(out, n.Value)
		}
	}
	return out
}
