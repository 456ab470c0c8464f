package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// missingTokens are read as missing without attempting a parse.
var missingTokens = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "nan": {}, "null": {}, "none": {}, "-": {},
}

// CoerceStats reports, per coerced column, how many cells ended up missing.
type CoerceStats map[string]int

// Coerce returns a table where each named column is numeric. Unparseable
// cells become Missing. Numeric columns are left as they are and columns not
// named are never touched.
func Coerce(t *Table, columns ...string) (*Table, CoerceStats, error) {
	stats := CoerceStats{}
	out := t
	for _, name := range columns {
		c, ok := t.Column(name)
		if !ok {
			return nil, nil, fmt.Errorf("coerce: %w: %s", ErrUnknownColumn, name)
		}
		nc := coerceColumn(c)
		miss := 0
		for _, n := range nc.nums {
			if !n.Valid {
				miss++
			}
		}
		stats[name] = miss
		if nc != c {
			out = out.withColumn(nc)
		}
	}
	return out, stats, nil
}

func coerceColumn(c *Column) *Column {
	switch c.Kind {
	case KindNumber:
		return c
	case KindInt:
		vals := make([]Number, len(c.ints))
		for i, v := range c.ints {
			vals[i] = Num(float64(v))
		}
		return NewNumberColumn(c.Name, vals)
	default:
		vals := make([]Number, len(c.texts))
		for i, s := range c.texts {
			if x, ok := ParseNumber(s); ok {
				vals[i] = Num(x)
			}
		}
		return NewNumberColumn(c.Name, vals)
	}
}

// ParseNumber parses a measurement cell. A comma is accepted as the decimal
// separator when no dot is present; "1.234,5" style values are read with '.'
// as the thousands separator.
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if _, ok := missingTokens[strings.ToLower(raw)]; ok {
		return 0, false
	}
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0 && cpos > dpos:
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	case cpos >= 0 && dpos >= 0:
		raw = strings.ReplaceAll(raw, ",", "")
	case cpos >= 0:
		raw = strings.Replace(raw, ",", ".", 1)
	}
	raw = strings.ReplaceAll(raw, " ", "")
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
