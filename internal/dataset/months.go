package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// monthLabels is the single calendar-order table; a label's index is its rank.
var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthPolicy decides what happens to month values outside 1..12.
type MonthPolicy int

const (
	// MonthReject fails with *InvalidMonthError.
	MonthReject MonthPolicy = iota
	// MonthPassThrough keeps the value as its decimal text, ranked after Dec.
	MonthPassThrough
)

// ParseMonthPolicy maps a config string to a policy.
func ParseMonthPolicy(s string) (MonthPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return MonthReject, nil
	case "passthrough", "pass-through", "pass_through":
		return MonthPassThrough, nil
	default:
		return MonthReject, fmt.Errorf("invalid month policy %q (use reject or passthrough)", s)
	}
}

// MonthLabels returns Jan..Dec in calendar order.
func MonthLabels() []string { return append([]string(nil), monthLabels[:]...) }

// MonthLabel maps 1..12 to its label.
func MonthLabel(m int) (string, bool) {
	if m < 1 || m > 12 {
		return "", false
	}
	return monthLabels[m-1], true
}

// MonthRank returns the calendar rank 0..11 of a label, or -1.
func MonthRank(label string) int {
	for i, l := range monthLabels {
		if l == label {
			return i
		}
	}
	return -1
}

// NormalizeMonths replaces the integer month column with calendar-ordered labels.
func NormalizeMonths(t *Table, policy MonthPolicy) (*Table, error) {
	c, ok := t.Column(ColMonth)
	if !ok {
		return nil, fmt.Errorf("normalize months: %w: %s", ErrUnknownColumn, ColMonth)
	}
	if c.Kind == KindLabel {
		return t, nil
	}
	if c.Kind != KindInt {
		return nil, fmt.Errorf("normalize months: column %s is %s, not int", ColMonth, c.Kind)
	}
	labels := make([]string, len(c.ints))
	var extra []int
	seen := map[int]struct{}{}
	for i, m := range c.ints {
		if l, ok := MonthLabel(m); ok {
			labels[i] = l
			continue
		}
		if policy == MonthReject {
			return nil, &InvalidMonthError{Row: i + 1, Value: m}
		}
		labels[i] = strconv.Itoa(m)
		if _, ok := seen[m]; !ok {
			seen[m] = struct{}{}
			extra = append(extra, m)
		}
	}
	levels := MonthLabels()
	sort.Ints(extra)
	for _, m := range extra {
		levels = append(levels, strconv.Itoa(m))
	}
	return t.withColumn(NewLabelColumn(ColMonth, labels, levels)), nil
}
