package aggregate

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/KaramelBytes/aqdash/internal/dataset"
)

// Order controls how groups are sorted by key.
type Order int

const (
	// OrderAsc sorts numeric keys ascending, labels by level rank and text
	// lexically.
	OrderAsc Order = iota
	// OrderDesc is the reverse of OrderAsc.
	OrderDesc
	// OrderCalendar sorts month labels Jan..Dec. It is OrderAsc over the
	// label's calendar rank.
	OrderCalendar
)

// Spec describes one group-by aggregation.
type Spec struct {
	By    string
	Value string
	Stats []Stat
	Order Order
}

// Group is one distinct key and its statistics.
type Group struct {
	Key    string
	Rank   int // numeric key, or level rank for labels
	Size   int // rows in the group, valid or not
	Values map[Stat]dataset.Number
}

// Result is an ordered group-by result.
type Result struct {
	By     string
	ByKind dataset.Kind
	Value  string
	Stats  []Stat
	Groups []Group
}

// GroupBy partitions t by spec.By and computes spec.Stats over the valid
// values of spec.Value in each group. Every key present in t gets a group,
// including keys whose values are all missing.
func GroupBy(t *dataset.Table, spec Spec) (*Result, error) {
	by, ok := t.Column(spec.By)
	if !ok {
		return nil, fmt.Errorf("group by: %w: %s", dataset.ErrUnknownColumn, spec.By)
	}
	val, ok := t.Column(spec.Value)
	if !ok {
		return nil, fmt.Errorf("group value: %w: %s", dataset.ErrUnknownColumn, spec.Value)
	}
	if val.Kind != dataset.KindNumber && val.Kind != dataset.KindInt {
		return nil, fmt.Errorf("group value %s is %s; coerce it first", spec.Value, val.Kind)
	}
	stats := spec.Stats
	if len(stats) == 0 {
		stats = []Stat{Median}
	}

	members := map[string][]int{}
	var keys []string
	for i := 0; i < t.Len(); i++ {
		k := by.String(i)
		if _, seen := members[k]; !seen {
			keys = append(keys, k)
		}
		members[k] = append(members[k], i)
	}

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		g := Group{Key: k, Size: len(members[k]), Values: make(map[Stat]dataset.Number, len(stats))}
		switch by.Kind {
		case dataset.KindInt:
			g.Rank, _ = strconv.Atoi(k)
		case dataset.KindLabel:
			g.Rank = by.Rank(k)
		}
		vals := validValues(val, t, members[k])
		for _, s := range stats {
			g.Values[s] = Compute(s, vals)
		}
		groups = append(groups, g)
	}

	less := func(a, b Group) bool {
		if by.Kind == dataset.KindText {
			return a.Key < b.Key
		}
		return a.Rank < b.Rank
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if spec.Order == OrderDesc {
			return less(groups[j], groups[i])
		}
		return less(groups[i], groups[j])
	})
	return &Result{By: spec.By, ByKind: by.Kind, Value: spec.Value, Stats: stats, Groups: groups}, nil
}

// Get returns the statistic for a key.
func (r *Result) Get(key string, s Stat) (dataset.Number, bool) {
	for _, g := range r.Groups {
		if g.Key == key {
			n, ok := g.Values[s]
			return n, ok
		}
	}
	return dataset.Missing, false
}

// Keys returns the group keys in result order.
func (r *Result) Keys() []string {
	out := make([]string, len(r.Groups))
	for i, g := range r.Groups {
		out[i] = g.Key
	}
	return out
}

// Field returns the record field name used for s, honouring overrides.
func (r *Result) Field(s Stat, fields map[Stat]string) string {
	if f, ok := fields[s]; ok && f != "" {
		return f
	}
	return s.String()
}

// Records renders the result as chart-ready rows. The key is stored under the
// group column name (as an int for int columns). Each statistic is stored
// under its field name; missing values are nil.
func (r *Result) Records(fields map[Stat]string) []map[string]any {
	out := make([]map[string]any, 0, len(r.Groups))
	for _, g := range r.Groups {
		rec := make(map[string]any, len(r.Stats)+1)
		if r.ByKind == dataset.KindInt {
			rec[r.By] = g.Rank
		} else {
			rec[r.By] = g.Key
		}
		for _, s := range r.Stats {
			n := g.Values[s]
			switch {
			case !n.Valid:
				rec[r.Field(s, fields)] = nil
			case s == Count:
				rec[r.Field(s, fields)] = int(n.Value)
			default:
				rec[r.Field(s, fields)] = n.Value
			}
		}
		out = append(out, rec)
	}
	return out
}
