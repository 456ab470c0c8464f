package chart

import (
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/aqdash/internal/aggregate"
	"github.com/KaramelBytes/aqdash/internal/dataset"
)

// Field describes one bound data field.
type Field struct {
	Name  string
	Type  FieldType
	Title string
	// Sort is an explicit domain order, e.g. Jan..Dec.
	Sort []string
	// SortOrder is "ascending" or "descending" when Sort is empty.
	SortOrder string
}

// Color is either a fixed color Value or a categorical Field.
type Color struct {
	Value string
	Field *Field
}

// Sizes are the default rendering dimensions.
type Sizes struct {
	Width         int
	Height        int
	ScatterHeight int
}

// DefaultSizes returns 600×300 charts and 600×400 scatter plots.
func DefaultSizes() Sizes {
	return Sizes{Width: 600, Height: 300, ScatterHeight: 400}
}

// Options configures one chart.
type Options struct {
	Kind    Kind
	Title   string
	X       Field
	Y       Field
	Color   *Color
	XOffset *Field
	Tooltip []Field
	Width   int
	Height  int
	Sizes   Sizes
}

var markTypes = map[Kind]Mark{
	Scatter:    {Type: "circle"},
	Line:       {Type: "line"},
	LinePoints: {Type: "line", Point: true},
	Point:      {Type: "point"},
	Bar:        {Type: "bar"},
}

// Build binds rows to a chart spec. Rows are copied and never modified.
func Build(rows []map[string]any, opt Options) (*Spec, error) {
	mark, ok := markTypes[opt.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown chart kind %q", opt.Kind)
	}
	if opt.X.Name == "" || opt.Y.Name == "" {
		return nil, errors.New("chart needs both x and y fields")
	}
	for i, r := range rows {
		for _, f := range []string{opt.X.Name, opt.Y.Name} {
			if _, ok := r[f]; !ok {
				return nil, fmt.Errorf("row %d has no field %q", i, f)
			}
		}
	}

	sizes := opt.Sizes
	if sizes == (Sizes{}) {
		sizes = DefaultSizes()
	}
	w, h := opt.Width, opt.Height
	if w <= 0 {
		w = sizes.Width
	}
	if h <= 0 {
		h = sizes.Height
		if opt.Kind == Scatter {
			h = sizes.ScatterHeight
		}
	}

	enc := Encoding{X: channel(opt.X), Y: channel(opt.Y)}
	if opt.Color != nil {
		switch {
		case opt.Color.Field != nil:
			enc.Color = channel(*opt.Color.Field)
		case opt.Color.Value != "":
			enc.Color = &Channel{Value: opt.Color.Value}
		}
	}
	if opt.XOffset != nil {
		enc.XOffset = channel(*opt.XOffset)
	}
	for _, f := range opt.Tooltip {
		enc.Tooltip = append(enc.Tooltip, *channel(f))
	}

	return &Spec{
		Schema:   SchemaURL,
		Title:    opt.Title,
		Width:    w,
		Height:   h,
		Data:     Data{Values: copyRows(rows)},
		Mark:     mark,
		Encoding: enc,
	}, nil
}

// FromResult builds a chart from an aggregation result, binding the group
// column to X. fields renames statistics as in Result.Records.
func FromResult(res *aggregate.Result, fields map[aggregate.Stat]string, opt Options) (*Spec, error) {
	if opt.X.Name == "" {
		opt.X.Name = res.By
	}
	if opt.X.Name != res.By {
		return nil, fmt.Errorf("x field %q must be the group column %q", opt.X.Name, res.By)
	}
	return Build(res.Records(fields), opt)
}

func channel(f Field) *Channel {
	c := &Channel{Field: f.Name, Type: f.Type, Title: f.Title}
	switch {
	case len(f.Sort) > 0:
		c.Sort = append([]string(nil), f.Sort...)
	case f.SortOrder != "":
		c.Sort = f.SortOrder
	}
	return c
}

func copyRows(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		cp := make(map[string]any, len(r))
		for k, v := range r {
			cp[k] = cleanValue(v)
		}
		out[i] = cp
	}
	return out
}

// cleanValue maps missing numbers to nil so they encode as JSON null.
func cleanValue(v any) any {
	switch x := v.(type) {
	case dataset.Number:
		if !x.Valid {
			return nil
		}
		return x.Value
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	}
	return v
}
