package chart

import (
	"encoding/json"
	"fmt"
)

// SchemaURL is the Vega-Lite schema every spec declares.
const SchemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

// Kind is the chart family.
type Kind string

const (
	Scatter    Kind = "scatter"
	Line       Kind = "line"
	LinePoints Kind = "line-points"
	Point      Kind = "point"
	Bar        Kind = "bar"
)

// FieldType is the Vega-Lite measurement type of a channel.
type FieldType string

const (
	Quantitative FieldType = "quantitative"
	Ordinal      FieldType = "ordinal"
	Nominal      FieldType = "nominal"
)

// Spec is a declarative, Vega-Lite compatible chart description.
type Spec struct {
	Schema   string   `json:"$schema"`
	Title    string   `json:"title,omitempty"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Data     Data     `json:"data"`
	Mark     Mark     `json:"mark"`
	Encoding Encoding `json:"encoding"`
}

// Data holds inline rows.
type Data struct {
	Values []map[string]any `json:"values"`
}

// Mark is the graphical mark.
type Mark struct {
	Type  string `json:"type"`
	Point bool   `json:"point,omitempty"`
}

// Encoding maps data fields to visual channels.
type Encoding struct {
	X       *Channel  `json:"x,omitempty"`
	Y       *Channel  `json:"y,omitempty"`
	Color   *Channel  `json:"color,omitempty"`
	XOffset *Channel  `json:"xOffset,omitempty"`
	Tooltip []Channel `json:"tooltip,omitempty"`
}

// Channel binds a field (or a constant value) to a channel.
type Channel struct {
	Field string    `json:"field,omitempty"`
	Type  FieldType `json:"type,omitempty"`
	Title string    `json:"title,omitempty"`
	Sort  any       `json:"sort,omitempty"`
	Value any       `json:"value,omitempty"`
}

// Bindings are the field names a spec binds to its main channels.
type Bindings struct {
	X       string
	Y       string
	Color   string
	XOffset string
}

// Bindings extracts the bound field names.
func (s *Spec) Bindings() Bindings {
	var b Bindings
	if s.Encoding.X != nil {
		b.X = s.Encoding.X.Field
	}
	if s.Encoding.Y != nil {
		b.Y = s.Encoding.Y.Field
	}
	if s.Encoding.Color != nil {
		b.Color = s.Encoding.Color.Field
	}
	if s.Encoding.XOffset != nil {
		b.XOffset = s.Encoding.XOffset.Field
	}
	return b
}

// Kind recovers the chart family from the mark.
func (s *Spec) Kind() Kind {
	switch s.Mark.Type {
	case "circle":
		return Scatter
	case "line":
		if s.Mark.Point {
			return LinePoints
		}
		return Line
	case "point":
		return Point
	case "bar":
		return Bar
	default:
		return Kind(s.Mark.Type)
	}
}

// JSON renders the spec as indented Vega-Lite JSON.
func (s *Spec) JSON() ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal spec: %w", err)
	}
	return b, nil
}
