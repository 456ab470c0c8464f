package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var namedColors = map[string]color.RGBA{
	"red":    {R: 214, G: 39, B: 40, A: 255},
	"olive":  {R: 128, G: 128, B: 0, A: 255},
	"blue":   {R: 31, G: 119, B: 180, A: 255},
	"green":  {R: 44, G: 160, B: 44, A: 255},
	"orange": {R: 255, G: 127, B: 14, A: 255},
	"purple": {R: 148, G: 103, B: 189, A: 255},
	"black":  {A: 255},
}

// tableau10, the Vega default categorical scheme.
var palette = []color.RGBA{
	{R: 76, G: 120, B: 168, A: 255},
	{R: 245, G: 133, B: 24, A: 255},
	{R: 228, G: 87, B: 86, A: 255},
	{R: 114, G: 183, B: 178, A: 255},
	{R: 84, G: 162, B: 75, A: 255},
	{R: 238, G: 202, B: 59, A: 255},
	{R: 178, G: 121, B: 162, A: 255},
	{R: 255, G: 157, B: 166, A: 255},
	{R: 157, G: 117, B: 93, A: 255},
	{R: 186, G: 176, B: 172, A: 255},
}

// series is one colored set of points.
type series struct {
	name  string
	color color.Color
	xs    []float64
	ys    []float64
}

// RenderPNG draws s as a static PNG image.
func RenderPNG(s *Spec, w io.Writer) error {
	b := s.Bindings()
	if b.X == "" || b.Y == "" {
		return fmt.Errorf("png: spec %q has no x/y binding", s.Title)
	}

	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = axisTitle(s.Encoding.X)
	p.Y.Label.Text = axisTitle(s.Encoding.Y)
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	var cats []string
	nominal := s.Encoding.X.Type != Quantitative
	if nominal {
		cats = categories(s.Data.Values, b.X, s.Encoding.X.Sort)
		if len(cats) > 0 {
			p.NominalX(cats...)
		}
	}
	catIndex := make(map[string]int, len(cats))
	for i, c := range cats {
		catIndex[c] = i
	}

	groups := splitSeries(s, b, nominal, catIndex)
	var err error
	if s.Kind() == Bar {
		err = addBars(p, groups, len(cats))
	} else {
		err = addXY(p, s.Kind(), groups)
	}
	if err != nil {
		return fmt.Errorf("png %q: %w", s.Title, err)
	}

	wt, err := p.WriterTo(vg.Points(float64(s.Width)), vg.Points(float64(s.Height)), "png")
	if err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func splitSeries(s *Spec, b Bindings, nominal bool, catIndex map[string]int) []*series {
	fixed := color.Color(palette[0])
	if c := s.Encoding.Color; c != nil && c.Field == "" {
		if name, ok := c.Value.(string); ok {
			if rgba, ok := namedColors[name]; ok {
				fixed = rgba
			}
		}
	}

	var out []*series
	byName := map[string]*series{}
	for _, row := range s.Data.Values {
		y, ok := toFloat(row[b.Y])
		if !ok {
			continue
		}
		var x float64
		if nominal {
			i, ok := catIndex[fmt.Sprint(row[b.X])]
			if !ok {
				continue
			}
			x = float64(i)
		} else if x, ok = toFloat(row[b.X]); !ok {
			continue
		}

		name := ""
		if b.Color != "" {
			name = fmt.Sprint(row[b.Color])
		}
		ser, ok := byName[name]
		if !ok {
			ser = &series{name: name, color: fixed}
			if b.Color != "" {
				ser.color = palette[len(out)%len(palette)]
			}
			byName[name] = ser
			out = append(out, ser)
		}
		ser.xs = append(ser.xs, x)
		ser.ys = append(ser.ys, y)
	}
	return out
}

func addXY(p *plot.Plot, kind Kind, groups []*series) error {
	for _, g := range groups {
		xys := make(plotter.XYs, len(g.xs))
		for i := range g.xs {
			xys[i] = plotter.XY{X: g.xs[i], Y: g.ys[i]}
		}
		if kind == Line || kind == LinePoints {
			sort.SliceStable(xys, func(i, j int) bool { return xys[i].X < xys[j].X })
		}

		switch kind {
		case Scatter, Point:
			sc, err := plotter.NewScatter(xys)
			if err != nil {
				return err
			}
			sc.GlyphStyle.Color = g.color
			sc.GlyphStyle.Radius = vg.Points(2.5)
			p.Add(sc)
			if g.name != "" {
				p.Legend.Add(g.name, sc)
			}
		case Line:
			l, err := plotter.NewLine(xys)
			if err != nil {
				return err
			}
			l.LineStyle.Color = g.color
			l.LineStyle.Width = vg.Points(1.5)
			p.Add(l)
			if g.name != "" {
				p.Legend.Add(g.name, l)
			}
		case LinePoints:
			l, pts, err := plotter.NewLinePoints(xys)
			if err != nil {
				return err
			}
			l.LineStyle.Color = g.color
			l.LineStyle.Width = vg.Points(1.5)
			pts.GlyphStyle.Color = g.color
			p.Add(l, pts)
			if g.name != "" {
				p.Legend.Add(g.name, l, pts)
			}
		default:
			return fmt.Errorf("unsupported kind %q", kind)
		}
	}
	return nil
}

func addBars(p *plot.Plot, groups []*series, ncat int) error {
	if ncat == 0 {
		return nil
	}
	width := vg.Points(12)
	for gi, g := range groups {
		vals := make(plotter.Values, ncat)
		for i := range g.xs {
			vals[int(g.xs[i])] = g.ys[i]
		}
		bars, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return err
		}
		bars.Color = g.color
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = width * vg.Length(float64(gi)-float64(len(groups)-1)/2)
		p.Add(bars)
		if g.name != "" {
			p.Legend.Add(g.name, bars)
		}
	}
	return nil
}

// categories returns the x domain: the explicit sort list when given,
// otherwise the distinct values sorted numerically (or lexically).
func categories(rows []map[string]any, field string, sortSpec any) []string {
	if list, ok := sortSpec.([]string); ok && len(list) > 0 {
		return list
	}
	seen := map[string]bool{}
	var out []string
	numeric := true
	for _, r := range rows {
		k := fmt.Sprint(r[field])
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
		if _, err := strconv.ParseFloat(k, 64); err != nil {
			numeric = false
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if numeric {
			a, _ := strconv.ParseFloat(out[i], 64)
			b, _ := strconv.ParseFloat(out[j], 64)
			return a < b
		}
		return out[i] < out[j]
	})
	if order, ok := sortSpec.(string); ok && order == "descending" {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func axisTitle(c *Channel) string {
	if c == nil {
		return ""
	}
	if c.Title != "" {
		return c.Title
	}
	return c.Field
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
