package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/aqdash/internal/aggregate"
	"github.com/KaramelBytes/aqdash/internal/chart"
	"github.com/KaramelBytes/aqdash/internal/dataset"
)

// Columns coerced to numbers before any chart is built.
var numericColumns = append(append([]string(nil), dataset.Pollutants...), dataset.ColTemp)

// TrendPollutants are the pollutants with a trend and a monthly chart, in
// render order.
var TrendPollutants = []string{"NO2", "SO2", "CO", "O3"}

// MonthlyPollutants is the render order of the monthly charts.
var MonthlyPollutants = []string{"SO2", "NO2", "CO", "O3"}

// Data is a prepared, read-only dataset shared by render passes.
type Data struct {
	Path     string
	Checksum string
	Coerced  dataset.CoerceStats
	Choices  Choices

	table    *dataset.Table // numeric months
	labelled *dataset.Table // month labels
}

// Table returns the coerced table.
func (d *Data) Table() *dataset.Table { return d.table }

// Labelled returns the coerced table with month labels.
func (d *Data) Labelled() *dataset.Table { return d.labelled }

// Choices are the selectable filter values.
type Choices struct {
	Years    []int    `json:"years"`
	Stations []string `json:"stations"`
}

// Prepare coerces the pollutant and temperature columns and derives the
// month-labelled view used by the monthly charts.
func Prepare(f *dataset.File, policy dataset.MonthPolicy) (*Data, error) {
	for _, name := range numericColumns {
		if _, ok := f.Table.Column(name); !ok {
			return nil, &dataset.DataLoadError{Path: f.Path, Column: name, Err: errors.New("required column missing")}
		}
	}
	t, stats, err := dataset.Coerce(f.Table, numericColumns...)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", f.Path, err)
	}
	labelled, err := dataset.NormalizeMonths(t, policy)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", f.Path, err)
	}
	d := &Data{Path: f.Path, Checksum: f.Checksum, Coerced: stats, table: t, labelled: labelled}
	if d.Choices.Years, err = t.DistinctInts(dataset.ColYear); err != nil {
		return nil, err
	}
	if d.Choices.Stations, err = t.DistinctTexts(dataset.ColStation); err != nil {
		return nil, err
	}
	return d, nil
}

// Options returns the sorted years and stations present in the dataset.
func Options(d *Data) Choices {
	return Choices{
		Years:    append([]int(nil), d.Choices.Years...),
		Stations: append([]string(nil), d.Choices.Stations...),
	}
}

// Filters is the user's selection.
type Filters struct {
	Year    int    `json:"year"`
	Station string `json:"station"`
}

// DefaultFilters picks the first year and station, like an untouched
// selectbox.
func DefaultFilters(d *Data) (Filters, error) {
	if len(d.Choices.Years) == 0 || len(d.Choices.Stations) == 0 {
		return Filters{}, fmt.Errorf("dataset %s has no rows", d.Path)
	}
	return Filters{Year: d.Choices.Years[0], Station: d.Choices.Stations[0]}, nil
}

// SelectionError reports a filter value not present in the dataset.
type SelectionError struct {
	Field string
	Value string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Field, e.Value)
}

// Validate checks f against the dataset choices.
func (d *Data) Validate(f Filters) error {
	found := false
	for _, y := range d.Choices.Years {
		if y == f.Year {
			found = true
			break
		}
	}
	if !found {
		return &SelectionError{Field: dataset.ColYear, Value: strconv.Itoa(f.Year)}
	}
	for _, s := range d.Choices.Stations {
		if s == f.Station {
			return nil
		}
	}
	return &SelectionError{Field: dataset.ColStation, Value: f.Station}
}

// Filter returns the rows whose year and station match f.
func Filter(d *Data, f Filters) (*dataset.Table, error) {
	if err := d.Validate(f); err != nil {
		return nil, err
	}
	return d.table.Filter(func(r dataset.Row) bool {
		y, ok := r.Int(dataset.ColYear)
		return ok && y == f.Year && r.Text(dataset.ColStation) == f.Station
	}), nil
}

// Settings tune a render pass.
type Settings struct {
	Logger *slog.Logger
	Sizes  chart.Sizes
	// MaxScatterPoints caps the correlation scatter; 0 keeps every point.
	MaxScatterPoints int
	// TrendColors maps pollutant to trend line color.
	TrendColors map[string]string
}

var defaultTrendColors = map[string]string{"NO2": "red", "SO2": "red", "CO": "olive", "O3": "blue"}

func (s Settings) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s Settings) trendColor(p string) string {
	if c := s.TrendColors[p]; c != "" {
		return c
	}
	return defaultTrendColors[p]
}

// Section names group charts on the page.
const (
	SectionPollution   = "Pollution levels"
	SectionCorrelation = "Temperature and ozone"
	SectionTrends      = "Pollutant trend analysis"
	SectionMonthly     = "Monthly pollutant levels"
	SectionExtremes    = "Highest and lowest pollutant levels"
)

// NamedChart is one chart in a bundle.
type NamedChart struct {
	Name    string
	Section string
	Spec    *chart.Spec
}

// Bundle is the output of one render pass.
type Bundle struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	Filters     Filters
	Dataset     string
	Checksum    string
	Charts      []NamedChart
	Correlation dataset.Number
	Extremes    []aggregate.Extreme
	Filtered    *dataset.Table
}

// Chart returns the named chart.
func (b *Bundle) Chart(name string) (*chart.Spec, bool) {
	for _, c := range b.Charts {
		if c.Name == name {
			return c.Spec, true
		}
	}
	return nil, false
}

// Names returns the chart names in render order.
func (b *Bundle) Names() []string {
	out := make([]string, len(b.Charts))
	for i, c := range b.Charts {
		out[i] = c.Name
	}
	return out
}

// Render runs one full render pass for f. It stops early with ctx.Err() when
// the pass is superseded.
func Render(ctx context.Context, d *Data, f Filters, s Settings) (*Bundle, error) {
	filtered, err := Filter(d, f)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	b := &Bundle{
		ID:        uuid.New(),
		CreatedAt: start.UTC(),
		Filters:   f,
		Dataset:   d.Path,
		Checksum:  d.Checksum,
	}
	log := s.logger().With(slog.String("render_id", b.ID.String()))

	b.Filtered = filtered
	log.Debug("filtered rows", slog.Int("year", f.Year), slog.String("station", f.Station), slog.Int("rows", b.Filtered.Len()))

	steps := []func() error{
		func() error {
			spec, err := timeseries(b.Filtered, f, s)
			return b.add(SectionPollution, "timeseries", spec, err)
		},
		func() error {
			spec, r, err := correlation(d.table, s)
			b.Correlation = r
			return b.add(SectionCorrelation, "correlation", spec, err)
		},
	}
	for _, p := range TrendPollutants {
		p := p
		steps = append(steps, func() error {
			spec, err := trend(d.table, p, s)
			return b.add(SectionTrends, "trend-"+p, spec, err)
		})
	}
	for _, p := range MonthlyPollutants {
		p := p
		steps = append(steps, func() error {
			spec, err := monthly(d.labelled, p, s)
			return b.add(SectionMonthly, "monthly-"+p, spec, err)
		})
	}
	steps = append(steps, func() error {
		spec, ex, err := extremes(b.Filtered, s)
		b.Extremes = ex
		return b.add(SectionExtremes, "extremes", spec, err)
	})

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			log.Debug("render superseded", slog.Int("charts", len(b.Charts)))
			return nil, err
		}
		if err := step(); err != nil {
			return nil, err
		}
	}
	log.Info("render complete",
		slog.Int("charts", len(b.Charts)),
		slog.Int("rows", b.Filtered.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return b, nil
}

func (b *Bundle) add(section, name string, spec *chart.Spec, err error) error {
	if err != nil {
		return fmt.Errorf("chart %s: %w", name, err)
	}
	b.Charts = append(b.Charts, NamedChart{Name: name, Section: section, Spec: spec})
	return nil
}

func timeseries(t *dataset.Table, f Filters, s Settings) (*chart.Spec, error) {
	rows := make([]map[string]any, 0, t.Len()*len(dataset.Pollutants))
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		m, _ := r.Int(dataset.ColMonth)
		for _, p := range dataset.Pollutants {
			rows = append(rows, map[string]any{"month": m, "pollutant": p, "value": r.Number(p)})
		}
	}
	return chart.Build(rows, chart.Options{
		Kind:  chart.Line,
		Title: fmt.Sprintf("Pollution levels for %d at %s", f.Year, f.Station),
		X:     chart.Field{Name: "month", Type: chart.Ordinal},
		Y:     chart.Field{Name: "value", Type: chart.Quantitative},
		Color: &chart.Color{Field: &chart.Field{Name: "pollutant", Type: chart.Nominal, Sort: dataset.Pollutants}},
		Tooltip: []chart.Field{
			{Name: "month", Type: chart.Ordinal},
			{Name: "pollutant", Type: chart.Nominal},
			{Name: "value", Type: chart.Quantitative},
		},
		Sizes: s.Sizes,
	})
}

func correlation(t *dataset.Table, s Settings) (*chart.Spec, dataset.Number, error) {
	r, err := aggregate.Pearson(t, dataset.ColTemp, "O3")
	if err != nil {
		return nil, dataset.Missing, err
	}
	var rows []map[string]any
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		temp, o3 := row.Number(dataset.ColTemp), row.Number("O3")
		if !temp.Valid || !o3.Valid {
			continue
		}
		rows = append(rows, map[string]any{dataset.ColTemp: temp.Value, "O3": o3.Value})
	}
	rows = sample(rows, s.MaxScatterPoints)

	spec, err := chart.Build(rows, chart.Options{
		Kind:  chart.Scatter,
		Title: "Correlation between temperature (TEMP) and ozone (O3): " + formatCoefficient(r),
		X:     chart.Field{Name: dataset.ColTemp, Type: chart.Quantitative},
		Y:     chart.Field{Name: "O3", Type: chart.Quantitative},
		Tooltip: []chart.Field{
			{Name: dataset.ColTemp, Type: chart.Quantitative},
			{Name: "O3", Type: chart.Quantitative},
		},
		Sizes: s.Sizes,
	})
	return spec, r, err
}

// sample keeps every k-th row so that at most limit rows remain.
func sample(rows []map[string]any, limit int) []map[string]any {
	if limit <= 0 || len(rows) <= limit {
		return rows
	}
	stride := (len(rows) + limit - 1) / limit
	out := make([]map[string]any, 0, limit)
	for i := 0; i < len(rows); i += stride {
		out = append(out, rows[i])
	}
	return out
}

func formatCoefficient(r dataset.Number) string {
	if !r.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(r.Value, 'f', 4, 64)
}

func trend(t *dataset.Table, p string, s Settings) (*chart.Spec, error) {
	res, err := aggregate.GroupBy(t, aggregate.Spec{
		By:    dataset.ColYear,
		Value: p,
		Stats: []aggregate.Stat{aggregate.Median},
		Order: aggregate.OrderDesc,
	})
	if err != nil {
		return nil, err
	}
	level := chart.Field{Name: p, Type: chart.Quantitative, Title: p + " Median Level"}
	return chart.FromResult(res, map[aggregate.Stat]string{aggregate.Median: p}, chart.Options{
		Kind:    chart.LinePoints,
		Title:   "Median " + p + " Levels Over the Years",
		X:       chart.Field{Name: dataset.ColYear, Type: chart.Ordinal},
		Y:       level,
		Color:   &chart.Color{Value: s.trendColor(p)},
		Tooltip: []chart.Field{{Name: dataset.ColYear, Type: chart.Ordinal}, level},
		Sizes:   s.Sizes,
	})
}

func monthly(t *dataset.Table, p string, s Settings) (*chart.Spec, error) {
	res, err := aggregate.GroupBy(t, aggregate.Spec{
		By:    dataset.ColMonth,
		Value: p,
		Stats: []aggregate.Stat{aggregate.Median, aggregate.Count},
		Order: aggregate.OrderCalendar,
	})
	if err != nil {
		return nil, err
	}
	order := dataset.MonthLabels()
	if col, ok := t.Column(dataset.ColMonth); ok && len(col.Levels) > 0 {
		order = append([]string(nil), col.Levels...)
	}
	return chart.FromResult(res, nil, chart.Options{
		Kind:  chart.Point,
		Title: "Monthly " + p + " Levels",
		X:     chart.Field{Name: dataset.ColMonth, Type: chart.Nominal, Sort: order},
		Y:     chart.Field{Name: "median", Type: chart.Quantitative},
		Color: &chart.Color{Field: &chart.Field{Name: dataset.ColMonth, Type: chart.Nominal, Sort: order}},
		Tooltip: []chart.Field{
			{Name: dataset.ColMonth, Type: chart.Nominal},
			{Name: "median", Type: chart.Quantitative, Title: p + " Median Level"},
			{Name: "count", Type: chart.Quantitative},
		},
		Sizes: s.Sizes,
	})
}

// Measure labels of the extremes chart.
const (
	MeasureMax = "Max Value"
	MeasureMin = "Min Value"
)

func extremes(t *dataset.Table, s Settings) (*chart.Spec, []aggregate.Extreme, error) {
	ex, err := aggregate.Extremes(t, dataset.Pollutants)
	if err != nil {
		return nil, nil, err
	}
	rows := make([]map[string]any, 0, 2*len(ex))
	for _, e := range ex {
		rows = append(rows,
			map[string]any{"pollutant": e.Column, "measure": MeasureMax, "value": e.Max},
			map[string]any{"pollutant": e.Column, "measure": MeasureMin, "value": e.Min},
		)
	}
	measure := chart.Field{Name: "measure", Type: chart.Nominal}
	spec, err := chart.Build(rows, chart.Options{
		Kind:    chart.Bar,
		Title:   "Highest and lowest pollutant levels",
		X:       chart.Field{Name: "pollutant", Type: chart.Nominal, Sort: dataset.Pollutants},
		Y:       chart.Field{Name: "value", Type: chart.Quantitative},
		Color:   &chart.Color{Field: &measure},
		XOffset: &measure,
		Tooltip: []chart.Field{{Name: "pollutant", Type: chart.Nominal}, measure, {Name: "value", Type: chart.Quantitative}},
		Sizes:   s.Sizes,
	})
	return spec, ex, err
}
