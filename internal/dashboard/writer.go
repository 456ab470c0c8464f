package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/aqdash/internal/chart"
	"github.com/KaramelBytes/aqdash/internal/dataset"
	"github.com/KaramelBytes/aqdash/internal/utils"
)

// ManifestFile is the bundle index written next to the charts.
const ManifestFile = "manifest.json"

// WriteOptions selects the optional bundle outputs.
type WriteOptions struct {
	PNG         bool
	TableFormat string // "csv" (default) or "xlsx"
}

// Manifest describes a written bundle.
type Manifest struct {
	ID          string            `json:"id"`
	CreatedAt   time.Time         `json:"created_at"`
	Filters     Filters           `json:"filters"`
	Dataset     string            `json:"dataset"`
	Checksum    string            `json:"checksum"`
	Correlation *float64          `json:"correlation"`
	Rows        int               `json:"rows"`
	Table       string            `json:"table"`
	Charts      []ManifestChart   `json:"charts"`
	Extremes    []ManifestExtreme `json:"extremes"`
}

// ManifestChart points at one chart's files.
type ManifestChart struct {
	Name    string `json:"name"`
	Section string `json:"section"`
	Title   string `json:"title"`
	Spec    string `json:"spec"`
	PNG     string `json:"png,omitempty"`
}

// ManifestExtreme is one pollutant's max and min; null means no data.
type ManifestExtreme struct {
	Pollutant string   `json:"pollutant"`
	Max       *float64 `json:"max"`
	Min       *float64 `json:"min"`
}

func ptr(n dataset.Number) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// WriteBundle writes b under dir: the manifest, one Vega-Lite file per chart,
// index.html, the filtered table and, when enabled, PNG renderings.
func WriteBundle(b *Bundle, dir string, opt WriteOptions) (*Manifest, error) {
	format := strings.ToLower(opt.TableFormat)
	switch format {
	case "":
		format = "csv"
	case "csv", "xlsx":
	default:
		return nil, fmt.Errorf("unsupported table format %q (use csv or xlsx)", opt.TableFormat)
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	m := &Manifest{
		ID:          b.ID.String(),
		CreatedAt:   b.CreatedAt,
		Filters:     b.Filters,
		Dataset:     b.Dataset,
		Checksum:    b.Checksum,
		Correlation: ptr(b.Correlation),
		Rows:        b.Filtered.Len(),
		Table:       "filtered." + format,
	}
	for _, e := range b.Extremes {
		m.Extremes = append(m.Extremes, ManifestExtreme{Pollutant: e.Column, Max: ptr(e.Max), Min: ptr(e.Min)})
	}

	for _, c := range b.Charts {
		js, err := c.Spec.JSON()
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", c.Name, err)
		}
		entry := ManifestChart{
			Name:    c.Name,
			Section: c.Section,
			Title:   c.Spec.Title,
			Spec:    filepath.ToSlash(filepath.Join("charts", utils.SafeName(c.Name)+".vl.json")),
		}
		if err := utils.SafeWriteFile(filepath.Join(dir, filepath.FromSlash(entry.Spec)), js); err != nil {
			return nil, err
		}
		if opt.PNG {
			var buf bytes.Buffer
			if err := chart.RenderPNG(c.Spec, &buf); err != nil {
				return nil, fmt.Errorf("chart %s: %w", c.Name, err)
			}
			entry.PNG = filepath.ToSlash(filepath.Join("png", utils.SafeName(c.Name)+".png"))
			if err := utils.SafeWriteFile(filepath.Join(dir, filepath.FromSlash(entry.PNG)), buf.Bytes()); err != nil {
				return nil, err
			}
		}
		m.Charts = append(m.Charts, entry)
	}

	var table bytes.Buffer
	var err error
	if format == "xlsx" {
		err = dataset.WriteXLSX(b.Filtered, &table, "filtered")
	} else {
		err = dataset.WriteCSV(b.Filtered, &table)
	}
	if err != nil {
		return nil, fmt.Errorf("write filtered table: %w", err)
	}
	if err := utils.SafeWriteFile(filepath.Join(dir, m.Table), table.Bytes()); err != nil {
		return nil, err
	}

	var page bytes.Buffer
	if err := chart.WriteHTML(&page, b.Page()); err != nil {
		return nil, err
	}
	if err := utils.SafeWriteFile(filepath.Join(dir, "index.html"), page.Bytes()); err != nil {
		return nil, err
	}

	mb, err := utils.PrettyJSON(m)
	if err != nil {
		return nil, err
	}
	if err := utils.SafeWriteFile(filepath.Join(dir, ManifestFile), mb); err != nil {
		return nil, err
	}
	return m, nil
}

// ReadManifest loads the manifest of a written bundle.
func ReadManifest(dir string) (*Manifest, error) {
	b, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Page lays the bundle out as a dashboard page, one section per chart group.
func (b *Bundle) Page() chart.Page {
	p := chart.Page{
		Title:    "Air Quality Explorer",
		Subtitle: "Interactive dashboard for understanding air pollution",
	}
	idx := map[string]int{}
	for _, c := range b.Charts {
		i, ok := idx[c.Section]
		if !ok {
			i = len(p.Sections)
			idx[c.Section] = i
			p.Sections = append(p.Sections, chart.Section{Heading: c.Section})
		}
		p.Sections[i].Charts = append(p.Sections[i].Charts, chart.PageChart{ID: c.Name, Spec: c.Spec})
	}
	if i, ok := idx[SectionPollution]; ok {
		p.Sections[i].Note = fmt.Sprintf("Data for year %d at station %s (%d rows)", b.Filters.Year, b.Filters.Station, b.Filtered.Len())
	}
	return p
}
