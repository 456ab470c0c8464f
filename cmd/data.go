package cmd

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/KaramelBytes/aqdash/internal/chart"
	"github.com/KaramelBytes/aqdash/internal/dashboard"
	"github.com/KaramelBytes/aqdash/internal/dataset"
	"github.com/spf13/cobra"
)

// Selection flags shared by the data commands.
var (
	dataPath    string
	dataYear    int
	dataStation string
)

func addDataFlags(c *cobra.Command, selection bool) {
	c.Flags().StringVar(&dataPath, "data", "", "dataset file (.csv, .tsv or .xlsx; overrides data_path)")
	if selection {
		c.Flags().IntVar(&dataYear, "year", 0, "selected year (default: first available)")
		c.Flags().StringVar(&dataStation, "station", "", "selected station (default: first available)")
	}
}

// loadData reads the dataset through the process-wide cache and prepares it.
func loadData() (*dashboard.Data, error) {
	c := currentConfig()
	path := dataPath
	if path == "" {
		path = c.DataPath
	}
	if path == "" {
		return nil, errors.New("no dataset: pass --data or set data_path")
	}
	policy, err := dataset.ParseMonthPolicy(c.MonthPolicy)
	if err != nil {
		return nil, err
	}
	f, err := dataset.Cached(path, dataset.LoadOptions{Delimiter: c.Delim(), Sheet: c.Sheet})
	if err != nil {
		return nil, err
	}
	d, err := dashboard.Prepare(f, policy)
	if err != nil {
		return nil, err
	}
	for _, col := range dataset.Pollutants {
		if n := d.Coerced[col]; n > 0 {
			logger.Debug("missing values", slog.String("column", col), slog.Int("count", n))
		}
	}
	return d, nil
}

// selectedFilters starts from the first year and station and applies the
// flags that were set.
func selectedFilters(c *cobra.Command, d *dashboard.Data) (dashboard.Filters, error) {
	f, err := dashboard.DefaultFilters(d)
	if err != nil {
		return f, err
	}
	if c.Flags().Changed("year") {
		f.Year = dataYear
	}
	if c.Flags().Changed("station") {
		f.Station = dataStation
	}
	return f, d.Validate(f)
}

func renderSettings() dashboard.Settings {
	c := currentConfig()
	sizes := chart.DefaultSizes()
	if c.ChartWidth > 0 {
		sizes.Width = c.ChartWidth
	}
	if c.ChartHeight > 0 {
		sizes.Height = c.ChartHeight
	}
	if c.ScatterHeight > 0 {
		sizes.ScatterHeight = c.ScatterHeight
	}
	return dashboard.Settings{
		Logger:           logger,
		Sizes:            sizes,
		MaxScatterPoints: c.MaxScatterPoints,
		TrendColors:      c.TrendColors,
	}
}

func formatNumber(n dataset.Number) string {
	if !n.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}
