package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/aqdash/internal/config"
	"github.com/KaramelBytes/aqdash/internal/dataset"
	"github.com/KaramelBytes/aqdash/internal/logging"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set aqdash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "data_path: %s\n", c.DataPath)
		fmt.Fprintf(w, "output_dir: %s\n", c.OutputDir)
		if c.Delimiter != "" {
			fmt.Fprintf(w, "delimiter: %q\n", c.Delimiter)
		}
		if c.Sheet != "" {
			fmt.Fprintf(w, "sheet: %s\n", c.Sheet)
		}
		fmt.Fprintf(w, "month_policy: %s\n", c.MonthPolicy)
		fmt.Fprintf(w, "chart_width: %d\n", c.ChartWidth)
		fmt.Fprintf(w, "chart_height: %d\n", c.ChartHeight)
		fmt.Fprintf(w, "scatter_height: %d\n", c.ScatterHeight)
		fmt.Fprintf(w, "max_scatter_points: %d\n", c.MaxScatterPoints)
		fmt.Fprintf(w, "render_png: %t\n", c.RenderPNG)
		fmt.Fprintf(w, "table_format: %s\n", c.TableFormat)
		fmt.Fprintf(w, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(w, "log_format: %s\n", c.LogFormat)
		keys := make([]string, 0, len(c.TrendColors))
		for k := range c.TrendColors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "trend_colors.%s: %s\n", k, c.TrendColors[k])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk. Trend colors are set per pollutant,
e.g. "aqdash config set trend_colors.O3 green".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := currentConfig()
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	positive := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return 0, fmt.Errorf("invalid non-negative int for %s: %v", key, val)
		}
		return i, nil
	}
	var err error
	switch key {
	case "data_path":
		c.DataPath = val
	case "output_dir":
		c.OutputDir = val
	case "delimiter":
		c.Delimiter = val
	case "sheet":
		c.Sheet = val
	case "month_policy":
		if _, err := dataset.ParseMonthPolicy(val); err != nil {
			return err
		}
		c.MonthPolicy = val
	case "chart_width":
		c.ChartWidth, err = positive()
	case "chart_height":
		c.ChartHeight, err = positive()
	case "scatter_height":
		c.ScatterHeight, err = positive()
	case "max_scatter_points":
		c.MaxScatterPoints, err = positive()
	case "render_png":
		b, perr := strconv.ParseBool(val)
		if perr != nil {
			return fmt.Errorf("invalid bool for render_png: %w", perr)
		}
		c.RenderPNG = b
	case "table_format":
		switch strings.ToLower(val) {
		case "csv", "xlsx":
			c.TableFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid table_format: %s (use csv or xlsx)", val)
		}
	case "log_level":
		if _, err := logging.ParseLevel(val); err != nil {
			return err
		}
		c.LogLevel = val
	case "log_format":
		switch val {
		case "text", "json":
			c.LogFormat = val
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	default:
		p, ok := strings.CutPrefix(key, "trend_colors.")
		if !ok || p == "" {
			return fmt.Errorf("unknown key: %s", key)
		}
		if c.TrendColors == nil {
			c.TrendColors = cfgpkg.DefaultTrendColors()
		}
		c.TrendColors[strings.ToUpper(p)] = val
	}
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
