package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DataPath    string `mapstructure:"data_path" yaml:"data_path"`
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	Delimiter   string `mapstructure:"delimiter" yaml:"delimiter"`
	Sheet       string `mapstructure:"sheet" yaml:"sheet"`
	MonthPolicy string `mapstructure:"month_policy" yaml:"month_policy"`

	// Chart sizing
	ChartWidth       int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight      int `mapstructure:"chart_height" yaml:"chart_height"`
	ScatterHeight    int `mapstructure:"scatter_height" yaml:"scatter_height"`
	MaxScatterPoints int `mapstructure:"max_scatter_points" yaml:"max_scatter_points"`

	// Bundle output
	RenderPNG   bool   `mapstructure:"render_png" yaml:"render_png"`
	TableFormat string `mapstructure:"table_format" yaml:"table_format"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// TrendColors maps a pollutant to its trend line color.
	TrendColors map[string]string `mapstructure:"trend_colors" yaml:"trend_colors"`
}

// DefaultTrendColors are the per-pollutant trend line colors.
func DefaultTrendColors() map[string]string {
	return map[string]string{"NO2": "red", "SO2": "red", "CO": "olive", "O3": "blue"}
}

// Dir returns ~/.aqdash.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".aqdash"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.aqdash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("AQDASH")
	v.AutomaticEnv()

	v.SetDefault("data_path", "")
	v.SetDefault("output_dir", "dashboard")
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet", "")
	v.SetDefault("month_policy", "reject")
	v.SetDefault("chart_width", 600)
	v.SetDefault("chart_height", 300)
	v.SetDefault("scatter_height", 400)
	v.SetDefault("max_scatter_points", 0)
	v.SetDefault("render_png", false)
	v.SetDefault("table_format", "csv")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("trend_colors", DefaultTrendColors())

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// viper lowercases map keys; pollutant names are upper case.
	colors := DefaultTrendColors()
	for k, col := range c.TrendColors {
		colors[strings.ToUpper(k)] = col
	}
	c.TrendColors = colors
	return &c, nil
}

// Delim returns the configured delimiter as a rune, or 0 to sniff.
func (c *Global) Delim() rune {
	switch c.Delimiter {
	case "":
		return 0
	case `\t`, "tab":
		return '\t'
	default:
		return []rune(c.Delimiter)[0]
	}
}
