package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dashboard", c.OutputDir)
	assert.Equal(t, "reject", c.MonthPolicy)
	assert.Equal(t, 600, c.ChartWidth)
	assert.Equal(t, 300, c.ChartHeight)
	assert.Equal(t, 400, c.ScatterHeight)
	assert.Equal(t, "csv", c.TableFormat)
	assert.Equal(t, DefaultTrendColors(), c.TrendColors)
	assert.Equal(t, rune(0), c.Delim())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	require.NoError(t, err)
	c.DataPath = "/data/main_data.csv"
	c.TrendColors["O3"] = "green"
	c.Delimiter = ";"
	require.NoError(t, Save(c, ""))
	assert.FileExists(t, filepath.Join(home, ".aqdash", "config.yaml"))

	back, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/data/main_data.csv", back.DataPath)
	assert.Equal(t, "green", back.TrendColors["O3"])
	assert.Equal(t, "olive", back.TrendColors["CO"])
	assert.Equal(t, ';', back.Delim())
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	cfgFile := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("chart_width: 800\ntrend_colors:\n  NO2: purple\n"), 0o644))
	t.Setenv("AQDASH_MAX_SCATTER_POINTS", "250")

	c, err := Load(cfgFile)
	require.NoError(t, err)
	assert.Equal(t, 800, c.ChartWidth)
	assert.Equal(t, 250, c.MaxScatterPoints)
	assert.Equal(t, "purple", c.TrendColors["NO2"])
	assert.Equal(t, "red", c.TrendColors["SO2"])
}

func TestDelim(t *testing.T) {
	assert.Equal(t, '\t', (&Global{Delimiter: "tab"}).Delim())
	assert.Equal(t, '\t', (&Global{Delimiter: `\t`}).Delim())
	assert.Equal(t, ',', (&Global{Delimiter: ","}).Delim())
}
