package cmd

import (
	"fmt"

	"github.com/KaramelBytes/aqdash/internal/dashboard"
	"github.com/spf13/cobra"
)

var (
	renderOutput string
	renderPNG    bool
	renderTable  string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Run one render pass and write the dashboard bundle",
	Long: `Render filters the dataset by year and station, builds every dashboard chart
and writes a bundle directory: manifest.json, charts/*.vl.json, index.html,
the filtered table and (with --png) static images.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		d, err := loadData()
		if err != nil {
			return err
		}
		f, err := selectedFilters(cmd, d)
		if err != nil {
			return err
		}
		b, err := dashboard.Render(cmd.Context(), d, f, renderSettings())
		if err != nil {
			return err
		}

		out := renderOutput
		if out == "" {
			out = c.OutputDir
		}
		if out == "" {
			out = "dashboard"
		}
		opt := dashboard.WriteOptions{PNG: c.RenderPNG, TableFormat: c.TableFormat}
		if cmd.Flags().Changed("png") {
			opt.PNG = renderPNG
		}
		if renderTable != "" {
			opt.TableFormat = renderTable
		}
		m, err := dashboard.WriteBundle(b, out, opt)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "✓ Rendered %d charts for %d at %s\n", len(m.Charts), f.Year, f.Station)
		fmt.Fprintf(w, "  Bundle: %s (id %s)\n", out, m.ID)
		fmt.Fprintf(w, "  Rows: %d  TEMP/O3 correlation: %s\n", m.Rows, formatNumber(b.Correlation))
		if m.Rows == 0 {
			fmt.Fprintf(w, "⚠ No rows for %d at %s; filtered charts are empty.\n", f.Year, f.Station)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	addDataFlags(renderCmd, true)
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "bundle directory (overrides output_dir)")
	renderCmd.Flags().BoolVar(&renderPNG, "png", false, "also render PNG images (overrides render_png)")
	renderCmd.Flags().StringVar(&renderTable, "table", "", "filtered table format: csv|xlsx (overrides table_format)")
}
