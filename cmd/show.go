package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/KaramelBytes/aqdash/internal/aggregate"
	"github.com/KaramelBytes/aqdash/internal/dashboard"
	"github.com/KaramelBytes/aqdash/internal/dataset"
	"github.com/spf13/cobra"
)

var showRows int

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the filtered rows and the max/min table",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadData()
		if err != nil {
			return err
		}
		f, err := selectedFilters(cmd, d)
		if err != nil {
			return err
		}
		t, err := dashboard.Filter(d, f)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Data for year %d at station %s (%d rows)\n", f.Year, f.Station, t.Len())
		if t.Len() > 0 && showRows != 0 {
			df, err := t.Head(showRows).DataFrame()
			if err != nil {
				return err
			}
			fmt.Fprintln(w, df.String())
		}

		ex, err := aggregate.Extremes(t, dataset.Pollutants)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "Highest and lowest pollutant levels")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "Pollutant\t%s\t%s\n", dashboard.MeasureMax, dashboard.MeasureMin)
		for _, e := range ex {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Column, formatNumber(e.Max), formatNumber(e.Min))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	addDataFlags(showCmd, true)
	showCmd.Flags().IntVar(&showRows, "rows", 10, "rows to print")
}
