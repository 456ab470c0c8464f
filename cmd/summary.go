package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/KaramelBytes/aqdash/internal/aggregate"
	"github.com/KaramelBytes/aqdash/internal/dashboard"
	"github.com/KaramelBytes/aqdash/internal/dataset"
	"github.com/spf13/cobra"
)

var summaryPollutants []string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print per-year and per-month medians and the TEMP/O3 correlation",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadData()
		if err != nil {
			return err
		}
		pollutants := summaryPollutants
		if len(pollutants) == 0 {
			pollutants = dashboard.TrendPollutants
		}
		w := cmd.OutOrStdout()

		r, err := aggregate.Pearson(d.Table(), dataset.ColTemp, "O3")
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Correlation TEMP/O3: %s\n", formatNumber(r))

		for _, p := range pollutants {
			p = strings.ToUpper(strings.TrimSpace(p))
			years, err := aggregate.GroupBy(d.Table(), aggregate.Spec{
				By: dataset.ColYear, Value: p, Stats: []aggregate.Stat{aggregate.Median}, Order: aggregate.OrderDesc,
			})
			if err != nil {
				return err
			}
			months, err := aggregate.GroupBy(d.Labelled(), aggregate.Spec{
				By: dataset.ColMonth, Value: p, Stats: []aggregate.Stat{aggregate.Median, aggregate.Count}, Order: aggregate.OrderCalendar,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "\n%s median by year\n", p)
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "year\tmedian")
			for _, g := range years.Groups {
				fmt.Fprintf(tw, "%s\t%s\n", g.Key, formatNumber(g.Values[aggregate.Median]))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(w, "\n%s median by month\n", p)
			tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "month\tmedian\tcount")
			for _, g := range months.Groups {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", g.Key, formatNumber(g.Values[aggregate.Median]), formatNumber(g.Values[aggregate.Count]))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	addDataFlags(summaryCmd, false)
	summaryCmd.Flags().StringSliceVar(&summaryPollutants, "pollutant", nil, "pollutants to summarise (default NO2,SO2,CO,O3)")
}
