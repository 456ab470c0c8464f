package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/aqdash/internal/dashboard"
	"github.com/KaramelBytes/aqdash/internal/utils"
	"github.com/spf13/cobra"
)

var optionsJSON bool

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the selectable years and stations",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadData()
		if err != nil {
			return err
		}
		opts := dashboard.Options(d)
		w := cmd.OutOrStdout()
		if optionsJSON {
			b, err := utils.PrettyJSON(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(b))
			return nil
		}
		years := make([]string, len(opts.Years))
		for i, y := range opts.Years {
			years[i] = strconv.Itoa(y)
		}
		fmt.Fprintf(w, "Years: %s\n", strings.Join(years, ", "))
		fmt.Fprintf(w, "Stations: %s\n", strings.Join(opts.Stations, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(optionsCmd)
	addDataFlags(optionsCmd, false)
	optionsCmd.Flags().BoolVar(&optionsJSON, "json", false, "print as JSON")
}
