package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/aqdash/internal/dashboard"
	"github.com/KaramelBytes/aqdash/internal/dataset"
	"github.com/KaramelBytes/aqdash/internal/utils"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered rows to a CSV or XLSX file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportOutput == "" {
			return fmt.Errorf("--output is required")
		}
		ext := strings.ToLower(filepath.Ext(exportOutput))
		if ext != ".csv" && ext != ".xlsx" {
			return fmt.Errorf("unsupported output extension %q (use .csv or .xlsx)", ext)
		}
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

		var buf bytes.Buffer
		if ext == ".xlsx" {
			err = dataset.WriteXLSX(t, &buf, "filtered")
		} else {
			err = dataset.WriteCSV(t, &buf)
		}
		if err != nil {
			return err
		}
		if err := utils.SafeWriteFile(exportOutput, buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d rows to %s\n", t.Len(), exportOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addDataFlags(exportCmd, true)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (.csv or .xlsx)")
}
