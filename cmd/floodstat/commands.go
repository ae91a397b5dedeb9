package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/couchcryptid/flood-data-analytics/internal/domain"
	"github.com/couchcryptid/flood-data-analytics/internal/stats"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "floodstat",
		Short:        "Statistics over exported gauge readings",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("sheet", "", "workbook sheet to read (default: first sheet)")
	root.PersistentFlags().Bool("json", false, "print results as JSON")

	root.AddCommand(newSummaryCmd(), newCorrelateCmd())
	return root
}

type columnSummary struct {
	Column    string            `json:"column"`
	Rows      int               `json:"rows"`
	Summary   stats.Summary     `json:"summary"`
	Formatted map[string]string `json:"formatted"`
}

func newSummaryCmd() *cobra.Command {
	var columns []string

	cmd := &cobra.Command{
		Use:   "summary FILE",
		Short: "Describe numeric columns: count, mean, std, min, quartiles, max",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTable(args[0], sheetFlag(cmd))
			if err != nil {
				return err
			}
			if len(columns) == 0 {
				columns = t.numericColumns()
			}
			if len(columns) == 0 {
				return errors.New("no numeric columns found")
			}

			results := make([]columnSummary, 0, len(columns))
			for _, name := range columns {
				values, err := t.column(name)
				if err != nil {
					return err
				}
				s, ok := stats.Summarize(values)
				if !ok {
					return fmt.Errorf("column %q has no numeric values", name)
				}
				results = append(results, columnSummary{
					Column:    name,
					Rows:      len(values),
					Summary:   s,
					Formatted: domain.FormatSummary(s),
				})
			}

			if jsonFlag(cmd) {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return writeSummaryTable(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "columns to describe (default: every numeric column)")
	return cmd
}

type correlationResult struct {
	X           string       `json:"x"`
	Y           string       `json:"y"`
	Method      stats.Method `json:"method"`
	Coefficient string       `json:"coefficient"`
	PValue      string       `json:"p_value"`
	N           int          `json:"n"`
	Significant bool         `json:"significant"`
}

func newCorrelateCmd() *cobra.Command {
	var x, y, method string

	cmd := &cobra.Command{
		Use:   "correlate FILE",
		Short: "Correlate two columns row by row, skipping rows where either is missing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := stats.ParseMethod(method)
			if err != nil {
				return err
			}
			t, err := loadTable(args[0], sheetFlag(cmd))
			if err != nil {
				return err
			}
			xs, err := t.column(x)
			if err != nil {
				return err
			}
			ys, err := t.column(y)
			if err != nil {
				return err
			}

			px, py := completePairs(xs, ys)
			c, err := stats.Correlate(m, px, py)
			if err != nil {
				return fmt.Errorf("%s vs %s: %w", x, y, err)
			}

			res := correlationResult{
				X:           x,
				Y:           y,
				Method:      c.Method,
				Coefficient: stats.Format(c.Coefficient),
				PValue:      stats.Format(c.PValue),
				N:           c.N,
				Significant: c.PValue < 0.05,
			}
			if jsonFlag(cmd) {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s r(%s, %s) = %s  p = %s  n = %d\n",
				res.Method, res.X, res.Y, res.Coefficient, res.PValue, res.N)
			return err
		},
	}
	cmd.Flags().StringVar(&x, "x", "", "first column")
	cmd.Flags().StringVar(&y, "y", "", "second column")
	cmd.Flags().StringVar(&method, "method", "pearson", "pearson or spearman")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}

func sheetFlag(cmd *cobra.Command) string {
	s, _ := cmd.Flags().GetString("sheet")
	return s
}

func jsonFlag(cmd *cobra.Command) bool {
	b, _ := cmd.Flags().GetBool("json")
	return b
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSummaryTable(w io.Writer, results []columnSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "column\tcount\tmean\tstd\tmin\tp25\tp50\tp75\tmax\t")
	for _, r := range results {
		f := r.Formatted
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Column, r.Summary.Count, f["mean"], f["std"], f["min"], f["p25"], f["p50"], f["p75"], f["max"])
	}
	return tw.Flush()
}
