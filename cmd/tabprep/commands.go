package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tabprep/internal/app"
	"tabprep/internal/dataprocessing"
	"tabprep/internal/operations"
	"tabprep/internal/prompt"
	"tabprep/pkg/contracts"
)

func (c *cli) imputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "impute FILE",
		Short: "Fill missing values with a random forest or interpolation",
		Long: `impute fills every missing numeric cell of FILE (.csv or .xlsx). A column
is filled by random forest regression on the other numeric columns when it
has enough complete rows, otherwise by linear interpolation. The result is
written next to the input as <name>_filled<ext>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.runner().Impute(cmd.Context(), args[0])
			if c.printSummary(res.Summary) || err != nil {
				return err
			}

			c.printf("Missing values per column:\n")
			for _, m := range res.Report.MissingBefore {
				c.printf("%-20s %d\n", m.Column, m.Missing)
			}
			c.printf("\nFilled %d cells\n", res.Report.TotalFilled())
			c.printf("Filled data saved to: %s\n", res.Output)
			return nil
		},
	}
}

func (c *cli) cleanCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "clean FILE",
		Short: "Drop rows with missing values and duplicate rows",
		Long: `clean removes every row of FILE (.csv or .xlsx) that has a missing cell,
then every exact duplicate row after its first occurrence. Without -o the
result is written next to the input as cleaned_<name><ext>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.runner().Clean(cmd.Context(), args[0], output)
			if c.printSummary(res.Summary) || err != nil {
				return err
			}

			r := res.Report
			c.printf("Original size: %d rows, %d columns\n", r.OriginalRows, r.OriginalCols)
			c.printf("Dropped %d rows with missing values\n", r.MissingDropped)
			c.printf("Dropped %d duplicate rows\n", r.DuplicatesDropped)
			c.printf("Cleaned size: %d rows, %d columns\n", r.FinalRows, r.OriginalCols)
			c.printf("Data saved to: %s\n", res.Output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path; its extension is replaced by the input's")
	return cmd
}

func (c *cli) transformCmd() *cobra.Command {
	var (
		kind    string
		columns string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "transform [FILE]",
		Short: "Apply Z-score, Min-Max, Box-Cox or centered log-ratio to columns",
		Long: `transform rescales the selected columns of FILE (.csv, .xls or .xlsx).

Methods (--kind): 1 zscore, 2 minmax, 3 boxcox, 4 clr.
Columns (--columns) are names or zero-based indices, comma separated.

Anything not given on the command line is asked for interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := operations.TransformRequest{Output: output}
			if len(args) == 1 {
				req.Input = args[0]
			}
			if kind != "" {
				k, err := dataprocessing.ParseKind(kind)
				if err != nil {
					return err
				}
				req.Kind = k
			}
			if cmd.Flags().Changed("columns") {
				req.Columns = dataprocessing.ParseSelection(columns)
				if req.Columns == nil {
					req.Columns = []string{}
				}
			}

			if req.Input == "" || req.Kind == 0 || req.Columns == nil {
				var err error
				if req, err = prompt.New(c.stdin, c.stdout, c.logger).Transform(req); err != nil {
					return err
				}
			}

			res, err := c.runner().Transform(cmd.Context(), req)
			if c.printSummary(res.Summary) || err != nil {
				return err
			}
			c.printf("Applied %s to %d columns\n", res.Kind, len(res.Columns))
			c.printf("Result saved to: %s\n", res.Output)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "transform method: 1-4 or zscore, minmax, boxcox, clr")
	cmd.Flags().StringVar(&columns, "columns", "", "columns to transform, by name or index")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (.csv or .xlsx)")
	return cmd
}

func (c *cli) viewCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Serve a table as JSON over HTTP",
		Long: `view loads FILE (.csv, .xls or .xlsx) and serves it read-only:

  GET /api/table/columns
  GET /api/table/rows?columns=a,1&offset=0&limit=100
  GET /healthz
  GET /metrics

The server stops on SIGINT or SIGTERM.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Viewer.Addr = addr
			}
			viewer, err := app.New(c.cfg, args[0], c.tel, c.logger)
			if err != nil {
				return err
			}
			c.printf("Serving %s on %s\n", args[0], c.cfg.Viewer.Addr)
			return viewer.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8090)")
	return cmd
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.jsonOutput {
				return printJSON(c.stdout, contracts.GetVersionInfo())
			}
			fmt.Fprintln(c.stdout, contracts.GetFullVersionString())
			return nil
		},
	}
}
