package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"tabprep/internal/config"
	apperrors "tabprep/internal/errors"
	"tabprep/internal/infrastructure"
	"tabprep/internal/operations"
	"tabprep/pkg/contracts/domain"
)

// cli holds the global flags and the state built from them before a
// subcommand runs
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath  string
	logLevel    string
	metricsFile string
	jsonOutput  bool

	cfg      *config.Config
	logger   *slog.Logger
	closeLog func() error
	tel      *infrastructure.Telemetry
}

// execute runs the command line in args and returns the process exit code
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	c.close(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", apperrors.Message(err))
		return 1
	}
	return 0
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tabprep",
		Short:         "Single-pass preprocessing for CSV and Excel tables",
		Long:          `tabprep fills missing values, drops incomplete and duplicate rows, rescales columns and serves tables for inspection. Every command reads one file and writes a new one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to a tabprep.yaml config file")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&c.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	flags.BoolVar(&c.jsonOutput, "json", false, "print the run summary as JSON")

	root.AddCommand(
		c.imputeCmd(),
		c.cleanCmd(),
		c.transformCmd(),
		c.viewCmd(),
		c.versionCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger and telemetry
func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return apperrors.NewConfigError("cannot load configuration", err)
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if c.metricsFile != "" {
		cfg.Telemetry.MetricsFile = c.metricsFile
	}
	c.cfg = cfg

	if c.logger, c.closeLog, err = infrastructure.OpenLogger(cfg.Logging, c.stderr); err != nil {
		return apperrors.NewConfigError("cannot initialize logging", err)
	}
	slog.SetDefault(c.logger)

	if c.tel, err = infrastructure.InitializeTelemetry(cfg.Telemetry, c.logger); err != nil {
		return apperrors.NewConfigError("cannot initialize telemetry", err)
	}
	return nil
}

// close flushes metrics and traces and releases the log file; failures are
// logged, not returned
func (c *cli) close(ctx context.Context) {
	if c.closeLog != nil {
		defer c.closeLog()
	}
	if c.tel == nil {
		return
	}
	if path := c.cfg.Telemetry.MetricsFile; path != "" {
		if err := c.tel.WriteMetricsFile(path); err != nil {
			c.logger.Error("metrics file not written", slog.String("error", err.Error()))
		}
	}
	if err := c.tel.Shutdown(ctx); err != nil {
		c.logger.Error("telemetry shutdown failed", slog.String("error", err.Error()))
	}
}

func (c *cli) runner() *operations.Runner {
	return operations.NewRunner(c.cfg, c.tel, c.logger)
}

// printSummary writes the run summary as JSON when --json is set and
// reports whether it did
func (c *cli) printSummary(summary domain.RunSummary) bool {
	if !c.jsonOutput {
		return false
	}
	if err := printJSON(c.stdout, summary); err != nil {
		c.logger.Error("summary not printed", slog.String("error", err.Error()))
	}
	return true
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.stdout, format, args...)
}
