package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"regionstats/internal/config"
	"regionstats/internal/dataset"
	"regionstats/internal/infrastructure"
	"regionstats/internal/pipeline"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

const (
	exitInput  = 1
	exitConfig = 2
	exitOutput = 3
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// runFlags holds the parsed command-line flags. Only flags the user set
// override the file and environment configuration.
type runFlags struct {
	configPath  string
	input       string
	outputDir   string
	topN        int
	compare     []string
	reference   string
	headline    string
	delimiter   string
	workbook    bool
	metricsFile string
	logLevel    string
	logFormat   string
}

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		os.Exit(exitCode(err, os.Stderr))
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "regionstats [input]",
		Short: "Summarise regional registration counts into charts and a workbook",
		Long: "regionstats reads (region, year, category, count) records, aggregates them by region and year, " +
			"and compares a reference region against the national totals.",
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := cmd.Flags().Set("input", args[0]); err != nil {
					return codeError(exitConfig, "input: %s", err)
				}
			}
			return run(cmd, flags, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "YAML configuration file")
	f.StringVar(&flags.input, "input", "", "Input file (.csv or other delimited text, or .xlsx)")
	f.StringVar(&flags.outputDir, "output-dir", "", "Directory for charts, workbook and metrics")
	f.IntVar(&flags.topN, "top-n", 0, "Regions shown in top-N charts")
	f.StringSliceVar(&flags.compare, "compare", nil, "Fixed comparison regions (comma list, may be repeated)")
	f.StringVar(&flags.reference, "reference", "", "Reference region code")
	f.StringVar(&flags.headline, "headline", "", "Headline category code for the national series chart")
	f.StringVar(&flags.delimiter, "delimiter", "", `Field delimiter for text input ("tab" for tabs)`)
	f.BoolVar(&flags.workbook, "workbook", true, "Write the summary workbook")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "Write run metrics in textfile-collector format")
	f.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	f.StringVar(&flags.logFormat, "log-format", "", "Log format: text or json")

	return cmd
}

func run(cmd *cobra.Command, flags runFlags, stdout, stderr io.Writer) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return codeError(exitConfig, "%s", err)
	}
	applyFlags(cmd, flags, cfg)
	if err := cfg.Validate(); err != nil {
		return codeError(exitConfig, "%s", err)
	}

	logger := infrastructure.NewLogger(cfg.Logging, stderr)
	res, err := pipeline.Run(cfg, pipeline.Deps{
		Logger:  logger,
		Metrics: infrastructure.NewMetrics(),
		Stdout:  stdout,
	})
	if err != nil {
		switch {
		case errors.Is(err, dataset.ErrInputUnreadable), errors.Is(err, pipeline.ErrNoUsableRows):
			return codeError(exitInput, "%s", err)
		case errors.Is(err, pipeline.ErrOutput):
			return codeError(exitOutput, "%s", err)
		}
		return codeError(exitInput, "%s", err)
	}

	fmt.Fprintf(stdout, "\n%d charts written to %s, %d skipped\n", len(res.Charts), cfg.OutputDir, len(res.Skipped))
	return nil
}

func applyFlags(cmd *cobra.Command, flags runFlags, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("input") {
		cfg.InputPath = flags.input
	}
	if changed("output-dir") {
		cfg.OutputDir = flags.outputDir
	}
	if changed("top-n") {
		cfg.TopN = flags.topN
	}
	if changed("compare") {
		cfg.CompareRegions = flags.compare
	}
	if changed("reference") {
		cfg.ReferenceRegion = flags.reference
	}
	if changed("headline") {
		cfg.HeadlineCategory = flags.headline
	}
	if changed("delimiter") {
		cfg.Delimiter = flags.delimiter
	}
	if changed("workbook") {
		cfg.Workbook = flags.workbook
	}
	if changed("metrics-file") {
		cfg.MetricsFile = flags.metricsFile
	}
	if changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	if changed("log-format") {
		cfg.Logging.Format = flags.logFormat
	}
}

// exitCode prints err to w and maps it to the process exit status.
func exitCode(err error, w io.Writer) int {
	var ee *exitErr
	if errors.As(err, &ee) {
		fmt.Fprintln(w, "Error:", ee.msg)
		return ee.code
	}
	// flag parsing and argument errors
	fmt.Fprintln(w, "Error:", err)
	return exitConfig
}
