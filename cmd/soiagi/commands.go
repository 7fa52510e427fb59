package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"soiagi/internal/app"
	"soiagi/internal/config"
	"soiagi/internal/dataprocessing"
	"soiagi/internal/errors"
	"soiagi/internal/operations"
	"soiagi/pkg/contracts"
)

// cliFlags holds the values of the persistent flags
type cliFlags struct {
	configFile      string
	baseDir         string
	inputDir        string
	outputDir       string
	codebook        string
	years           []string
	jurisdiction    string
	noFilter        bool
	emitUnfiltered  bool
	logLevel        string
	traceExporter   string
	metricsTextfile string
	continueOnError bool
	jsonOutput      bool
}

// usageError marks invalid flags or arguments
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func isUsageError(err error) bool {
	var uErr *usageError
	return stderrors.As(err, &uErr)
}

// stepCommands maps subcommands to the pipeline step they request
var stepCommands = []struct {
	use   string
	step  string
	short string
}{
	{"run", operations.StepAll, "Run every pipeline step"},
	{"standardize", operations.StepIDStandardize, "Standardize the yearly extracts against the codebook"},
	{"master", operations.StepIDMaster, "Build the master tables (standardizes first)"},
	{"prevalent-zip", operations.StepIDPrevalentZip, "Assign each energy usage row its tract's most prevalent ZIP"},
	{"coordinates", operations.StepIDCoordinates, "Attach coordinates to the energy usage table (assigns ZIPs first)"},
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	rootCmd := &cobra.Command{
		Use:   "soiagi",
		Short: "IRS SOI ZIP-code AGI toolkit",
		Long: `soiagi standardizes the yearly IRS Statistics of Income ZIP-code extracts
against the codebook, concatenates them into master tables and geocodes the
energy usage table through tract to ZIP and ZIP to coordinate lookups.

Configuration is read from soiagi.yaml and SOI_* environment variables;
flags given on the command line take precedence.`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default: ./soiagi.yaml)")
	pf.StringVar(&flags.baseDir, "base-dir", "", "base directory relative paths resolve against")
	pf.StringVar(&flags.inputDir, "input-dir", "", "directory holding the yearly extracts")
	pf.StringVar(&flags.outputDir, "output-dir", "", "directory outputs are written to")
	pf.StringVar(&flags.codebook, "codebook", "", "path to Codebook.xlsx")
	pf.StringSliceVar(&flags.years, "years", nil, "four digit years to process (empty means all known years)")
	pf.StringVarP(&flags.jurisdiction, "jurisdiction", "j", "", "two letter state code the master table is filtered to")
	pf.BoolVar(&flags.noFilter, "no-filter", false, "write only the unfiltered master table")
	pf.BoolVar(&flags.emitUnfiltered, "emit-unfiltered", false, "also write the unfiltered master table when filtering")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	pf.StringVar(&flags.traceExporter, "trace-exporter", "", "trace exporter (none|stdout|file)")
	pf.StringVar(&flags.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file at exit")
	pf.BoolVar(&flags.continueOnError, "continue-on-error", false, "keep running independent steps after a failure")
	pf.BoolVar(&flags.jsonOutput, "json", false, "print the run result as JSON instead of a table")

	_ = rootCmd.RegisterFlagCompletionFunc("trace-exporter", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"none", "stdout", "file"}, cobra.ShellCompDirectiveNoFileComp
	})

	for _, sc := range stepCommands {
		step := sc.step
		rootCmd.AddCommand(&cobra.Command{
			Use:   sc.use,
			Short: sc.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runStep(cmd, flags, step)
			},
		})
	}
	rootCmd.AddCommand(newStepsCommand())
	rootCmd.AddCommand(newCodebookCommand(flags))
	rootCmd.AddCommand(newVersionCommand(flags))

	return rootCmd
}

func runStep(cmd *cobra.Command, flags *cliFlags, step string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	application, err := app.NewApplication(app.Options{
		ConfigFile: flags.configFile,
		Override: func(cfg *config.Config) {
			applyOverrides(cmd.Root().PersistentFlags(), flags, cfg)
		},
		ContinueOnError: flags.continueOnError,
	})
	if err != nil {
		return err
	}
	defer application.Stop(context.WithoutCancel(ctx))

	resp, runErr := application.RunWithSignals(ctx, step)

	out := cmd.OutOrStdout()
	if flags.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		app.RenderSummary(out, resp)
	}

	if runErr != nil {
		application.ErrorHandler.Handle(ctx, runErr)
		return runErr
	}
	return nil
}

// applyOverrides copies every flag given on the command line into cfg
func applyOverrides(fs *pflag.FlagSet, flags *cliFlags, cfg *config.Config) {
	if fs.Changed("base-dir") {
		cfg.Paths.BaseDir = flags.baseDir
	}
	if fs.Changed("input-dir") {
		cfg.Paths.InputDir = flags.inputDir
	}
	if fs.Changed("output-dir") {
		cfg.Paths.OutputDir = flags.outputDir
	}
	if fs.Changed("codebook") {
		cfg.Paths.Codebook = flags.codebook
	}
	if fs.Changed("years") {
		cfg.Pipeline.Years = flags.years
	}
	if fs.Changed("jurisdiction") {
		cfg.Pipeline.Jurisdiction = flags.jurisdiction
		cfg.Pipeline.FilterJurisdiction = true
	}
	if fs.Changed("no-filter") {
		cfg.Pipeline.FilterJurisdiction = !flags.noFilter
	}
	if fs.Changed("emit-unfiltered") {
		cfg.Pipeline.EmitUnfiltered = flags.emitUnfiltered
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	if fs.Changed("trace-exporter") {
		cfg.Telemetry.TraceExporter = flags.traceExporter
	}
	if fs.Changed("metrics-textfile") {
		cfg.Telemetry.MetricsTextfile = flags.metricsTextfile
	}
}

func newStepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the pipeline steps in execution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := operations.NewRegistry()
			if err := operations.RegisterPipelineSteps(registry, operations.StepOptions{}); err != nil {
				return err
			}
			steps, err := registry.GetDependencyOrder()
			if err != nil {
				return err
			}
			app.RenderSteps(cmd.OutOrStdout(), steps)
			return nil
		},
	}
}

func newCodebookCommand(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "codebook",
		Short: "List the codebook variables that define the standardized columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configFile)
			if err != nil {
				return errors.NewConfigError("failed to load configuration", err)
			}
			applyOverrides(cmd.Root().PersistentFlags(), flags, cfg)

			paths, err := config.GetPaths(cfg.Paths)
			if err != nil {
				return errors.NewConfigError("failed to resolve paths", err)
			}
			dict, err := dataprocessing.ReadCodebook(paths.CodebookFile, cfg.Paths.CodebookSheet)
			if err != nil {
				return err
			}
			app.RenderCodebook(cmd.OutOrStdout(), dict)
			return nil
		},
	}
}

func newVersionCommand(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if flags.jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(contracts.GetVersionInfo())
			}
			_, err := fmt.Fprintln(out, contracts.GetFullVersionString())
			return err
		},
	}
}
