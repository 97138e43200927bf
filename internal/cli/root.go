// Package cli implements casectl, the command-line companion of the casedesk
// server. It parses spreadsheet pastes offline and bulk-creates the parsed
// test cases in the tracker.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/casedesk/internal/config"
	"github.com/JonMunkholm/casedesk/internal/core"
	"github.com/JonMunkholm/casedesk/internal/logging"
	"github.com/JonMunkholm/casedesk/internal/tracker"
)

// maxInputBytes caps how much pasted text a command reads.
const maxInputBytes = 10 * 1024 * 1024

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// CLI output colors
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// options holds the persistent flags shared by every command.
type options struct {
	output     string
	trackerURL string
	noColor    bool
	verbose    bool
}

// NewRootCmd creates the casectl root command with all subcommands.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "casectl",
		Short:   "Parse and import test cases from spreadsheet pastes",
		Long:    `casectl parses rows copied from a spreadsheet into test cases and creates them under a parent requirement in the test-case tracker.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.noColor {
				color.NoColor = true
			}
			switch opts.output {
			case OutputTable, OutputJSON, OutputYAML:
			default:
				return fmt.Errorf("invalid --output %q: must be one of table, json, yaml", opts.output)
			}
			return setupLogging(cmd.ErrOrStderr(), opts.verbose)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", OutputTable, "Output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&opts.trackerURL, "tracker-url", "", "Tracker base URL (overrides TRACKER_BASE_URL)")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at the configured LOG_LEVEL instead of warn")

	rootCmd.AddCommand(newParseCmd(opts))
	rootCmd.AddCommand(newImportCmd(opts))
	rootCmd.AddCommand(newCasesCmd(opts))

	return rootCmd
}

// setupLogging sends logs to w. Without verbose only warnings and errors
// are shown so they do not interleave with command output.
func setupLogging(w io.Writer, verbose bool) error {
	var logCfg config.LoggingConfig
	if err := config.LoadSection(&logCfg); err != nil {
		return err
	}
	level := "warn"
	if verbose {
		level = logCfg.Level
	}
	logging.Setup(w, level, logCfg.Format)
	return nil
}

// newService builds a service talking to the configured tracker.
func (o *options) newService() (*core.Service, error) {
	var trk config.TrackerConfig
	if err := config.LoadSection(&trk); err != nil {
		return nil, err
	}
	if o.trackerURL != "" {
		trk.BaseURL = o.trackerURL
	}
	if trk.BaseURL == "" {
		return nil, fmt.Errorf("tracker URL not set: use --tracker-url or TRACKER_BASE_URL")
	}

	client, err := tracker.New(trk.BaseURL, tracker.WithTimeout(trk.Timeout))
	if err != nil {
		return nil, err
	}
	return core.NewService(client, nil), nil
}

// readInput reads the named file, or stdin when args is empty or "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if len(data) > maxInputBytes {
		return "", fmt.Errorf("input exceeds %d bytes", maxInputBytes)
	}
	return string(data), nil
}

// warn prints a non-fatal condition in the user-facing format.
func warn(w io.Writer, err error) {
	warningColor.Fprintln(w, "Warning: "+core.FormatUserError(err))
}
