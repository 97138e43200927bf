package cli

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/casedesk/internal/core"
)

// parseOutput is the structured form of the parse command's result.
type parseOutput struct {
	Records       []core.TestCaseRecord `json:"records" yaml:"records"`
	Delimiter     string                `json:"delimiter" yaml:"delimiter"`
	HeaderSkipped bool                  `json:"header_skipped" yaml:"header_skipped"`
	Rows          int                   `json:"rows" yaml:"rows"`
	Dropped       int                   `json:"dropped" yaml:"dropped"`
}

func newParseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse pasted spreadsheet rows without importing them",
		Long: `Parse comma- or tab-separated rows copied from a spreadsheet into test cases.

Reads from the file when given, otherwise from stdin. Empty input or input
without any titled row is reported as a warning and is not an error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			res, err := core.ParsePasted(text)
			if err != nil {
				if core.IsWarning(err) {
					warn(cmd.ErrOrStderr(), err)
					return nil
				}
				return err
			}

			if opts.output == OutputTable {
				renderRecordsTable(cmd.OutOrStdout(), res)
				return nil
			}
			return encode(cmd.OutOrStdout(), opts.output, parseOutput{
				Records:       res.Records,
				Delimiter:     res.DelimiterName(),
				HeaderSkipped: res.HeaderSkipped,
				Rows:          res.Rows,
				Dropped:       res.Dropped,
			})
		},
	}
}
