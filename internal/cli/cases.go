package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/casedesk/internal/core"
)

func newCasesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cases KEY",
		Short: "List the test cases under a parent requirement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), importTimeout)
			defer cancel()

			list, err := svc.LoadParent(ctx, core.NewWorkspace("casectl"), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
			}

			if opts.output == OutputTable {
				renderCaseList(cmd.OutOrStdout(), list)
				return nil
			}
			return encode(cmd.OutOrStdout(), opts.output, list)
		},
	}
}
