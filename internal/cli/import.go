package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/casedesk/internal/core"
)

// importTimeout bounds a whole import run.
const importTimeout = 10 * time.Minute

// importItem is the outcome of creating one parsed row.
type importItem struct {
	Titulo string `json:"titulo" yaml:"titulo"`
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Erro   string `json:"erro,omitempty" yaml:"erro,omitempty"`
	Code   string `json:"code,omitempty" yaml:"code,omitempty"`
}

// importSummary is the structured result of the import command.
type importSummary struct {
	IssuePai   string       `json:"issue_pai" yaml:"issue_pai"`
	Total      int          `json:"total" yaml:"total"`
	Sucessos   int          `json:"sucessos" yaml:"sucessos"`
	Erros      int          `json:"erros" yaml:"erros"`
	Resultados []importItem `json:"resultados" yaml:"resultados"`
}

func newImportCmd(opts *options) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "import --parent KEY [file]",
		Short: "Parse pasted rows and create them under a parent requirement",
		Long: `Parse spreadsheet rows like "parse" does, then create every row as a test
case under the parent requirement. Rows that fail validation are reported and
skipped; the command exits non-zero when any row failed.`,
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

			svc, err := opts.newService()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), importTimeout)
			defer cancel()

			summary, err := runImport(ctx, svc, parent, res.Records, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if opts.output == OutputTable {
				renderImportSummary(cmd.OutOrStdout(), summary)
			} else if err := encode(cmd.OutOrStdout(), opts.output, summary); err != nil {
				return err
			}

			if summary.Erros > 0 {
				return fmt.Errorf("%d of %d cases failed", summary.Erros, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Parent requirement key, e.g. QA-1")
	_ = cmd.MarkFlagRequired("parent")
	return cmd
}

// runImport selects parent and creates records one by one. Validation and
// tracker errors on one row do not stop the rest.
func runImport(ctx context.Context, svc *core.Service, parent string, records []core.TestCaseRecord, progress io.Writer) (importSummary, error) {
	ws := core.NewWorkspace("casectl")
	list, err := svc.LoadParent(ctx, ws, parent)
	if err != nil {
		return importSummary{}, fmt.Errorf("%s: %w", core.FormatUserError(err), err)
	}

	summary := importSummary{
		IssuePai:   list.IssuePai,
		Total:      len(records),
		Resultados: make([]importItem, 0, len(records)),
	}

	bar := newProgressBar(len(records), progress)
	for _, rec := range records {
		item := importItem{Titulo: rec.Titulo}
		res, err := svc.CreateCase(ctx, ws, rec)
		if err != nil {
			msg := core.MapError(err)
			item.Erro = err.Error()
			item.Code = msg.Code
			summary.Erros++
		} else {
			item.ID = res.ID
			summary.Sucessos++
		}
		summary.Resultados = append(summary.Resultados, item)
		updateProgressBar(bar, summary.Sucessos, summary.Erros)
	}
	_ = bar.Finish()

	return summary, nil
}

func newProgressBar(count int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(count,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(progressDescription(0, 0)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(!color.NoColor),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func updateProgressBar(bar *progressbar.ProgressBar, successCount, failCount int) {
	_ = bar.Set(successCount + failCount)
	bar.Describe(progressDescription(successCount, failCount))
}

func progressDescription(successCount, failCount int) string {
	return color.CyanString("Creating cases: ") +
		color.GreenString("[created: %d", successCount) +
		" | " +
		color.RedString("failed: %d]", failCount)
}

func renderImportSummary(w io.Writer, s importSummary) {
	for _, item := range s.Resultados {
		if item.ID != "" {
			successColor.Fprintf(w, "  ✓ %-12s %s\n", item.ID, item.Titulo)
			continue
		}
		errorColor.Fprintf(w, "  ✗ %-12s %s\n", item.Code, item.Titulo)
		fmt.Fprintf(w, "      %s\n", item.Erro)
	}

	if s.Erros == 0 {
		successColor.Fprintf(w, "%d of %d cases created under %s\n", s.Sucessos, s.Total, s.IssuePai)
		return
	}
	warningColor.Fprintf(w, "%d of %d cases created under %s\n", s.Sucessos, s.Total, s.IssuePai)
}
