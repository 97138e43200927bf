package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/casedesk/internal/core"
)

// tableWidth is the width of the rules drawn around tables.
const tableWidth = 110

// encode writes v as JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// renderRecordsTable prints parsed records the way the import preview shows them.
func renderRecordsTable(w io.Writer, res core.PasteResult) {
	headerColor.Fprintln(w, "PARSED TEST CASES")
	headerColor.Fprintln(w, strings.Repeat("=", tableWidth))
	fmt.Fprintf(w, "%-4s %-30s %-12s %-10s %-15s %-12s %s\n",
		"#", "Title", "Status", "Execution", "Type", "Components", "Description")
	fmt.Fprintln(w, strings.Repeat("-", tableWidth))

	for _, row := range core.BuildPreview(res.Records, 20) {
		fmt.Fprintf(w, "%-4d %-30s %-12s %-10s %-15s %-12s %s\n",
			row.Index, core.Truncate(row.Titulo, 27), row.Status, row.TipoExecucao,
			row.TipoTeste, core.Truncate(row.Componentes, 9), row.Descricao)
	}

	fmt.Fprintln(w, strings.Repeat("=", tableWidth))
	infoColor.Fprintf(w, "%d rows ready (delimiter: %s", len(res.Records), res.DelimiterName())
	if res.HeaderSkipped {
		infoColor.Fprint(w, ", header skipped")
	}
	if res.Dropped > 0 {
		infoColor.Fprintf(w, ", %d without title dropped", res.Dropped)
	}
	infoColor.Fprintln(w, ")")
}

// renderCaseList prints the cases under a parent requirement.
func renderCaseList(w io.Writer, list core.CaseList) {
	title := list.IssuePai
	if list.Requisito.Titulo != "" {
		title += " " + list.Requisito.Titulo
	}
	headerColor.Fprintln(w, title)
	headerColor.Fprintln(w, strings.Repeat("=", tableWidth))

	if len(list.CasosTeste) == 0 {
		warningColor.Fprintln(w, "No test cases under this requirement")
		return
	}

	fmt.Fprintf(w, "%-12s %-40s %-14s %-10s %s\n", "Key", "Title", "Status", "Execution", "Type")
	fmt.Fprintln(w, strings.Repeat("-", tableWidth))
	for _, tc := range list.CasosTeste {
		fmt.Fprintf(w, "%-12s %-40s %-14s %-10s %s\n",
			tc.ID, core.Truncate(tc.Titulo, 37), string(tc.Status), string(tc.TipoExecucao), string(tc.TipoTeste))
	}
	fmt.Fprintln(w, strings.Repeat("=", tableWidth))
	infoColor.Fprintf(w, "%d test cases\n", list.TotalCasos)
}
