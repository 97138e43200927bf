package templates

import (
	"github.com/a-h/templ"

	"github.com/JonMunkholm/casedesk/internal/core"
)

// ImportSection is the paste box of the bulk import. staged, when not nil,
// is shown as the current preview.
func ImportSection(previewURL string, staged templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section class="import"><h2>Bulk import</h2><form`)
		h.attr("hx-post", previewURL)
		h.raw(` hx-target="#import-preview">`)
		h.raw(`<textarea name="text" rows="8" placeholder="Paste rows copied from a spreadsheet"></textarea>`)
		h.raw(`<button type="submit">Process</button>`)
		h.raw(`<button type="button" hx-post="/api/import/clear" hx-target="#import-preview">Clear</button>`)
		h.raw(`</form><div id="import-preview">`)
		h.component(staged)
		h.raw(`</div></section>`)
	})
}

// ImportPreview renders the staged rows with long text truncated.
func ImportPreview(res core.PasteResult, rows []core.PreviewRow) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div class="preview-summary"><span>`)
		h.int(len(rows))
		h.raw(` rows ready</span><span>delimiter: `)
		h.text(res.DelimiterName())
		h.raw("</span>")
		if res.HeaderSkipped {
			h.raw(`<span>header skipped</span>`)
		}
		if res.Dropped > 0 {
			h.raw(`<span class="dropped">`)
			h.int(res.Dropped)
			h.raw(` without title dropped</span>`)
		}
		h.raw(`</div><table class="preview"><thead><tr><th>#</th><th>Title</th><th>Status</th>`)
		h.raw(`<th>Execution</th><th>Type</th><th>Components</th><th>Objective</th>`)
		h.raw(`<th>Preconditions</th><th>Description</th></tr></thead><tbody>`)
		for _, row := range rows {
			h.raw("<tr><td>")
			h.int(row.Index)
			for _, cell := range []string{
				row.Titulo, row.Status, row.TipoExecucao, row.TipoTeste,
				row.Componentes, row.Objetivo, row.PreCondicoes, row.Descricao,
			} {
				h.raw("</td><td>")
				h.text(cell)
			}
			h.raw("</td></tr>")
		}
		h.raw(`</tbody></table>`)
		h.raw(`<button hx-post="/api/import/fill" hx-target="#grid-body">Fill grid</button>`)
	})
}

// GridPage is the manual spreadsheet page: paste import plus the editable grid.
func GridPage(parentID string, staged templ.Component) templ.Component {
	body := component(func(h *htmlWriter) {
		h.raw(`<section class="grid-parent"><label for="issue_pai">Parent requirement</label>`)
		h.raw(`<input id="issue_pai" name="issue_pai" form="grid-form" placeholder="PROJ-123"`)
		h.attr("value", parentID)
		h.raw(`></section>`)
		h.component(ImportSection("/api/import/preview", staged))
		h.raw(`<form id="grid-form" hx-post="/api/import/export" hx-target="#toasts" hx-swap="afterbegin">`)
		h.raw(`<table class="grid"><thead><tr><th>Title</th><th>Status</th><th>Execution</th><th>Type</th>`)
		h.raw(`<th>Components</th><th>Objective</th><th>Preconditions</th><th>Description</th></tr></thead>`)
		h.raw(`<tbody id="grid-body"></tbody></table><button type="submit">Export to tracker</button></form>`)
	})
	return Layout("Manual grid", NavGrid, body)
}

// GridRows renders records as editable grid rows, replacing the grid body.
func GridRows(records []core.TestCaseRecord) templ.Component {
	return component(func(h *htmlWriter) {
		for _, rec := range records {
			h.raw("<tr>")
			for _, cell := range []struct{ name, value string }{
				{core.FieldTitulo, rec.Titulo},
				{core.FieldStatus, string(rec.Status)},
				{core.FieldTipoExecucao, string(rec.TipoExecucao)},
				{core.FieldTipoTeste, string(rec.TipoTeste)},
				{core.FieldComponentes, rec.Componentes.String()},
				{core.FieldObjetivo, rec.Objetivo},
				{core.FieldPreCondicoes, rec.PreCondicoes},
				{core.FieldDescricao, rec.Descricao},
			} {
				h.raw(`<td><input`)
				h.attr("name", cell.name)
				h.attr("value", cell.value)
				h.raw("></td>")
			}
			h.raw("</tr>")
		}
	})
}

// ExportSummary reports the outcome of a grid export row by row.
func ExportSummary(res core.ExportResult) templ.Component {
	return component(func(h *htmlWriter) {
		class := "toast toast-success"
		if res.Erros > 0 {
			class = "toast toast-warning"
		}
		h.raw("<div")
		h.attr("class", class)
		h.raw(` role="status"><strong>`)
		h.int(res.Sucessos)
		h.raw(" of ")
		h.int(res.Total)
		h.raw(" cases exported</strong>")
		if res.Erros > 0 {
			h.raw("<ul>")
			for _, item := range res.Resultados {
				if item.Succeeded() {
					continue
				}
				h.raw("<li>")
				h.text(item.Titulo)
				h.raw(": ")
				h.text(item.Erro)
				h.raw("</li>")
			}
			h.raw("</ul>")
		}
		h.raw("</div>")
	})
}
