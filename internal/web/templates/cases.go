package templates

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/casedesk/internal/core"
)

// Case list view modes.
const (
	ViewList  = "list"
	ViewCards = "cards"
)

// IndexParams holds the data of the main page.
type IndexParams struct {
	ParentID string
	List     *core.CaseList // nil until a parent is loaded
	View     string
	Editing  *core.TestCase
	Staged   templ.Component // preview of rows processed but not yet sent to the grid
}

// IndexPage is the parent search, case list and bulk import page.
func IndexPage(p IndexParams) templ.Component {
	body := component(func(h *htmlWriter) {
		h.raw(`<section class="search"><form hx-get="/api/parents" hx-target="#case-list">`)
		h.raw(`<label for="parent">Parent requirement</label>`)
		h.raw(`<input id="parent" name="parent" placeholder="PROJ-123" pattern="[A-Z]+-[0-9]+"`)
		h.attr("value", p.ParentID)
		h.raw(`><button type="submit">Search</button></form></section>`)

		h.raw(`<section id="case-list">`)
		if p.List != nil {
			h.component(CaseList(*p.List, p.View))
		}
		h.raw(`</section>`)

		h.raw(`<section id="case-form">`)
		h.component(CaseForm(p.Editing))
		h.raw(`</section>`)

		h.component(ImportSection("/api/import/preview", p.Staged))
	})
	return Layout("Test cases", NavImport, body)
}

// CaseList renders the cases of one parent as a table or as cards.
func CaseList(list core.CaseList, view string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<header class="parent"><h2>`)
		h.text(list.IssuePai)
		if list.Requisito.Titulo != "" {
			h.raw(" &middot; ")
			h.text(list.Requisito.Titulo)
		}
		h.raw(`</h2><span class="count">`)
		h.int(list.TotalCasos)
		h.raw(` cases</span>`)
		h.raw(`<div class="view-toggle">`)
		for _, v := range []string{ViewList, ViewCards} {
			h.raw("<a")
			h.attr("hx-get", "/api/parents/"+list.IssuePai+"/cases?view="+v)
			h.attr("hx-target", "#case-list")
			if v == view {
				h.raw(` class="active"`)
			}
			h.raw(">")
			h.text(v)
			h.raw("</a>")
		}
		h.raw(`</div><a class="download"`)
		h.attr("href", "/api/parents/"+list.IssuePai+"/export")
		h.raw(`>Download spreadsheet</a></header>`)

		if len(list.CasosTeste) == 0 {
			h.raw(`<p class="empty">No test cases under this requirement yet.</p>`)
			return
		}

		if view == ViewCards {
			h.raw(`<div class="cards">`)
			for _, tc := range list.CasosTeste {
				h.component(CaseCard(tc))
			}
			h.raw(`</div>`)
			return
		}

		h.raw(`<table class="cases"><thead><tr><th>Key</th><th>Title</th><th>Status</th>`)
		h.raw(`<th>Execution</th><th>Type</th><th>Components</th><th></th></tr></thead><tbody>`)
		for _, tc := range list.CasosTeste {
			h.raw("<tr")
			h.attr("id", "case-"+tc.ID)
			h.raw("><td>")
			h.text(tc.ID)
			h.raw("</td><td>")
			h.text(tc.Titulo)
			h.raw("</td><td>")
			h.text(string(tc.Status))
			h.raw("</td><td>")
			h.text(string(tc.TipoExecucao))
			h.raw("</td><td>")
			h.text(string(tc.TipoTeste))
			h.raw("</td><td>")
			h.text(tc.Componentes.String())
			h.raw(`</td><td class="actions">`)
			caseActions(h, tc.ID)
			h.raw("</td></tr>")
		}
		h.raw(`</tbody></table>`)
	})
}

func caseActions(h *htmlWriter, key string) {
	h.raw("<button")
	h.attr("hx-get", "/api/cases/"+key+"/edit")
	h.attr("hx-target", "#case-form")
	h.raw(">Edit</button><button")
	h.attr("hx-delete", "/api/cases/"+key)
	h.attr("hx-target", "#case-"+key)
	h.attr("hx-swap", "outerHTML")
	h.attr("hx-confirm", "Delete "+key+"?")
	h.raw(">Delete</button>")
}

// CaseCard renders one case with its description split into BDD steps.
func CaseCard(tc core.TestCase) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<article class="card"`)
		h.attr("id", "case-"+tc.ID)
		h.raw(`><header><span class="key">`)
		h.text(tc.ID)
		h.raw(`</span><span`)
		h.attr("class", "status "+statusClass(tc.Status))
		h.raw(">")
		h.text(string(tc.Status))
		h.raw(`</span></header><h3>`)
		h.text(tc.Titulo)
		h.raw(`</h3><p class="meta">`)
		h.text(string(tc.TipoExecucao))
		h.raw(" &middot; ")
		h.text(string(tc.TipoTeste))
		h.raw(" &middot; ")
		h.text(tc.Componentes.First("General"))
		h.raw("</p>")
		if tc.Objetivo != "" {
			h.raw(`<p class="objective">`)
			h.text(tc.Objetivo)
			h.raw("</p>")
		}
		if tc.PreCondicoes != "" {
			h.raw(`<p class="preconditions">`)
			h.text(tc.PreCondicoes)
			h.raw("</p>")
		}
		h.component(BDDSteps(core.SplitBDD(tc.Descricao)))
		h.raw(`<footer class="actions">`)
		caseActions(h, tc.ID)
		h.raw(`</footer></article>`)
	})
}

// BDDSteps renders description lines, highlighting Given/When/Then/And.
func BDDSteps(steps []core.BDDStep) templ.Component {
	return component(func(h *htmlWriter) {
		if len(steps) == 0 {
			return
		}
		h.raw(`<ol class="bdd">`)
		for _, st := range steps {
			h.raw("<li")
			if st.Keyword != core.BDDPlain {
				h.attr("class", "bdd-"+string(st.Keyword))
			}
			h.raw(">")
			h.text(st.Text)
			h.raw("</li>")
		}
		h.raw(`</ol>`)
	})
}

func statusClass(s core.Status) string {
	return strings.ReplaceAll(strings.ToLower(string(s)), " ", "-")
}

// CaseForm renders the create form, or the edit form when tc is set.
func CaseForm(tc *core.TestCase) templ.Component {
	return component(func(h *htmlWriter) {
		var rec core.TestCaseRecord
		h.raw("<form")
		if tc != nil {
			rec = tc.TestCaseRecord
			h.attr("hx-put", "/api/cases/"+tc.ID)
		} else {
			rec = core.TestCaseRecord{Status: core.StatusToDo, TipoExecucao: core.ExecutionManual, TipoTeste: core.TestFunctional}
			h.attr("hx-post", "/api/cases")
		}
		h.raw(` hx-target="#toasts" hx-swap="afterbegin" class="case-form"><h2>`)
		if tc != nil {
			h.raw("Edit ")
			h.text(tc.ID)
		} else {
			h.raw("New test case")
		}
		h.raw("</h2>")

		textInput(h, core.FieldTitulo, "Title", rec.Titulo, true)
		selectInput(h, core.FieldStatus, "Status", string(rec.Status), enumStrings(core.Statuses))
		selectInput(h, core.FieldTipoExecucao, "Execution", string(rec.TipoExecucao), enumStrings(core.ExecutionTypes))
		selectInput(h, core.FieldTipoTeste, "Type", string(rec.TipoTeste), enumStrings(core.TestTypes))
		textInput(h, core.FieldComponentes, "Components", rec.Componentes.String(), false)
		textArea(h, core.FieldObjetivo, "Objective", rec.Objetivo, false)
		textArea(h, core.FieldPreCondicoes, "Preconditions", rec.PreCondicoes, false)
		textArea(h, core.FieldDescricao, "Description (Given / When / Then)", rec.Descricao, true)

		h.raw(`<button type="submit">Save</button></form>`)
	})
}

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func label(h *htmlWriter, name, text string) {
	h.raw("<label")
	h.attr("for", name)
	h.raw(">")
	h.text(text)
	h.raw("</label>")
}

func textInput(h *htmlWriter, name, text, value string, required bool) {
	label(h, name, text)
	h.raw("<input")
	h.attr("id", name)
	h.attr("name", name)
	h.attr("value", value)
	if required {
		h.raw(" required")
	}
	h.raw(">")
}

func textArea(h *htmlWriter, name, text, value string, required bool) {
	label(h, name, text)
	h.raw("<textarea")
	h.attr("id", name)
	h.attr("name", name)
	if required {
		h.raw(" required")
	}
	h.raw(">")
	h.text(value)
	h.raw("</textarea>")
}

func selectInput(h *htmlWriter, name, text, current string, options []string) {
	label(h, name, text)
	h.raw("<select")
	h.attr("id", name)
	h.attr("name", name)
	h.raw(">")
	for _, o := range options {
		h.option(o, current)
	}
	h.raw("</select>")
}
