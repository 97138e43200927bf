package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/casedesk/internal/core"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func sampleList() core.CaseList {
	return core.CaseList{
		IssuePai:   "QA-10",
		Requisito:  core.Requirement{ID: "QA-10", Titulo: "Login"},
		TotalCasos: 1,
		CasosTeste: []core.TestCase{{
			ID: "QA-11",
			TestCaseRecord: core.TestCaseRecord{
				Titulo:       "Valid <login>",
				Status:       core.StatusInProgress,
				TipoExecucao: core.ExecutionManual,
				TipoTeste:    core.TestFunctional,
				Componentes:  core.Components{"Auth"},
				Descricao:    "Given a user\nWhen they log in\nThen they see home\nsome note",
			},
		}},
	}
}

func TestCaseList_TableEscapesText(t *testing.T) {
	out := render(t, CaseList(sampleList(), ViewList))

	assert.Contains(t, out, `<table class="cases">`)
	assert.Contains(t, out, "Valid &lt;login&gt;")
	assert.NotContains(t, out, "<login>")
	assert.Contains(t, out, `href="/api/parents/QA-10/export"`)
	assert.Contains(t, out, `hx-get="/api/cases/QA-11/edit"`)
}

func TestCaseList_Cards(t *testing.T) {
	out := render(t, CaseList(sampleList(), ViewCards))

	assert.Contains(t, out, `<article class="card" id="case-QA-11">`)
	assert.Contains(t, out, `class="status in-progress"`)
	assert.Contains(t, out, `<li class="bdd-given">Given a user</li>`)
	assert.Contains(t, out, `<li class="bdd-then">Then they see home</li>`)
	assert.Contains(t, out, `<li>some note</li>`)
}

func TestCaseList_Empty(t *testing.T) {
	list := core.CaseList{IssuePai: "QA-1"}
	out := render(t, CaseList(list, ViewList))
	assert.Contains(t, out, "No test cases under this requirement yet.")
}

func TestCaseForm(t *testing.T) {
	create := render(t, CaseForm(nil))
	assert.Contains(t, create, `hx-post="/api/cases"`)
	assert.Contains(t, create, `<option value="To Do" selected>To Do</option>`)

	tc := sampleList().CasosTeste[0]
	edit := render(t, CaseForm(&tc))
	assert.Contains(t, edit, `hx-put="/api/cases/QA-11"`)
	assert.Contains(t, edit, `<option value="In Progress" selected>In Progress</option>`)
	assert.Contains(t, edit, `value="Auth"`)
}

func TestImportPreview(t *testing.T) {
	res := core.PasteResult{Delimiter: ',', HeaderSkipped: true, Dropped: 2}
	rows := core.BuildPreview([]core.TestCaseRecord{{Titulo: "A", Descricao: "x"}}, 0)

	out := render(t, ImportPreview(res, rows))
	assert.Contains(t, out, "1 rows ready")
	assert.Contains(t, out, "delimiter: comma")
	assert.Contains(t, out, "header skipped")
	assert.Contains(t, out, "2 without title dropped")
}

func TestGridRows(t *testing.T) {
	out := render(t, GridRows([]core.TestCaseRecord{{Titulo: `say "hi"`, Componentes: core.Components{"API"}}}))
	assert.Contains(t, out, `name="titulo" value="say &#34;hi&#34;"`)
	assert.Contains(t, out, `name="componentes" value="API"`)
}

func TestExportSummary(t *testing.T) {
	res := core.ExportResult{
		Sucessos: 1, Erros: 1, Total: 2,
		Resultados: []core.ExportItem{
			{Titulo: "ok", JiraID: "QA-5"},
			{Titulo: "bad", Erro: "missing description"},
		},
	}
	out := render(t, ExportSummary(res))
	assert.Contains(t, out, "1 of 2 cases exported")
	assert.Contains(t, out, "<li>bad: missing description</li>")
	assert.NotContains(t, out, "<li>ok")
}

func TestEvidenceComponents(t *testing.T) {
	assert.Contains(t, render(t, EvidenceStatus(core.EvidenceStats{})), "No log processed yet.")

	out := render(t, EvidenceStatus(core.EvidenceStats{Processado: true, Total: 3, Sucessos: 2, Falhas: 1}))
	assert.Contains(t, out, "<dt>Failed</dt><dd>1</dd>")

	list := render(t, EvidenceList([]core.Evidence{{Nome: "QA-1_login", Arquivo: "QA-1_login.png", Status: "sucesso"}}))
	assert.Contains(t, list, `class="status-sucesso"`)
}

func TestLayout_MarksActiveNav(t *testing.T) {
	out := render(t, GridPage("QA-1", nil))
	assert.Contains(t, out, `<a href="/planilha-manual" class="active">Manual grid</a>`)
	assert.Contains(t, out, "<title>Manual grid | casedesk</title>")
	assert.Contains(t, out, `value="QA-1"`)
}

func TestAlerts(t *testing.T) {
	out := render(t, ErrorAlert("Broke", "Retry", "ERR000"))
	assert.Contains(t, out, `class="alert alert-error"`)
	assert.Contains(t, out, `<small class="code">ERR000</small>`)

	ok := render(t, SuccessToast("Saved"))
	assert.NotContains(t, ok, "<p>")
}
