// Package core provides the business logic for test-case management.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Status is the workflow state of a test case.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// ExecutionType says how a test case is run.
type ExecutionType string

const (
	ExecutionManual    ExecutionType = "Manual"
	ExecutionAutomated ExecutionType = "Automated"
)

// TestType classifies what a test case exercises.
type TestType string

const (
	TestFunctional    TestType = "Functional"
	TestNonFunctional TestType = "Non-Functional"
	TestIntegration   TestType = "Integration"
	TestUnit          TestType = "Unit"
)

// Statuses, ExecutionTypes and TestTypes list the valid enum members in display order.
var (
	Statuses       = []Status{StatusToDo, StatusInProgress, StatusDone}
	ExecutionTypes = []ExecutionType{ExecutionManual, ExecutionAutomated}
	TestTypes      = []TestType{TestFunctional, TestNonFunctional, TestIntegration, TestUnit}
)

// Components holds the component names of a test case.
// It decodes from either a JSON string or a JSON array of strings.
type Components []string

// UnmarshalJSON accepts "API" as well as ["API", "Frontend"].
func (c *Components) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*c = ComponentsFromText(one)
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*c = Components(many)
	return nil
}

// String joins the components for display.
func (c Components) String() string {
	return strings.Join(c, ", ")
}

// First returns the first component or fallback when there is none.
func (c Components) First(fallback string) string {
	if len(c) == 0 || strings.TrimSpace(c[0]) == "" {
		return fallback
	}
	return c[0]
}

// ComponentsFromText wraps free text as a single component.
// Blank text yields an empty list.
func ComponentsFromText(s string) Components {
	s = strings.TrimSpace(s)
	if s == "" {
		return Components{}
	}
	return Components{s}
}

// TestCaseRecord is the editable shape of a test case.
// It is produced by the paste parser and consumed by the tracker API.
type TestCaseRecord struct {
	Titulo       string        `json:"titulo" yaml:"titulo" validate:"required"`
	Status       Status        `json:"status" yaml:"status" validate:"oneof='To Do' 'In Progress' 'Done'"`
	TipoExecucao ExecutionType `json:"tipo_execucao" yaml:"tipo_execucao" validate:"oneof=Manual Automated"`
	TipoTeste    TestType      `json:"tipo_teste" yaml:"tipo_teste" validate:"oneof=Functional Non-Functional Integration Unit"`
	Componentes  Components    `json:"componentes" yaml:"componentes"`
	Objetivo     string        `json:"objetivo" yaml:"objetivo"`
	PreCondicoes string        `json:"pre_condicoes" yaml:"pre_condicoes"`
	Descricao    string        `json:"descricao" yaml:"descricao" validate:"required"`
}

// TestCase is a persisted test case as returned by the tracker.
type TestCase struct {
	ID string `json:"id"`
	TestCaseRecord
	TipoIssue    string `json:"tipo_issue,omitempty"`
	CriadoEm     string `json:"criado_em,omitempty"`
	AtualizadoEm string `json:"atualizado_em,omitempty"`
}

// Requirement is the parent issue that groups test cases.
type Requirement struct {
	ID        string `json:"id"`
	Titulo    string `json:"titulo"`
	Status    string `json:"status,omitempty"`
	Descricao string `json:"descricao,omitempty"`
}

// CaseList is the set of test cases under one parent requirement.
type CaseList struct {
	IssuePai   string      `json:"issue_pai"`
	Requisito  Requirement `json:"requisito"`
	TotalCasos int         `json:"total_casos"`
	CasosTeste []TestCase  `json:"casos_teste"`
}

// SaveRequest is the body sent when creating or updating a single case.
type SaveRequest struct {
	IssuePai string `json:"issue_pai,omitempty"`
	TestCaseRecord
}

// ExportRequest is the body of a bulk export of grid rows.
type ExportRequest struct {
	IssuePai string           `json:"issue_pai"`
	Casos    []TestCaseRecord `json:"casos"`
}

// ExportItem is the outcome of exporting one row.
type ExportItem struct {
	Titulo    string `json:"titulo"`
	JiraID    string `json:"jira_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
	Erro      string `json:"erro,omitempty"`
}

// Succeeded reports whether the tracker assigned an id to the row.
func (e ExportItem) Succeeded() bool {
	return e.JiraID != ""
}

// ExportResult summarizes a bulk export.
type ExportResult struct {
	Sucesso    bool         `json:"sucesso"`
	Mensagem   string       `json:"mensagem,omitempty"`
	Sucessos   int          `json:"sucessos"`
	Erros      int          `json:"erros"`
	Total      int          `json:"total"`
	Resultados []ExportItem `json:"resultados"`
}

// MutationResult is the acknowledgement returned by create, update and delete.
type MutationResult struct {
	Sucesso  bool   `json:"sucesso"`
	Mensagem string `json:"mensagem"`
	ID       string `json:"id,omitempty"`
}

// EvidenceStats counts extracted screenshots by outcome.
type EvidenceStats struct {
	Sucessos   int  `json:"sucessos"`
	Falhas     int  `json:"falhas"`
	Enviados   int  `json:"enviados,omitempty"`
	Total      int  `json:"total"`
	Processado bool `json:"processado"`
}

// Evidence is one extracted screenshot artifact.
type Evidence struct {
	Nome      string `json:"nome"`
	Arquivo   string `json:"arquivo"`
	Status    string `json:"status"`
	Diretorio string `json:"diretorio"`
}

// EvidenceUploadResult is returned after an HTML log has been processed.
type EvidenceUploadResult struct {
	Sucesso         bool          `json:"sucesso"`
	Mensagem        string        `json:"mensagem,omitempty"`
	Estatisticas    EvidenceStats `json:"estatisticas"`
	NomesEvidencias []string      `json:"nomes_evidencias,omitempty"`
}

// EvidenceSendResult is returned after evidence was attached to issues.
type EvidenceSendResult struct {
	Sucesso          bool     `json:"sucesso"`
	Mensagem         string   `json:"mensagem,omitempty"`
	Enviados         int      `json:"enviados"`
	TotalProcessados int      `json:"total_processados"`
	Issues           []string `json:"issues_processadas,omitempty"`
}

var issueKeyPattern = regexp.MustCompile(`^[A-Z]+-\d+$`)

// ValidIssueKey reports whether key looks like PROJ-123.
func ValidIssueKey(key string) bool {
	return issueKeyPattern.MatchString(key)
}
