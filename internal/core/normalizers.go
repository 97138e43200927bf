package core

import "strings"

// Keyword lists are matched as case-insensitive substrings; the first
// list that matches wins.
var (
	statusKeywords = []struct {
		status   Status
		keywords []string
	}{
		{StatusToDo, []string{"to do", "todo", "pendente"}},
		{StatusInProgress, []string{"in progress", "em andamento", "progresso"}},
		{StatusDone, []string{"done", "concluído", "concluido", "finalizado"}},
	}

	automatedKeywords = []string{"automated", "automatizado", "automático", "automatizável", "automatizavel"}

	// Non-Functional is checked before Functional since "non-functional"
	// contains "functional".
	testTypeKeywords = []struct {
		testType TestType
		keywords []string
	}{
		{TestNonFunctional, []string{"non-functional", "não funcional", "nao funcional"}},
		{TestFunctional, []string{"functional", "funcional"}},
		{TestIntegration, []string{"integration", "integração", "integracao"}},
		{TestUnit, []string{"unit", "unitário", "unitario"}},
	}
)

// MapStatus converts free text to a Status. Defaults to To Do.
func MapStatus(s string) Status {
	lower := strings.ToLower(s)
	for _, entry := range statusKeywords {
		if containsAny(lower, entry.keywords) {
			return entry.status
		}
	}
	return StatusToDo
}

// MapExecutionType converts free text to an ExecutionType. Defaults to Manual.
func MapExecutionType(s string) ExecutionType {
	if containsAny(strings.ToLower(s), automatedKeywords) {
		return ExecutionAutomated
	}
	return ExecutionManual
}

// MapTestType converts free text to a TestType. Defaults to Functional.
func MapTestType(s string) TestType {
	lower := strings.ToLower(s)
	for _, entry := range testTypeKeywords {
		if containsAny(lower, entry.keywords) {
			return entry.testType
		}
	}
	return TestFunctional
}

// trackerStatuses maps exact tracker workflow names to the edit form's statuses.
var trackerStatuses = map[string]Status{
	"para ajustar":       StatusToDo,
	"to do":              StatusToDo,
	"open":               StatusToDo,
	"em progresso":       StatusInProgress,
	"in progress":        StatusInProgress,
	"em desenvolvimento": StatusInProgress,
	"concluído":          StatusDone,
	"concluída":          StatusDone,
	"done":               StatusDone,
	"resolved":           StatusDone,
}

// FormStatus maps a tracker workflow status name to the status shown in the
// edit form. Unknown names fall back to To Do.
func FormStatus(trackerStatus string) Status {
	if st, ok := trackerStatuses[strings.ToLower(strings.TrimSpace(trackerStatus))]; ok {
		return st
	}
	return StatusToDo
}

// NormalizeRecord trims text fields and coerces the enum fields to valid members.
// Values that are already valid members are kept as-is.
func NormalizeRecord(rec TestCaseRecord) TestCaseRecord {
	rec.Titulo = strings.TrimSpace(rec.Titulo)
	rec.Objetivo = strings.TrimSpace(rec.Objetivo)
	rec.PreCondicoes = strings.TrimSpace(rec.PreCondicoes)
	rec.Descricao = strings.TrimSpace(rec.Descricao)

	if !isStatus(rec.Status) {
		rec.Status = MapStatus(string(rec.Status))
	}
	if !isExecutionType(rec.TipoExecucao) {
		rec.TipoExecucao = MapExecutionType(string(rec.TipoExecucao))
	}
	if !isTestType(rec.TipoTeste) {
		rec.TipoTeste = MapTestType(string(rec.TipoTeste))
	}

	comps := make(Components, 0, len(rec.Componentes))
	for _, c := range rec.Componentes {
		if c = strings.TrimSpace(c); c != "" {
			comps = append(comps, c)
		}
	}
	rec.Componentes = comps

	return rec
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func isStatus(s Status) bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

func isExecutionType(e ExecutionType) bool {
	for _, v := range ExecutionTypes {
		if e == v {
			return true
		}
	}
	return false
}

func isTestType(t TestType) bool {
	for _, v := range TestTypes {
		if t == v {
			return true
		}
	}
	return false
}
