package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/casedesk/internal/core"
)

const pasted = "Título\tStatus\tTipo Execução\tTipo Teste\tComponentes\tObjetivo\tPré-condições\tDescrição\n" +
	"Login\tTo Do\tManual\tFunctional\tAuth\tEntrar\tConta ativa\tGiven a user\n" +
	"Logout\tDone\tAutomatizado\tIntegração\t\t\t\tGiven a session\n"

// execute runs casectl with args and stdin, returning stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// fakeTracker serves the tracker endpoints casectl uses.
type fakeTracker struct {
	mu      sync.Mutex
	created []core.SaveRequest
}

func (f *fakeTracker) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/casos-teste/{parent}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("parent") != "QA-1" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"erro": "issue not found"})
			return
		}
		json.NewEncoder(w).Encode(core.CaseList{
			IssuePai:   "QA-1",
			Requisito:  core.Requirement{ID: "QA-1", Titulo: "Checkout"},
			TotalCasos: 1,
			CasosTeste: []core.TestCase{{ID: "QA-2", TestCaseRecord: core.TestCaseRecord{
				Titulo: "Pay by card", Status: core.StatusDone,
				TipoExecucao: core.ExecutionManual, TipoTeste: core.TestFunctional,
			}}},
		})
	})
	mux.HandleFunc("POST /api/caso-teste", func(w http.ResponseWriter, r *http.Request) {
		var req core.SaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.created = append(f.created, req)
		id := len(f.created) + 9
		f.mu.Unlock()
		json.NewEncoder(w).Encode(core.MutationResult{Sucesso: true, ID: fmt.Sprintf("QA-%d", id)})
	})
	return mux
}

func newFakeTracker(t *testing.T) (*fakeTracker, string) {
	t.Helper()
	f := &fakeTracker{}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func TestParse_TableFromStdin(t *testing.T) {
	stdout, stderr, err := execute(t, pasted, "parse")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	assert.Contains(t, stdout, "PARSED TEST CASES")
	assert.Contains(t, stdout, "Login")
	assert.Contains(t, stdout, "Logout")
	assert.Contains(t, stdout, "2 rows ready (delimiter: tab, header skipped)")
}

func TestParse_JSONFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paste.csv")
	require.NoError(t, os.WriteFile(path, []byte("Login,Done,Automated,Unit,API,,,Given a user\n,To Do\n"), 0o600))

	stdout, _, err := execute(t, "", "parse", "--output", "json", path)
	require.NoError(t, err)

	var out parseOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Len(t, out.Records, 1)
	assert.Equal(t, "comma", out.Delimiter)
	assert.Equal(t, 1, out.Dropped)
	assert.Equal(t, "Login", out.Records[0].Titulo)
	assert.Equal(t, core.ExecutionAutomated, out.Records[0].TipoExecucao)
	assert.Equal(t, core.TestUnit, out.Records[0].TipoTeste)
	assert.Equal(t, core.Components{"API"}, out.Records[0].Componentes)
}

func TestParse_YAML(t *testing.T) {
	stdout, _, err := execute(t, pasted, "parse", "-o", "yaml")
	require.NoError(t, err)

	var out parseOutput
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &out))
	require.Len(t, out.Records, 2)
	assert.True(t, out.HeaderSkipped)
	assert.Equal(t, core.StatusDone, out.Records[1].Status)
}

func TestParse_WarningsExitZero(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"blank input", "   \n", "INP001"},
		{"header only", "Título\tStatus\tDescrição\n", "INP002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := execute(t, tt.input, "parse")
			require.NoError(t, err)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Warning:")
			assert.Contains(t, stderr, tt.code)
		})
	}
}

func TestParse_InvalidOutput(t *testing.T) {
	_, _, err := execute(t, pasted, "parse", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --output")
}

func TestParse_MissingFile(t *testing.T) {
	_, _, err := execute(t, "", "parse", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open input")
}

func TestImport_CreatesEveryRow(t *testing.T) {
	fake, url := newFakeTracker(t)

	stdout, stderr, err := execute(t, pasted, "import", "--tracker-url", url, "--parent", "QA-1")
	require.NoError(t, err)

	require.Len(t, fake.created, 2)
	assert.Equal(t, "QA-1", fake.created[0].IssuePai)
	assert.Equal(t, "Login", fake.created[0].Titulo)
	assert.Equal(t, core.StatusToDo, fake.created[0].Status)
	assert.Equal(t, "Logout", fake.created[1].Titulo)

	assert.Contains(t, stdout, "2 of 2 cases created under QA-1")
	assert.Contains(t, stderr, "Creating cases")
}

func TestImport_InvalidRowsAreReported(t *testing.T) {
	fake, url := newFakeTracker(t)
	in := "Login\tTo Do\tManual\tFunctional\t\t\t\tGiven a user\n" +
		"No description\tTo Do\n"

	stdout, _, err := execute(t, in, "import", "--tracker-url", url, "--parent", "QA-1", "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 cases failed")
	require.Len(t, fake.created, 1)

	var summary importSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Sucessos)
	assert.Equal(t, 1, summary.Erros)
	assert.Equal(t, "VAL001", summary.Resultados[1].Code)
	assert.Empty(t, summary.Resultados[1].ID)
}

func TestImport_UnknownParent(t *testing.T) {
	fake, url := newFakeTracker(t)

	_, _, err := execute(t, pasted, "import", "--tracker-url", url, "--parent", "QA-404")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Contains(t, err.Error(), "TRK002")
	assert.Empty(t, fake.created)
}

func TestImport_RequiresParentFlag(t *testing.T) {
	_, _, err := execute(t, pasted, "import", "--tracker-url", "http://127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parent")
}

func TestImport_WarningSkipsTracker(t *testing.T) {
	// No tracker URL: a warning must return before any tracker call.
	t.Setenv("TRACKER_BASE_URL", "")
	t.Setenv("API_BASE_URL", "")

	_, stderr, err := execute(t, "", "import", "--parent", "QA-1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "INP001")
}

func TestImport_NoTrackerURL(t *testing.T) {
	t.Setenv("TRACKER_BASE_URL", "")
	t.Setenv("API_BASE_URL", "")

	_, _, err := execute(t, pasted, "import", "--parent", "QA-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracker URL not set")
}

func TestCases_ListsParent(t *testing.T) {
	_, url := newFakeTracker(t)

	_, _, err := execute(t, "", "cases", "--tracker-url", url, "qa-1")
	require.ErrorIs(t, err, core.ErrInvalidIssueKey)

	stdout, _, err := execute(t, "", "cases", "--tracker-url", url, "QA-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "QA-1 Checkout")
	assert.Contains(t, stdout, "QA-2")
	assert.Contains(t, stdout, "Pay by card")
	assert.Contains(t, stdout, "1 test cases")
}

func TestCases_JSON(t *testing.T) {
	_, url := newFakeTracker(t)

	stdout, _, err := execute(t, "", "cases", "--tracker-url", url, "-o", "json", "QA-1")
	require.NoError(t, err)

	var list core.CaseList
	require.NoError(t, json.Unmarshal([]byte(stdout), &list))
	assert.Equal(t, "QA-1", list.IssuePai)
	require.Len(t, list.CasosTeste, 1)
	assert.Equal(t, "QA-2", list.CasosTeste[0].ID)
}
