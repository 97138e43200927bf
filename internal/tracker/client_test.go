package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/casedesk/internal/core"
)

func newTestClient(t *testing.T, r http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadURLs(t *testing.T) {
	for _, raw := range []string{"", "ftp://host", "http://", "::nope"} {
		_, err := New(raw)
		assert.Error(t, err, "New(%q)", raw)
	}
}

func TestNew_HTTPClientOptions(t *testing.T) {
	c, err := New("http://tracker.local", WithHTTPClient(nil))
	require.NoError(t, err)
	require.NotNil(t, c.http)
	assert.Equal(t, DefaultTimeout, c.http.Timeout)

	shared := &http.Client{Timeout: time.Minute}
	c, err = New("http://tracker.local", WithHTTPClient(shared), WithTimeout(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.http.Timeout)
	assert.Equal(t, time.Minute, shared.Timeout)
}

func TestClient_ListCases(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/casos-teste/{pai}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PROJ-1", chi.URLParam(r, "pai"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"issue_pai": "PROJ-1",
			"requisito": {"id": "PROJ-1", "titulo": "Login"},
			"total_casos": 1,
			"casos_teste": [{"id": "PROJ-2", "titulo": "Valid login", "componentes": ["API"], "status": "To Do"}]
		}`)
	})

	list, err := newTestClient(t, r).ListCases(context.Background(), "PROJ-1")
	require.NoError(t, err)
	assert.Equal(t, "Login", list.Requisito.Titulo)
	require.Len(t, list.CasosTeste, 1)
	assert.Equal(t, core.Components{"API"}, list.CasosTeste[0].Componentes)
}

func TestClient_NotFound(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/caso-teste/{key}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"erro": "Caso de teste não encontrado"}`)
	})

	_, err := newTestClient(t, r).GetCase(context.Background(), "PROJ-9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.False(t, errors.Is(err, core.ErrTrackerRejected))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Caso de teste não encontrado", apiErr.Message)
	assert.Equal(t, "TRK002", core.MapError(err).Code)
}

func TestClient_ServerErrorIsRejected(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/caso-teste", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "boom")
	})

	_, err := newTestClient(t, r).CreateCase(context.Background(), core.SaveRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrTrackerRejected))
	assert.Contains(t, err.Error(), "boom")
}

func TestClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.EvidenceStatus(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrTrackerUnavailable))
	assert.Equal(t, "TRK001", core.MapError(err).Code)
}

func TestClient_CreateAndUpdateSendRecord(t *testing.T) {
	var created, updated map[string]any

	r := chi.NewRouter()
	r.Post("/api/caso-teste", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		io.WriteString(w, `{"sucesso": true, "mensagem": "ok", "id": "PROJ-5"}`)
	})
	r.Put("/api/caso-teste/{key}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PROJ-5", chi.URLParam(r, "key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&updated))
		io.WriteString(w, `{"sucesso": true}`)
	})

	c := newTestClient(t, r)
	rec := core.TestCaseRecord{
		Titulo: "Login", Status: core.StatusToDo, TipoExecucao: core.ExecutionManual,
		TipoTeste: core.TestFunctional, Componentes: core.Components{"API"}, Descricao: "Given",
	}

	res, err := c.CreateCase(context.Background(), core.SaveRequest{IssuePai: "PROJ-1", TestCaseRecord: rec})
	require.NoError(t, err)
	assert.Equal(t, "PROJ-5", res.ID)
	assert.Equal(t, "PROJ-1", created["issue_pai"])
	assert.Equal(t, "Login", created["titulo"])
	assert.Equal(t, []any{"API"}, created["componentes"])

	_, err = c.UpdateCase(context.Background(), "PROJ-5", core.SaveRequest{TestCaseRecord: rec})
	require.NoError(t, err)
	assert.Equal(t, "To Do", updated["status"])
	_, hasParent := updated["issue_pai"]
	assert.False(t, hasParent)
}

func TestClient_DeleteCase(t *testing.T) {
	var method string
	r := chi.NewRouter()
	r.Delete("/api/caso-teste/{key}", func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		io.WriteString(w, `{"sucesso": true, "mensagem": "removido"}`)
	})

	res, err := newTestClient(t, r).DeleteCase(context.Background(), "PROJ-5")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "removido", res.Mensagem)
}

func TestClient_ExportCasesSendsComponentsAsText(t *testing.T) {
	var body struct {
		IssuePai string           `json:"issue_pai"`
		Casos    []map[string]any `json:"casos"`
	}

	r := chi.NewRouter()
	r.Post("/api/exportar-planilha-manual", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		io.WriteString(w, `{
			"sucesso": true, "sucessos": 1, "erros": 1, "total": 2,
			"resultados": [
				{"titulo": "A", "jira_id": "PROJ-10", "created_at": "2024-01-01"},
				{"titulo": "B", "erro": "campo inválido"}
			]
		}`)
	})

	res, err := newTestClient(t, r).ExportCases(context.Background(), core.ExportRequest{
		IssuePai: "PROJ-1",
		Casos: []core.TestCaseRecord{
			{Titulo: "A", Componentes: core.Components{"API", "Web"}},
			{Titulo: "B"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "PROJ-1", body.IssuePai)
	require.Len(t, body.Casos, 2)
	assert.Equal(t, "API, Web", body.Casos[0]["componentes"])
	assert.Equal(t, "", body.Casos[1]["componentes"])

	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Resultados, 2)
	assert.True(t, res.Resultados[0].Succeeded())
	assert.False(t, res.Resultados[1].Succeeded())
	assert.Equal(t, "campo inválido", res.Resultados[1].Erro)
}

func TestClient_ExportSpreadsheet(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/casos-teste/{pai}/exportar-excel", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="casos_teste_PROJ-1_20240101.xlsx"`)
		io.WriteString(w, "PK-data")
	})

	dl, err := newTestClient(t, r).ExportSpreadsheet(context.Background(), "PROJ-1")
	require.NoError(t, err)
	defer dl.Body.Close()

	data, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "PK-data", string(data))
	assert.Equal(t, "casos_teste_PROJ-1_20240101.xlsx", dl.Filename)
}

func TestClient_UploadEvidence(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/evidencias/upload", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("log_file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)

		assert.Equal(t, "log.html", header.Filename)
		assert.Equal(t, "<html></html>", string(data))
		io.WriteString(w, `{
			"sucesso": true,
			"mensagem": "Evidências processadas com sucesso",
			"estatisticas": {"sucessos": 4, "falhas": 1, "total": 5},
			"nomes_evidencias": ["PROJ-1", "PROJ-2"]
		}`)
	})

	res, err := newTestClient(t, r).UploadEvidence(context.Background(), "log.html", strings.NewReader("<html></html>"))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Estatisticas.Sucessos)
	assert.Equal(t, []string{"PROJ-1", "PROJ-2"}, res.NomesEvidencias)
}

func TestClient_EvidenceEndpoints(t *testing.T) {
	var sentKeys []string
	var cleared bool

	r := chi.NewRouter()
	r.Get("/api/evidencias/status", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"falhas": 1, "sucessos": 2, "total": 3, "processado": true}`)
	})
	r.Get("/api/evidencias/lista", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"sucesso": true, "total": 1, "evidencias": [
			{"nome": "PROJ-1", "arquivo": "PROJ-1_sucesso.png", "status": "sucesso", "diretorio": "sucessos"}
		]}`)
	})
	r.Post("/api/evidencias/enviar", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			IssueKeys []string `json:"issue_keys"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		sentKeys = body.IssueKeys
		io.WriteString(w, `{"sucesso": true, "enviados": 2, "total_processados": 2, "issues_processadas": ["PROJ-1"]}`)
	})
	r.Post("/api/evidencias/limpar", func(w http.ResponseWriter, r *http.Request) {
		cleared = true
		io.WriteString(w, `{"sucesso": true, "mensagem": "Limpeza concluída com sucesso"}`)
	})

	c := newTestClient(t, r)
	ctx := context.Background()

	stats, err := c.EvidenceStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.EvidenceStats{Falhas: 1, Sucessos: 2, Total: 3, Processado: true}, stats)

	list, err := c.ListEvidence(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sucessos", list[0].Diretorio)

	sent, err := c.SendEvidence(ctx, []string{"PROJ-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"PROJ-1"}, sentKeys)
	assert.Equal(t, 2, sent.Enviados)
	assert.Equal(t, []string{"PROJ-1"}, sent.Issues)

	_, err = c.ClearEvidence(ctx)
	require.NoError(t, err)
	assert.True(t, cleared)
}

func TestClient_ListEvidenceFailureInBody(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/evidencias/lista", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"sucesso": false, "erro": "diretório ausente", "evidencias": [], "total": 0}`)
	})

	_, err := newTestClient(t, r).ListEvidence(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrTrackerRejected))
}
