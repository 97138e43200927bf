package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponents_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Components
	}{
		{"string", `"API"`, Components{"API"}},
		{"blank string", `"  "`, Components{}},
		{"array", `["API","Web"]`, Components{"API", "Web"}},
		{"empty array", `[]`, Components{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Components
			require.NoError(t, json.Unmarshal([]byte(tt.in), &c))
			assert.Equal(t, tt.want, c)
		})
	}

	var c Components
	assert.Error(t, json.Unmarshal([]byte(`42`), &c))
}

func TestComponents_First(t *testing.T) {
	assert.Equal(t, "API", Components{}.First("API"))
	assert.Equal(t, "API", Components{" "}.First("API"))
	assert.Equal(t, "Web", Components{"Web", "API"}.First("API"))
}

func TestTestCase_DecodesTrackerPayload(t *testing.T) {
	payload := `{
		"id": "PROJ-12",
		"titulo": "Login",
		"status": "Em Progresso",
		"tipo_execucao": "Manual",
		"tipo_teste": "Functional",
		"componentes": ["API"],
		"descricao": "Given x",
		"criado_em": "2024-01-01T10:00:00"
	}`

	var tc TestCase
	require.NoError(t, json.Unmarshal([]byte(payload), &tc))
	assert.Equal(t, "PROJ-12", tc.ID)
	assert.Equal(t, "Login", tc.Titulo)
	assert.Equal(t, Status("Em Progresso"), tc.Status)
	assert.Equal(t, Components{"API"}, tc.Componentes)
	assert.Equal(t, "2024-01-01T10:00:00", tc.CriadoEm)
}

func TestValidIssueKey(t *testing.T) {
	assert.True(t, ValidIssueKey("PROJ-123"))
	assert.True(t, ValidIssueKey("A-1"))
	assert.False(t, ValidIssueKey("proj-123"))
	assert.False(t, ValidIssueKey("PROJ123"))
	assert.False(t, ValidIssueKey("PROJ-"))
	assert.False(t, ValidIssueKey(" PROJ-1"))
	assert.False(t, ValidIssueKey("PR0J-1"))
}
