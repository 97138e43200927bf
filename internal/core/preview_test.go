package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 50))
	assert.Equal(t, strings.Repeat("a", 50), Truncate(strings.Repeat("a", 50), 50))
	assert.Equal(t, strings.Repeat("a", 50)+"...", Truncate(strings.Repeat("a", 51), 50))
	assert.Equal(t, "ção...", Truncate("çãoção", 3), "counts characters, not bytes")
}

func TestBuildPreview(t *testing.T) {
	long := strings.Repeat("x", 60)
	rows := BuildPreview([]TestCaseRecord{
		{Titulo: "A", Status: StatusDone, Componentes: Components{"API", "Web"}, Descricao: long},
		{Titulo: "B"},
	}, 0)

	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, "Done", rows[0].Status)
	assert.Equal(t, "API, Web", rows[0].Componentes)
	assert.Equal(t, strings.Repeat("x", DefaultPreviewLength)+"...", rows[0].Descricao)
	assert.Equal(t, 2, rows[1].Index)
	assert.Equal(t, "B", rows[1].Titulo)
}
