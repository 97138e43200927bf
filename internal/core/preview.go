package core

import "unicode/utf8"

// DefaultPreviewLength is how many characters of long text a preview shows.
const DefaultPreviewLength = 50

// PreviewRow is a display-ready row of the import preview table.
type PreviewRow struct {
	Index        int    `json:"index"`
	Titulo       string `json:"titulo"`
	Status       string `json:"status"`
	TipoExecucao string `json:"tipo_execucao"`
	TipoTeste    string `json:"tipo_teste"`
	Componentes  string `json:"componentes"`
	Objetivo     string `json:"objetivo"`
	PreCondicoes string `json:"pre_condicoes"`
	Descricao    string `json:"descricao"`
}

// BuildPreview renders records as preview rows, truncating the long text
// columns to limit characters. A non-positive limit uses DefaultPreviewLength.
func BuildPreview(records []TestCaseRecord, limit int) []PreviewRow {
	if limit <= 0 {
		limit = DefaultPreviewLength
	}

	rows := make([]PreviewRow, len(records))
	for i, rec := range records {
		rows[i] = PreviewRow{
			Index:        i + 1,
			Titulo:       rec.Titulo,
			Status:       string(rec.Status),
			TipoExecucao: string(rec.TipoExecucao),
			TipoTeste:    string(rec.TipoTeste),
			Componentes:  rec.Componentes.String(),
			Objetivo:     Truncate(rec.Objetivo, limit),
			PreCondicoes: Truncate(rec.PreCondicoes, limit),
			Descricao:    Truncate(rec.Descricao, limit),
		}
	}
	return rows
}

// Truncate shortens s to n characters followed by "..." when it is longer.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
