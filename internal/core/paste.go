package core

// paste.go turns text pasted from a spreadsheet into test-case records.
//
// The text goes through four passes:
//  1. the delimiter is chosen from the first line (comma or tab)
//  2. the text is cut into logical rows; line breaks inside quotes stay in the row
//  3. each row is cut into fields with the chosen delimiter
//  4. fields are mapped positionally onto a TestCaseRecord
//
// The parser is total: malformed quoting never fails, it only changes how
// the rest of the input is grouped.

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNoInput is returned when the pasted text is empty or whitespace.
	ErrNoInput = errors.New("no input provided")

	// ErrNoValidRows is returned when no row produced a record.
	ErrNoValidRows = errors.New("no valid rows found in pasted data")
)

// Field positions in a pasted row.
const (
	colTitulo = iota
	colStatus
	colTipoExecucao
	colTipoTeste
	colComponentes
	colObjetivo
	colPreCondicoes
	colDescricao
)

// headerKeywords mark the first row as a column header when any field contains one.
var headerKeywords = []string{
	"título", "titulo", "title",
	"status",
	"execução", "execucao", "execution",
	"teste", "test",
	"componentes", "components",
	"objetivo", "objective",
	"pré-condições", "pre-condicoes", "pre-conditions", "preconditions",
	"descrição", "descricao", "description",
}

// PasteResult is the outcome of parsing pasted text.
type PasteResult struct {
	Records       []TestCaseRecord `json:"records"`
	Delimiter     rune             `json:"-"`
	HeaderSkipped bool             `json:"header_skipped"`
	Rows          int              `json:"rows"`
	Dropped       int              `json:"dropped"`
}

// DelimiterName returns "tab" or "comma".
func (r PasteResult) DelimiterName() string {
	if r.Delimiter == ',' {
		return "comma"
	}
	return "tab"
}

// ParsePasted parses text pasted from a spreadsheet into records in source order.
//
// It returns ErrNoInput for blank text and ErrNoValidRows when every row was
// a header or had an empty title. Both are warnings: the returned result is
// still usable (and empty).
func ParsePasted(text string) (PasteResult, error) {
	text = sanitizePaste(text)
	if strings.TrimSpace(text) == "" {
		return PasteResult{Delimiter: '\t'}, ErrNoInput
	}

	delim := DetectDelimiter(text)
	rows := SplitRows(text)
	result := PasteResult{
		Records:   make([]TestCaseRecord, 0, len(rows)),
		Delimiter: delim,
		Rows:      len(rows),
	}

	for i, row := range rows {
		fields := SplitFields(row, delim)

		if i == 0 && IsHeaderRow(fields) {
			result.HeaderSkipped = true
			continue
		}

		rec, ok := MapFields(fields)
		if !ok {
			result.Dropped++
			continue
		}
		result.Records = append(result.Records, rec)
	}

	if len(result.Records) == 0 {
		return result, ErrNoValidRows
	}
	return result, nil
}

// DetectDelimiter picks the field delimiter from the first line only:
// comma when that line has a comma and no tab, tab otherwise.
func DetectDelimiter(text string) rune {
	first, _, _ := strings.Cut(text, "\n")
	if strings.Contains(first, ",") && !strings.Contains(first, "\t") {
		return ','
	}
	return '\t'
}

// SplitRows cuts text into logical rows. Line breaks (\n, \r or \r\n) end a
// row only outside quotes. Quote characters are kept in the row text so that
// SplitFields can interpret them. Blank rows are skipped and rows are trimmed.
func SplitRows(text string) []string {
	var (
		rows    []string
		current strings.Builder
		inQuote bool
	)

	flush := func() {
		if row := strings.TrimSpace(current.String()); row != "" {
			rows = append(rows, row)
		}
		current.Reset()
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if c == '"' {
			if i+1 < len(text) && text[i+1] == '"' {
				current.WriteString(`""`)
				i++
				continue
			}
			inQuote = !inQuote
			current.WriteByte(c)
			continue
		}

		if inQuote {
			current.WriteByte(c)
			continue
		}

		if c == '\n' || c == '\r' {
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			flush()
			continue
		}

		current.WriteByte(c)
	}
	flush()

	return rows
}

// SplitFields cuts one row into trimmed fields. A lone quote toggles quoting
// and is dropped; a doubled quote is copied through as two characters; the
// delimiter splits only outside quotes. The last field is always present, so
// a row yields at least one field.
func SplitFields(row string, delim rune) []string {
	var (
		fields  []string
		current strings.Builder
		inQuote bool
	)

	d := byte(delim)
	for i := 0; i < len(row); i++ {
		c := row[i]
		switch {
		case c == '"' && i+1 < len(row) && row[i+1] == '"':
			current.WriteString(`""`)
			i++
		case c == '"':
			inQuote = !inQuote
		case c == d && !inQuote:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))

	return fields
}

// IsHeaderRow reports whether any field contains a column-header keyword.
func IsHeaderRow(fields []string) bool {
	for _, f := range fields {
		lower := strings.ToLower(f)
		for _, kw := range headerKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// MapFields maps positional fields onto a record. It returns false when the
// title is empty; such rows produce no record.
func MapFields(fields []string) (TestCaseRecord, bool) {
	get := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	title := get(colTitulo)
	if title == "" {
		return TestCaseRecord{}, false
	}

	return TestCaseRecord{
		Titulo:       title,
		Status:       MapStatus(get(colStatus)),
		TipoExecucao: MapExecutionType(get(colTipoExecucao)),
		TipoTeste:    MapTestType(get(colTipoTeste)),
		Componentes:  ComponentsFromText(get(colComponentes)),
		Objetivo:     get(colObjetivo),
		PreCondicoes: get(colPreCondicoes),
		Descricao:    get(colDescricao),
	}, true
}

// sanitizePaste drops a leading UTF-8 BOM and replaces invalid UTF-8 with U+FFFD.
func sanitizePaste(text string) string {
	text = strings.TrimPrefix(text, "\uFEFF")
	if utf8.ValidString(text) {
		return text
	}
	return strings.ToValidUTF8(text, "\uFFFD")
}
