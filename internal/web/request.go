package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/casedesk/internal/core"
)

// multipartMemory is how much of a multipart body is held in memory;
// the rest spills to temporary files.
const multipartMemory = 32 << 20

// isJSONBody reports whether the request body is JSON rather than a form.
func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// decodeJSON reads a JSON body of at most limit bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if isTooLarge(err) {
			return err
		}
		return fmt.Errorf("%w: %v", core.ErrInvalidBody, err)
	}
	return nil
}

// parseForm reads a url-encoded or multipart form of at most limit bytes.
func parseForm(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		if isTooLarge(err) {
			return err
		}
		return fmt.Errorf("%w: %v", core.ErrInvalidBody, err)
	}
	return nil
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

// decodeRecord reads one test case from a JSON body or form fields.
func decodeRecord(w http.ResponseWriter, r *http.Request, limit int64) (core.TestCaseRecord, error) {
	var rec core.TestCaseRecord
	if isJSONBody(r) {
		err := decodeJSON(w, r, limit, &rec)
		return rec, err
	}
	if err := parseForm(w, r, limit); err != nil {
		return rec, err
	}
	return recordFromForm(r, 0), nil
}

// recordFromForm builds the i-th record of a form where every field name
// may repeat once per grid row.
func recordFromForm(r *http.Request, i int) core.TestCaseRecord {
	get := func(name string) string {
		if vals := r.Form[name]; i < len(vals) {
			return strings.TrimSpace(vals[i])
		}
		return ""
	}
	return core.TestCaseRecord{
		Titulo:       get(core.FieldTitulo),
		Status:       core.Status(get(core.FieldStatus)),
		TipoExecucao: core.ExecutionType(get(core.FieldTipoExecucao)),
		TipoTeste:    core.TestType(get(core.FieldTipoTeste)),
		Componentes:  core.SplitComponents(get(core.FieldComponentes)),
		Objetivo:     get(core.FieldObjetivo),
		PreCondicoes: get(core.FieldPreCondicoes),
		Descricao:    get(core.FieldDescricao),
	}
}

// recordsFromForm builds one record per submitted grid row.
func recordsFromForm(r *http.Request) []core.TestCaseRecord {
	n := len(r.Form[core.FieldTitulo])
	records := make([]core.TestCaseRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, recordFromForm(r, i))
	}
	return records
}

// splitKeys splits a comma or whitespace separated list of issue keys.
func splitKeys(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
}
