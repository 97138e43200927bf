package core

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by every ValidationErrors value.
var ErrValidation = errors.New("validation failed")

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid field of a record.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, ve := range e {
		parts[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// fieldLabels are the user-facing names of record fields.
var fieldLabels = map[string]string{
	"Titulo":       "titulo",
	"Status":       "status",
	"TipoExecucao": "tipo_execucao",
	"TipoTeste":    "tipo_teste",
	"Descricao":    "descricao",
}

// ValidateForSave checks that a record can be persisted: title and
// description are required and the enum fields must be valid members.
// Text is trimmed before checking.
func ValidateForSave(rec TestCaseRecord) error {
	rec.Titulo = strings.TrimSpace(rec.Titulo)
	rec.Descricao = strings.TrimSpace(rec.Descricao)

	err := recordValidator().Struct(rec)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate record: %w", err)
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		label := fieldLabels[fe.Field()]
		if label == "" {
			label = strings.ToLower(fe.Field())
		}
		out = append(out, ValidationError{Field: label, Message: validationMessage(fe)})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), "'", ""))
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
