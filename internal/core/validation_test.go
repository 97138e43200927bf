package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() TestCaseRecord {
	return TestCaseRecord{
		Titulo:       "Login",
		Status:       StatusToDo,
		TipoExecucao: ExecutionManual,
		TipoTeste:    TestFunctional,
		Componentes:  Components{"API"},
		Descricao:    "Given a user\nWhen they log in\nThen it works",
	}
}

func TestValidateForSave_Valid(t *testing.T) {
	assert.NoError(t, ValidateForSave(validRecord()))
}

func TestValidateForSave_RequiresTitleAndDescription(t *testing.T) {
	rec := validRecord()
	rec.Titulo = "   "
	rec.Descricao = ""

	err := ValidateForSave(rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)
	assert.Equal(t, ValidationError{Field: "titulo", Message: "is required"}, verrs[0])
	assert.Equal(t, ValidationError{Field: "descricao", Message: "is required"}, verrs[1])
	assert.Contains(t, err.Error(), "titulo: is required")
}

func TestValidateForSave_RejectsUnknownEnums(t *testing.T) {
	rec := validRecord()
	rec.Status = "Blocked"
	rec.TipoTeste = "Smoke"

	err := ValidateForSave(rec)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)
	assert.Equal(t, "status", verrs[0].Field)
	assert.Equal(t, "must be one of: To Do In Progress Done", verrs[0].Message)
	assert.Equal(t, "tipo_teste", verrs[1].Field)
}

func TestValidateForSave_AfterNormalize(t *testing.T) {
	rec := validRecord()
	rec.Status = "pendente"
	rec.TipoExecucao = "automatizado"

	assert.Error(t, ValidateForSave(rec))
	assert.NoError(t, ValidateForSave(NormalizeRecord(rec)))
}
