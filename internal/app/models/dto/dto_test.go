package dto

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleValidationErrorListsFields(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")

	err := v.Struct(RegisterRequest{FirstName: "Maria", Email: "not-an-email", YearLevel: 9})
	require.Error(t, err)

	detail := HandleValidationError(err)
	assert.Equal(t, ErrorCodeValidationFailed, detail.Code)

	fields, ok := detail.Details.([]FieldError)
	require.True(t, ok)
	byField := map[string]string{}
	for _, f := range fields {
		byField[f.Field] = f.Message
	}
	assert.Equal(t, "LastName is required", byField["LastName"])
	assert.Equal(t, "Email must be a valid email address", byField["Email"])
	assert.Equal(t, "YearLevel must be at most 6", byField["YearLevel"])
}

func TestHandleValidationErrorPlainError(t *testing.T) {
	detail := HandleValidationError(errors.New("unexpected EOF"))
	assert.Equal(t, "unexpected EOF", detail.Details)
	assert.Empty(t, detail.Field)
}

func TestNewErrorResponseCarriesMessage(t *testing.T) {
	resp := NewErrorResponse(NewErrorDetail(ErrorCodeResourceNotFound, "application not found"))
	assert.False(t, resp.Success)
	assert.Equal(t, "application not found", resp.Message)
}

func TestUpdateStudentRequestToModel(t *testing.T) {
	bad := "17/05/2004"
	_, err := UpdateStudentRequest{Birthdate: &bad}.ToModel()
	assert.Error(t, err)

	good := "2004-05-17"
	program := "BS Nursing"
	upd, err := UpdateStudentRequest{Birthdate: &good, Program: &program}.ToModel()
	require.NoError(t, err)
	require.NotNil(t, upd.Birthdate)
	assert.Equal(t, 2004, upd.Birthdate.Year())
	assert.Equal(t, "BS Nursing", *upd.Program)
	assert.False(t, upd.IsEmpty())
}
