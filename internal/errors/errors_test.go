package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := InvalidColumn("profit", "")
	wrapped := Wrapf(base, "group_reduce on %s", "sheet1")

	assert.Equal(t, CodeInvalidColumn, GetCode(wrapped))
	assert.True(t, IsCode(wrapped, CodeInvalidColumn))
	assert.Contains(t, wrapped.Error(), `column "profit" does not exist`)

	var appErr *AppError
	assert.True(t, stderrors.As(wrapped, &appErr))
}

func TestWrapPlainError(t *testing.T) {
	err := Wrap(fmt.Errorf("disk on fire"), "load failed")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
	assert.False(t, IsCode(nil, CodeParseError))
}

func TestCodeSurvivesFmtWrapping(t *testing.T) {
	err := fmt.Errorf("upload: %w", ParseError("empty file", nil))
	assert.True(t, IsCode(err, CodeParseError))
	assert.True(t, IsAppError(err))
}

func TestParseErrorUnwrapsCause(t *testing.T) {
	cause := fmt.Errorf("zip: not a valid zip file")
	err := ParseError("failed to open workbook", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to open workbook: zip: not a valid zip file", err.Error())
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInsufficientData, fmt.Errorf("only one numeric column"))
	assert.Equal(t, CodeInsufficientData, GetCode(err))
	assert.Nil(t, WithCode(CodeInsufficientData, nil))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		ParseError("bad", nil):          http.StatusBadRequest,
		InvalidColumn("x", ""):          http.StatusUnprocessableEntity,
		InvalidOperation("median"):      http.StatusUnprocessableEntity,
		InsufficientData("need two"):    http.StatusUnprocessableEntity,
		SessionNotFound("abc"):          http.StatusNotFound,
		fmt.Errorf("anything else"):     http.StatusInternalServerError,
		ConfigInvalid("PORT is broken"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
	}
}
