package errors

import (
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestMarkedErrorsSurviveWrapping(t *testing.T) {
	err := NewError("template not found").
		WithHint("template tpl-1 does not exist").
		WithReportableDetails(map[string]any{"id": "tpl-1"}).
		Mark(ErrNotFound)
	wrapped := errors.Wrap(err, "load template")

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound() = false after wrapping")
	}
	if IsValidation(wrapped) {
		t.Error("IsValidation() = true for a not-found error")
	}
	if got := Hint(wrapped); got != "template tpl-1 does not exist" {
		t.Errorf("Hint() = %q", got)
	}
}

func TestCodeAndStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", NewError("bad").Mark(ErrValidation), ErrCodeValidation, http.StatusUnprocessableEntity},
		{"not found", NewError("missing").Mark(ErrNotFound), ErrCodeNotFound, http.StatusNotFound},
		{"invalid operation", NewError("no").Mark(ErrInvalidOperation), ErrCodeInvalidOperation, http.StatusConflict},
		{"database", WithError(errors.New("disk")).Mark(ErrDatabase), ErrCodeDatabase, http.StatusInternalServerError},
		{"generation limit", NewError("cap").Mark(ErrGenerationLimit), ErrCodeGenerationLimit, http.StatusOK},
		{"bad request", NewError("json").Mark(ErrBadRequest), ErrCodeBadRequest, http.StatusBadRequest},
		{"unmarked", errors.New("boom"), ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.code {
				t.Errorf("Code() = %q, want %q", got, tt.code)
			}
			if got := HTTPStatusFromErr(tt.err); got != tt.status {
				t.Errorf("HTTPStatusFromErr() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestHintEmptyWithoutHint(t *testing.T) {
	if got := Hint(errors.New("plain")); got != "" {
		t.Errorf("Hint() = %q, want empty", got)
	}
}
