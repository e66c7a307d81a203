package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"entityblock/blocking"
	"entityblock/database"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"configuration", blocking.NewConfigurationError("bad n", nil), http.StatusBadRequest},
		{"wrapped configuration", fmt.Errorf("build index: %w", blocking.NewConfigurationError("bad n", nil)), http.StatusBadRequest},
		{"ingestion", blocking.NewIngestionError("bad csv", nil), http.StatusBadRequest},
		{"consistency", blocking.NewConsistencyError("missing id", nil), http.StatusInternalServerError},
		{"run not found", fmt.Errorf("%w: abc", database.ErrRunNotFound), http.StatusNotFound},
		{"canceled", context.Canceled, http.StatusServiceUnavailable},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError},
		{"app error", NewPayloadTooLargeError("too big"), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomain(tt.err)
			if appErr.StatusCode() != tt.want {
				t.Errorf("StatusCode() = %d, want %d", appErr.StatusCode(), tt.want)
			}
			if !errors.Is(appErr, tt.err) && appErr != tt.err {
				t.Errorf("AppError should wrap the domain error")
			}
		})
	}

	if FromDomain(nil) != nil {
		t.Error("FromDomain(nil) should be nil")
	}
}

func TestFromDomain_HidesInternalDetails(t *testing.T) {
	appErr := FromDomain(blocking.NewConsistencyError("record 42 missing", nil))
	if appErr.Message != "Internal server error" {
		t.Errorf("Message = %q", appErr.Message)
	}

	appErr = FromDomain(fmt.Errorf("score blocks: %w", blocking.NewConfigurationError("unknown field", nil)))
	if appErr.Message != "[CONFIGURATION] unknown field" {
		t.Errorf("Message = %q", appErr.Message)
	}
}

func TestAppError(t *testing.T) {
	inner := errors.New("inner")
	err := NewValidationError("bad input", inner).WithContext("handler")
	if err.Error() != "bad input: inner" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("Unwrap should expose inner error")
	}
	if err.Context != "handler" {
		t.Errorf("Context = %q", err.Context)
	}
	if NewNotFoundError("x", nil).Error() != "x" {
		t.Error("Error() without inner error should be the message")
	}
}
