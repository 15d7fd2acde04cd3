package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestErrorTypeStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		typ    ErrorType
		status int
	}{
		{"validation", NewValidationError("value is required"), ErrorTypeValidation, http.StatusBadRequest},
		{"invalid operation", NewInvalidOperationError("division by zero"), ErrorTypeInvalidOperation, http.StatusUnprocessableEntity},
		{"not found", NewNotFoundError("node"), ErrorTypeNotFound, http.StatusNotFound},
		{"conflict", NewConflictError("email already registered"), ErrorTypeConflict, http.StatusConflict},
		{"database", NewDatabaseError("get node", errors.New("timeout")), ErrorTypeDatabase, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.typ {
				t.Errorf("type = %s, want %s", tt.err.Type, tt.typ)
			}
			if tt.err.HTTPStatus != tt.status {
				t.Errorf("status = %d, want %d", tt.err.HTTPStatus, tt.status)
			}
		})
	}
}

func TestTypeChecksSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handling query: %w", NewNotFoundError("node"))
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound must find the AppError through %w wrapping")
	}
	if IsValidation(wrapped) {
		t.Error("IsValidation must not match a not found error")
	}
	if !IsInvalidOperation(NewInvalidOperationError("division by zero")) {
		t.Error("IsInvalidOperation failed on a direct error")
	}
	if !IsConflict(NewConflictError("duplicate")) {
		t.Error("IsConflict failed on a direct error")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("plain errors must not match any type")
	}
}

func TestDatabaseErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewDatabaseError("insert node", cause)
	if !errors.Is(err, cause) {
		t.Error("expected the cause to be reachable via errors.Is")
	}
}

func TestHandlerWritesAppErrorStatus(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nodes/abc", nil)
	h.Handle(rec, req, fmt.Errorf("handling query: %w", NewNotFoundError("node")))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Error || resp.Type != string(ErrorTypeNotFound) {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHandlerHidesInternalDetails(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nodes", nil)
	h.Handle(rec, req, errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Message != "An internal error occurred" {
		t.Errorf("raw error leaked outside debug mode: %q", resp.Message)
	}
}
