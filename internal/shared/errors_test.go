package shared

import (
	"errors"
	"net/http"
	"testing"
)

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError("too small", "received %d bytes", 500)
	if err.Kind != "too small" {
		t.Errorf("unexpected kind: %s", err.Kind)
	}
	want := "validation failed (too small): received 500 bytes"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestTranscriptionError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TranscriptionError{Message: "transcription failed", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Error() != "transcription failed: connection refused" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestTranscriptionError_NoCause(t *testing.T) {
	err := &TranscriptionError{Message: "transcription failed"}
	if err.Error() != "transcription failed" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestMatchError_As(t *testing.T) {
	var target *MatchError
	var err error = &MatchError{Message: "embedding call failed"}
	if !errors.As(err, &target) {
		t.Fatal("expected errors.As to match")
	}
	if target.Message != "embedding call failed" {
		t.Errorf("unexpected message: %s", target.Message)
	}
}

func TestPersistenceError_Unwrap(t *testing.T) {
	cause := errors.New("redis down")
	err := &PersistenceError{Message: "metrics write failed", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAPIError_ToHTTP(t *testing.T) {
	httpErr := BadRequest("invalid_request", "bad body")
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
	apiErr, ok := httpErr.Message.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError message, got %T", httpErr.Message)
	}
	if apiErr.Code != "invalid_request" {
		t.Errorf("unexpected code: %s", apiErr.Code)
	}
}

func TestAPIError_WithDetails(t *testing.T) {
	apiErr := NewAPIError("invalid_request", "bad body").WithDetails(map[string]string{"field": "slide"})
	if apiErr.Details == nil {
		t.Error("expected details to be set")
	}
}
