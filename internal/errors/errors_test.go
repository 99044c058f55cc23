package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(ErrInternalServer, cause)

	if err.Code != "INTERNAL_ERROR" || err.StatusCode != http.StatusInternalServerError {
		t.Errorf("unexpected wrapped error %+v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected the cause to be reachable through errors.Is")
	}
	if !errors.Is(err, ErrInternalServer) {
		t.Error("expected the wrapped copy to match its sentinel")
	}
	if ErrInternalServer.Internal != nil {
		t.Error("sentinel must not be modified")
	}
}

func TestWithMessage(t *testing.T) {
	err := WithMessage(ErrInvalidInput, "month must be YYYY-MM")

	if err.Error() != "month must be YYYY-MM" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if err.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", err.StatusCode)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("expected match on INVALID_INPUT")
	}
	if errors.Is(err, ErrInvalidImport) {
		t.Error("unexpected match on INVALID_IMPORT")
	}
	if ErrInvalidInput.Message != "Invalid input" {
		t.Errorf("sentinel message changed to %q", ErrInvalidInput.Message)
	}
}
