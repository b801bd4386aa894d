package errors

import (
	"net/http"
	"testing"
)

func TestCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Code
	}{
		{http.StatusNotFound, CodeNotFound},
		{http.StatusUnauthorized, CodeUnauthorized},
		{http.StatusForbidden, CodeForbidden},
		{http.StatusConflict, CodeConflict},
		{http.StatusBadRequest, CodeValidation},
		{http.StatusUnprocessableEntity, CodeValidation},
		{http.StatusTooManyRequests, CodeUnavailable},
		{http.StatusBadGateway, CodeUnavailable},
		{http.StatusTeapot, CodeInternal},
	}
	for _, tt := range tests {
		if got := CodeForStatus(tt.status); got != tt.want {
			t.Errorf("CodeForStatus(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestIsMatchesByCodeThroughWrapping(t *testing.T) {
	network := Wrap(New("dial tcp: refused"), CodeNetwork, "execute request")
	saved := Wrap(network, CodePersistence, "update section 3")

	if !Is(saved, ErrPersistence) {
		t.Fatalf("Is(saved, ErrPersistence) = false, want true")
	}
	if !Is(saved, ErrNetwork) {
		t.Fatalf("Is(saved, ErrNetwork) = false, want true")
	}
	if Is(saved, ErrNotFound) {
		t.Fatalf("Is(saved, ErrNotFound) = true, want false")
	}
	if got := CodeOf(saved); got != CodePersistence {
		t.Fatalf("CodeOf = %s, want %s", got, CodePersistence)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) {
		t.Fatalf("Retryable(nil) = true")
	}
	if !Retryable(Wrap(ErrUnavailable, CodePersistence, "save")) {
		t.Fatalf("unavailable should be retryable")
	}
	if Retryable(Validation("order is required")) {
		t.Fatalf("validation should not be retryable")
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrapf(New("boom"), CodeFetch, "load chapter %d", 7)
	if got := err.Error(); got != "load chapter 7: boom" {
		t.Fatalf("Error() = %q", got)
	}
	detailed := ErrValidation.WithDetails(map[string]string{"order": "is required"})
	if detailed.Details == nil || ErrValidation.Details != nil {
		t.Fatalf("WithDetails should copy, got sentinel details %v", ErrValidation.Details)
	}
}
