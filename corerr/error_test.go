package corerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestCoreError_ErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("send failed: %w", New(KindRequestTimedOut, "client", "deadline exceeded"))

	var ce *CoreError
	if !errors.As(wrapped, &ce) {
		t.Fatalf("expected errors.As to unwrap CoreError")
	}
	if ce.Kind != KindRequestTimedOut {
		t.Fatalf("expected kind %q, got %q", KindRequestTimedOut, ce.Kind)
	}
}

func TestHasKind(t *testing.T) {
	err := Wrap(KindBufferLimitExceeded, "transport", "stdout buffer exceeded cap", errors.New("boom"))
	if !HasKind(err, KindBufferLimitExceeded) {
		t.Fatalf("expected HasKind to match")
	}
	if HasKind(err, KindRequestCancelled) {
		t.Fatalf("expected HasKind to not match a different kind")
	}
}

func TestCoreError_Is(t *testing.T) {
	a := New(KindRequestCancelled, "client", "cancelled")
	b := New(KindRequestCancelled, "client", "a different message")
	if !errors.Is(a, b) {
		t.Fatalf("expected errors.Is to match by Kind")
	}
}
