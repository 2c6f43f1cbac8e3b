package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestCategoryOfWrapped(t *testing.T) {
	base := Duplicate("files", "create", "demo")
	wrapped := fmt.Errorf("new profile: %w", base)

	if got := CategoryOf(wrapped); got != CategoryDuplicate {
		t.Fatalf("expected duplicate category, got %q", got)
	}
	if !IsCategory(wrapped, CategoryDuplicate) {
		t.Fatalf("expected IsCategory to match")
	}
	if IsCategory(nil, CategoryDuplicate) {
		t.Fatalf("nil error must not match a category")
	}
	if got := CategoryOf(stderrors.New("plain")); got != CategoryInternal {
		t.Fatalf("expected internal for plain errors, got %q", got)
	}
}

func TestServiceErrorMessageAndUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := IO("files", "save profiles", cause)

	if !stderrors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable via errors.Is")
	}
	if got, want := err.Error(), "save profiles failed: disk full"; got != want {
		t.Fatalf("unexpected message %q, want %q", got, want)
	}
	if got, want := Validation("controller", "start", "state or details is required").Error(), "state or details is required"; got != want {
		t.Fatalf("unexpected message %q, want %q", got, want)
	}
}
