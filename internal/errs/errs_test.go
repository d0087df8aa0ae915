package errs

import (
	"testing"

	"github.com/pkg/errors"
)

func TestKindOfTagged(t *testing.T) {
	err := New(KindNotFound, "Product not found")
	if KindOf(err) != KindNotFound {
		t.Fatalf("kind = %v", KindOf(err))
	}
	if MessageOf(err) != "Product not found" {
		t.Fatalf("message = %q", MessageOf(err))
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := errors.Wrap(New(KindValidation, "Quantity must be at least 1"), "checkout")
	if KindOf(err) != KindValidation {
		t.Fatalf("kind must survive wrapping, got %v", KindOf(err))
	}
	if MessageOf(err) != "Quantity must be at least 1" {
		t.Fatalf("message = %q", MessageOf(err))
	}
}

func TestKindOfUntagged(t *testing.T) {
	err := errors.New("driver: bad connection")
	if KindOf(err) != KindInternal {
		t.Fatalf("untagged errors default to internal, got %v", KindOf(err))
	}
	if MessageOf(err) != "Internal server error" {
		t.Fatalf("untagged errors must not leak details, got %q", MessageOf(err))
	}
}

func TestNewf(t *testing.T) {
	err := Newf(KindValidation, "Insufficient stock for %s. Max available: %d", "pomade", 5)
	if MessageOf(err) != "Insufficient stock for pomade. Max available: 5" {
		t.Fatalf("message = %q", MessageOf(err))
	}
}
