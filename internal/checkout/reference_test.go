package checkout

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateReferenceFormat(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ref := GenerateReference("Sew Shop!", now)

	if ref != strings.ToUpper(ref) {
		t.Fatalf("expected uppercase reference, got %q", ref)
	}
	if !strings.HasPrefix(ref, "SEWSHOP-") {
		t.Fatalf("expected sanitized slug prefix, got %q", ref)
	}
	for _, r := range ref {
		if !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-", r) {
			t.Fatalf("unexpected character %q in reference %q", r, ref)
		}
	}
}

func TestGenerateReferenceUnique(t *testing.T) {
	t.Parallel()

	now := time.Now()
	seen := map[string]struct{}{}
	for i := 0; i < 200; i++ {
		ref := GenerateReference("sewshop", now)
		if _, dup := seen[ref]; dup {
			t.Fatalf("duplicate reference generated: %q", ref)
		}
		seen[ref] = struct{}{}
	}
}

func TestGenerateReferenceEmptySlug(t *testing.T) {
	t.Parallel()

	ref := GenerateReference("", time.Now())
	if !strings.HasPrefix(ref, "SHOP-") {
		t.Fatalf("expected fallback slug, got %q", ref)
	}
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	t.Parallel()

	number := GenerateOrderNumber(time.Now())
	if !strings.HasPrefix(number, "ORD-") {
		t.Fatalf("expected ORD- prefix, got %q", number)
	}
	if len(strings.Split(number, "-")) != 3 {
		t.Fatalf("expected three segments, got %q", number)
	}
}
