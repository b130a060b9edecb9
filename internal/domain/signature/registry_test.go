package signature_test

import (
	"context"
	"testing"

	"github.com/sophialabs/sigtrace/internal/domain/check"
	"github.com/sophialabs/sigtrace/internal/domain/signature"
)

func mustSig(t *testing.T, meta signature.Metadata) *signature.Signature {
	t.Helper()
	if meta.Severity == 0 {
		meta.Severity = 1
	}
	sig, err := signature.New(meta, func(context.Context, *check.Session) (bool, error) {
		return true, nil
	})
	if err != nil {
		t.Fatalf("failed to build signature: %v", err)
	}
	return sig
}

func TestRegistry_RegisterAndAll(t *testing.T) {
	reg := signature.NewRegistry()

	for _, name := range []string{"c_sig", "a_sig", "b_sig"} {
		if err := reg.Register(mustSig(t, signature.Metadata{Name: name, Enabled: true})); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	all := reg.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 signatures, got %d", len(all))
	}
	// Registration order is preserved.
	if all[0].Meta.Name != "c_sig" || all[1].Meta.Name != "a_sig" || all[2].Meta.Name != "b_sig" {
		t.Errorf("unexpected order: %s, %s, %s", all[0].Meta.Name, all[1].Meta.Name, all[2].Meta.Name)
	}
}

func TestRegistry_DuplicateRetainsOriginal(t *testing.T) {
	reg := signature.NewRegistry()

	original := mustSig(t, signature.Metadata{Name: "dup", Severity: 1, Enabled: true})
	if err := reg.Register(original); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	replacement := mustSig(t, signature.Metadata{Name: "dup", Severity: 3, Enabled: true})
	err := reg.Register(replacement)
	assertConfigError(t, err)

	all := reg.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 signature, got %d", len(all))
	}
	if all[0].Meta.Severity != 1 {
		t.Error("expected the original registration to survive the duplicate")
	}
}

func TestRegistry_ApplicableFiltersDisabled(t *testing.T) {
	reg := signature.NewRegistry()

	if err := reg.Register(mustSig(t, signature.Metadata{Name: "on", Enabled: true})); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(mustSig(t, signature.Metadata{Name: "off", Enabled: false})); err != nil {
		t.Fatal(err)
	}

	applicable, err := reg.Applicable("1.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(applicable) != 1 || applicable[0].Meta.Name != "on" {
		t.Errorf("expected only the enabled signature, got %d entries", len(applicable))
	}
}

func TestRegistry_ApplicableFiltersVersionWindow(t *testing.T) {
	reg := signature.NewRegistry()

	if err := reg.Register(mustSig(t, signature.Metadata{Name: "legacy", Enabled: true, MaxVersion: "0.9"})); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(mustSig(t, signature.Metadata{Name: "modern", Enabled: true, MinVersion: "0.10"})); err != nil {
		t.Fatal(err)
	}

	applicable, err := reg.Applicable("0.10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(applicable) != 1 || applicable[0].Meta.Name != "modern" {
		t.Errorf("expected only the modern signature at 0.10, got %d entries", len(applicable))
	}
}

func TestRegistry_ApplicableRejectsBadEngineVersion(t *testing.T) {
	reg := signature.NewRegistry()
	if _, err := reg.Applicable("garbage"); err == nil {
		t.Error("expected error for unparseable engine version")
	}
}
