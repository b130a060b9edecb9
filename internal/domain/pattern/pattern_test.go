package pattern_test

import (
	"errors"
	"testing"

	"github.com/sophialabs/sigtrace/internal/domain/pattern"
)

func TestMatcher_LiteralExact(t *testing.T) {
	cache := pattern.NewCache()
	m, err := cache.Get(pattern.Literal("i_am_a_malware"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !m.Exact("i_am_a_malware") {
		t.Error("expected exact match")
	}
	if m.Exact("i_am_a_malware_2") {
		t.Error("superstring must not match exactly")
	}
	if m.Exact("prefix_i_am_a_malware") {
		t.Error("suffix candidate must not match exactly")
	}
}

func TestMatcher_LiteralSuffixOrEqual(t *testing.T) {
	cache := pattern.NewCache()
	m, err := cache.Get(pattern.Literal("evil.exe"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !m.SuffixOrEqual("evil.exe") {
		t.Error("expected equality match")
	}
	if !m.SuffixOrEqual(`C:\Users\victim\AppData\evil.exe`) {
		t.Error("expected suffix match on full path")
	}
	if m.SuffixOrEqual("evil.exe.bak") {
		t.Error("non-suffix candidate must not match")
	}
}

func TestMatcher_RegexUnanchoredSearch(t *testing.T) {
	cache := pattern.NewCache()
	m, err := cache.Get(pattern.Regex(`\.exe$`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !m.Exact(`C:\Windows\cmd.exe`) {
		t.Error("expected regex search to match")
	}
	if m.Exact(`C:\Windows\cmd.dll`) {
		t.Error("expected no match")
	}

	// Regex semantics are identical for both entry points.
	if !m.SuffixOrEqual(`C:\Windows\cmd.exe`) {
		t.Error("expected regex search via SuffixOrEqual to match")
	}
}

func TestCache_ReusesCompiledMatcher(t *testing.T) {
	cache := pattern.NewCache()
	p := pattern.Regex(`(?i)software\\microsoft`)

	first, err := cache.Get(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cache.Get(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Error("expected the same matcher instance from the cache")
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 cached matcher, got %d", cache.Len())
	}
}

func TestCache_DistinguishesLiteralFromRegex(t *testing.T) {
	cache := pattern.NewCache()

	if _, err := cache.Get(pattern.Literal("abc")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.Get(pattern.Regex("abc")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cache.Len() != 2 {
		t.Errorf("expected 2 cached matchers, got %d", cache.Len())
	}
}

func TestCache_InvalidRegex(t *testing.T) {
	cache := pattern.NewCache()

	_, err := cache.Get(pattern.Regex("[unclosed"))
	if err == nil {
		t.Fatal("expected error for invalid regex")
	}

	var pErr *pattern.Error
	if !errors.As(err, &pErr) {
		t.Fatalf("expected *pattern.Error, got %T", err)
	}
	if pErr.Text != "[unclosed" {
		t.Errorf("expected error to carry pattern text, got %q", pErr.Text)
	}

	// Invalid patterns are not cached.
	if cache.Len() != 0 {
		t.Errorf("expected 0 cached matchers, got %d", cache.Len())
	}
}
