package check_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sophialabs/sigtrace/internal/domain/check"
	"github.com/sophialabs/sigtrace/internal/domain/pattern"
	"github.com/sophialabs/sigtrace/internal/domain/trace"
)

func testTrace() *trace.Trace {
	return &trace.Trace{
		Files: []string{
			`C:\Users\victim\AppData\Roaming\evil.exe`,
			`C:\Windows\Temp\dropper.dll`,
			`C:\Users\victim\Documents\notes.txt`,
		},
		RegistryKeys: []string{
			`HKEY_CURRENT_USER\Software\Microsoft\Windows\CurrentVersion\Run`,
			`HKEY_LOCAL_MACHINE\Software\Vendor\Product`,
		},
		Mutexes: []string{"i_am_a_malware", "i_am_a_malware_2"},
		APICalls: []trace.APICall{
			{
				Process:  "Explorer.EXE",
				API:      "CreateProcessW",
				Category: "process",
				Arguments: map[string]string{
					"command_line": `vssadmin.exe delete shadows /all /quiet`,
				},
			},
			{
				Process:  "evil.exe",
				API:      "RegSetValueExW",
				Category: "registry",
				Arguments: map[string]string{
					"key_name": `Software\Microsoft\Windows\CurrentVersion\Run`,
					"value":    `C:\Users\victim\AppData\Roaming\evil.exe`,
				},
			},
		},
		Network: trace.Network{
			IPs:     []string{"198.51.100.7", "203.0.113.9"},
			Domains: []string{"cnc.badguys.example", "update.vendor.example"},
			URLs:    []string{"http://cnc.badguys.example/gate.php"},
		},
	}
}

func newSession(t *testing.T) *check.Session {
	t.Helper()
	return check.NewSession(context.Background(), testTrace(), pattern.NewCache())
}

func TestSession_FileLiteralSuffix(t *testing.T) {
	s := newSession(t)

	ok, err := s.File(pattern.Literal("evil.exe"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected literal basename to match via path suffix")
	}

	ev := s.Evidence()
	if len(ev) != 1 {
		t.Fatalf("expected 1 evidence item, got %d", len(ev))
	}
	if ev[0].Type != "file" {
		t.Errorf("expected evidence type file, got %q", ev[0].Type)
	}
	if ev[0].Value != `C:\Users\victim\AppData\Roaming\evil.exe` {
		t.Errorf("unexpected evidence value: %v", ev[0].Value)
	}
}

func TestSession_FileRegexCollectsAllMatches(t *testing.T) {
	s := newSession(t)

	ok, err := s.File(pattern.Regex(`(?i)\.(exe|dll)$`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected regex match")
	}
	if len(s.Evidence()) != 2 {
		t.Errorf("expected 2 evidence items, got %d", len(s.Evidence()))
	}
}

func TestSession_FileNoMatch(t *testing.T) {
	s := newSession(t)

	ok, err := s.File(pattern.Literal("absent.bin"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no match")
	}
	if len(s.Evidence()) != 0 {
		t.Errorf("expected no evidence, got %d items", len(s.Evidence()))
	}
}

func TestSession_MutexLiteralIsExactOnly(t *testing.T) {
	s := newSession(t)

	ok, err := s.Mutex(pattern.Literal("i_am_a_malware"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected exact mutex match")
	}

	// Only the exact name matches, not i_am_a_malware_2.
	if len(s.Evidence()) != 1 {
		t.Fatalf("expected 1 evidence item, got %d", len(s.Evidence()))
	}
	if s.Evidence()[0].Value != "i_am_a_malware" {
		t.Errorf("unexpected evidence value: %v", s.Evidence()[0].Value)
	}
}

func TestSession_MutexRegexMatchesBoth(t *testing.T) {
	s := newSession(t)

	ok, err := s.Mutex(pattern.Regex(`^i_am_a_malware`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected regex mutex match")
	}
	if len(s.Evidence()) != 2 {
		t.Errorf("expected 2 evidence items, got %d", len(s.Evidence()))
	}
}

func TestSession_KeyRegex(t *testing.T) {
	s := newSession(t)

	ok, err := s.Key(pattern.Regex(`(?i)\\CurrentVersion\\Run$`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected registry key match")
	}
	if s.Evidence()[0].Type != "registry_key" {
		t.Errorf("expected evidence type registry_key, got %q", s.Evidence()[0].Type)
	}
}

func TestSession_NetworkChecks(t *testing.T) {
	s := newSession(t)

	ok, err := s.IP(pattern.Literal("198.51.100.7"))
	if err != nil || !ok {
		t.Errorf("expected IP match, got ok=%v err=%v", ok, err)
	}

	ok, err = s.Domain(pattern.Literal("badguys.example"))
	if err != nil || !ok {
		t.Errorf("expected domain suffix match, got ok=%v err=%v", ok, err)
	}

	ok, err = s.URL(pattern.Regex(`gate\.php$`))
	if err != nil || !ok {
		t.Errorf("expected URL match, got ok=%v err=%v", ok, err)
	}
}

func TestSession_APIProcessFilterIsCaseInsensitive(t *testing.T) {
	s := newSession(t)

	ok, err := s.API(pattern.Literal("CreateProcessW"), "explorer.exe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected process filter to match case-insensitively")
	}
	if s.Evidence()[0].Type != "api" {
		t.Errorf("expected evidence type api, got %q", s.Evidence()[0].Type)
	}
}

func TestSession_APIProcessFilterExcludesOthers(t *testing.T) {
	s := newSession(t)

	ok, err := s.API(pattern.Literal("RegSetValueExW"), "explorer.exe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no match: call came from a different process")
	}
}

func TestSession_ArgumentAnyName(t *testing.T) {
	s := newSession(t)

	ok, err := s.Argument(pattern.Regex(`(?i)vssadmin.*delete\s+shadows`), check.ArgumentFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected argument match across any argument name")
	}

	hit, isHit := s.Evidence()[0].Value.(check.ArgumentHit)
	if !isHit {
		t.Fatalf("expected ArgumentHit evidence, got %T", s.Evidence()[0].Value)
	}
	if hit.API != "CreateProcessW" || hit.Name != "command_line" {
		t.Errorf("unexpected hit: %+v", hit)
	}
}

func TestSession_ArgumentNameScoped(t *testing.T) {
	s := newSession(t)

	// The value matches in argument "value" but the filter scopes to
	// "key_name", so it must not count.
	ok, err := s.Argument(pattern.Regex(`evil\.exe$`), check.ArgumentFilter{Name: "key_name"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no match outside the scoped argument name")
	}
}

func TestSession_ArgumentFilters(t *testing.T) {
	s := newSession(t)

	ok, err := s.Argument(pattern.Regex(`CurrentVersion\\Run`), check.ArgumentFilter{
		API:      "RegSetValueExW",
		Category: "registry",
		Process:  "EVIL.EXE",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected match with all filters applied")
	}

	ok, err = s.Argument(pattern.Regex(`CurrentVersion\\Run`), check.ArgumentFilter{
		API: "CreateFileW",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected API filter to exclude the call")
	}
}

func TestSession_InvalidRegexSurfacesPatternError(t *testing.T) {
	s := newSession(t)

	_, err := s.File(pattern.Regex("[broken"))
	if err == nil {
		t.Fatal("expected error for invalid regex")
	}
	var pErr *pattern.Error
	if !errors.As(err, &pErr) {
		t.Fatalf("expected *pattern.Error, got %T", err)
	}
}

func TestSession_CancelledContextStopsChecks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := check.NewSession(ctx, testTrace(), pattern.NewCache())

	_, err := s.File(pattern.Literal("evil.exe"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	_, err = s.Argument(pattern.Literal("x"), check.ArgumentFilter{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
