// Package signatures holds the statically linked built-in rules. These are
// Go-native signatures registered directly on the registry, alongside the
// declarative ones discovered from the rules directory.
package signatures

import (
	"context"

	"github.com/sophialabs/sigtrace/internal/domain/check"
	"github.com/sophialabs/sigtrace/internal/domain/pattern"
	"github.com/sophialabs/sigtrace/internal/domain/signature"
)

// Builtin returns the built-in signature set.
func Builtin() []*signature.Signature {
	return []*signature.Signature{
		persistenceRunKey(),
		dropsExecutableAppData,
		deletesShadowCopies(),
	}
}

// persistenceRunKey flags writes under the classic autostart registry keys.
func persistenceRunKey() *signature.Signature {
	runKey := pattern.Regex(`(?i)\\Software\\(Wow6432Node\\)?Microsoft\\Windows\\CurrentVersion\\Run`)
	return signature.MustNew(signature.Metadata{
		Name:        "persistence_autorun_key",
		Description: "Installs itself for autorun at Windows startup",
		Severity:    2,
		Categories:  []string{"persistence"},
		Authors:     []string{"sophialabs"},
		Enabled:     true,
	}, func(ctx context.Context, s *check.Session) (bool, error) {
		return s.Key(runKey)
	})
}

// dropsExecutableAppData flags executables written under the user profile's
// application data directories.
var dropsExecutableAppData = signature.MustNew(signature.Metadata{
	Name:        "dropper_appdata_exe",
	Description: "Drops an executable into the AppData directory",
	Severity:    2,
	Categories:  []string{"dropper"},
	Authors:     []string{"sophialabs"},
	Enabled:     true,
}, func(ctx context.Context, s *check.Session) (bool, error) {
	return s.File(pattern.Regex(`(?i)\\AppData\\.*\.(exe|dll|scr)$`))
})

// deletesShadowCopies flags volume shadow copy deletion, a common
// ransomware precursor.
func deletesShadowCopies() *signature.Signature {
	cmdline := pattern.Regex(`(?i)vssadmin.*delete\s+shadows`)
	return signature.MustNew(signature.Metadata{
		Name:        "ransomware_shadowcopy_delete",
		Description: "Deletes volume shadow copies to prevent file recovery",
		Severity:    3,
		Alert:       true,
		Categories:  []string{"ransomware"},
		Families:    []string{"generic"},
		Authors:     []string{"sophialabs"},
		Enabled:     true,
	}, func(ctx context.Context, s *check.Session) (bool, error) {
		return check.Any(
			func(ctx context.Context, s *check.Session) (bool, error) {
				return s.Argument(cmdline, check.ArgumentFilter{Name: "command_line"})
			},
			func(ctx context.Context, s *check.Session) (bool, error) {
				return s.Argument(cmdline, check.ArgumentFilter{Category: "process"})
			},
		)(ctx, s)
	})
}
