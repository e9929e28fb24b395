// Package pwdstest runs pwds scenarios from Go tests. Each Fixture owns a
// safe file under the test's temporary directory.
package pwdstest

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/Veraticus/pwds-expect/pkg/config"
	"github.com/Veraticus/pwds-expect/pkg/runner"
	"github.com/Veraticus/pwds-expect/pkg/types"
)

// DefaultSecret is the password used for fixture safes
const DefaultSecret = "TestPass"

// Prompt patterns printed by pwds
var (
	PasswordPrompts = []string{"Enter password for .*: "}
	NewSafePrompts  = []string{"Enter new .*: ", "Confirm .*: "}
)

// Fixture runs pwds against one safe file
type Fixture struct {
	t          testing.TB
	Executable string
	SafeFile   string
	Secret     string
	Config     *config.Config
}

// New creates a fixture for executable with a fresh, not yet created safe path
func New(t testing.TB, executable string) *Fixture {
	t.Helper()

	if _, err := os.Stat(executable); err != nil {
		t.Fatalf("could not find pwds binary: %v", err)
	}

	return &Fixture{
		t:          t,
		Executable: executable,
		SafeFile:   filepath.Join(t.TempDir(), "pwdsTest.safe"),
		Secret:     DefaultSecret,
		Config:     config.DefaultConfig(),
	}
}

// Run runs cmd answering the usual password prompt
func (f *Fixture) Run(cmd string) []string {
	f.t.Helper()
	return f.RunWith(cmd, PasswordPrompts, nil)
}

// RunWith runs cmd against the safe with explicit prompts. Spawn failures
// fail the test; missing prompts do not.
func (f *Fixture) RunWith(cmd string, passwordPrompts []string, promptsAndInputs []types.PromptInput) []string {
	f.t.Helper()

	lines, err := runner.RunPwds(f.Executable, cmd+" --file "+f.SafeFile, f.Secret,
		passwordPrompts, promptsAndInputs, runner.WithConfig(f.Config))
	if err != nil {
		f.t.Fatalf("failed to run pwds %q: %v", cmd, err)
	}
	return lines
}

// InitSafe creates a new empty safe, replacing any existing one
func (f *Fixture) InitSafe() {
	f.t.Helper()

	if err := os.Remove(f.SafeFile); err != nil && !os.IsNotExist(err) {
		f.t.Fatalf("failed to remove safe: %v", err)
	}

	f.RunWith("show", NewSafePrompts, nil)

	if _, err := os.Stat(f.SafeFile); err != nil {
		f.t.Fatalf("safe was not created: %v", err)
	}
}

// AssertLines checks that the first lines match the expected patterns in order
func (f *Fixture) AssertLines(lines []string, patterns ...string) {
	f.t.Helper()

	if len(lines) < len(patterns) {
		f.t.Errorf("expected at least %d lines but got %d: %q", len(patterns), len(lines), lines)
	}
	for i := 0; i < len(lines) && i < len(patterns); i++ {
		if !regexp.MustCompile(patterns[i]).MatchString(lines[i]) {
			f.t.Errorf("line %d %q does not match %q", i, lines[i], patterns[i])
		}
	}
}

// AssertContains checks that some line matches pattern
func (f *Fixture) AssertContains(lines []string, pattern string) {
	f.t.Helper()

	re := regexp.MustCompile(pattern)
	for _, line := range lines {
		if re.MatchString(line) {
			return
		}
	}
	f.t.Errorf("no line matches %q in %q", pattern, lines)
}
