package pwdstest

import (
	"os"
	"testing"
	"time"

	"github.com/Veraticus/pwds-expect/pkg/testutil"
	"github.com/Veraticus/pwds-expect/pkg/types"
)

func newBasicFixture(t *testing.T) *Fixture {
	t.Helper()

	f := New(t, testutil.WriteFakePwds(t))
	f.Config.PromptTimeout = 2 * time.Second
	f.InitSafe()
	return f
}

func TestSecondRun(t *testing.T) {
	f := newBasicFixture(t)

	out := f.Run("show --raw")
	f.AssertLines(out, `\[\]`)
}

func TestNoArgs(t *testing.T) {
	f := newBasicFixture(t)

	out := f.RunWith("", nil, nil)
	f.AssertContains(out, "usage")
}

func TestFreshSafeShowRaw(t *testing.T) {
	f := New(t, testutil.WriteFakePwds(t))
	f.Config.PromptTimeout = 2 * time.Second

	out := f.RunWith("show --raw", NewSafePrompts, nil)
	f.AssertLines(out, `\[\]`)
}

func TestAdd(t *testing.T) {
	f := newBasicFixture(t)

	out := f.RunWith("add", PasswordPrompts, []types.PromptInput{
		{Prompt: "Name: ", Input: "github"},
		{Prompt: "User: ", Input: "octocat"},
	})
	f.AssertContains(out, `^added github for octocat$`)
}

func TestWrongPassword(t *testing.T) {
	f := newBasicFixture(t)
	f.Secret = "NotTheSecret"

	out := f.Run("show --raw")
	f.AssertContains(out, "wrong password")
}

func TestInitSafeReplacesExisting(t *testing.T) {
	f := New(t, testutil.WriteFakePwds(t))
	f.Config.PromptTimeout = 2 * time.Second

	if err := os.WriteFile(f.SafeFile, []byte("old"), 0600); err != nil {
		t.Fatalf("failed to seed safe: %v", err)
	}

	f.InitSafe()

	data, err := os.ReadFile(f.SafeFile)
	if err != nil {
		t.Fatalf("failed to read safe: %v", err)
	}
	if string(data) != DefaultSecret {
		t.Errorf("expected a new safe but found %q", data)
	}
}
