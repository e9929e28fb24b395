package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Veraticus/pwds-expect/pkg/config"
	"github.com/Veraticus/pwds-expect/pkg/process"
	"github.com/Veraticus/pwds-expect/pkg/runner"
	"github.com/Veraticus/pwds-expect/pkg/testutil"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.PromptTimeout = 50 * time.Millisecond
	return cfg
}

func TestApplicationRun(t *testing.T) {
	session := testutil.NewMockSession([]string{"Enter password for s: ", "Name: "}, []string{"added github"})
	spawner := testutil.NewMockSpawner(session)

	scriptPath := filepath.Join(t.TempDir(), "add.yaml")
	if err := os.WriteFile(scriptPath, []byte("prompts:\n  - prompt: \"Name: \"\n    input: \"github\"\n"), 0600); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	app := NewApplication(testConfig(), stdout, stderr)
	app.spawner = spawner

	res, err := app.Run(Options{
		SafeFile:        "/tmp/s.safe",
		Command:         []string{"add"},
		Secret:          "TestPass",
		PasswordPrompts: []string{"Enter password for .*: "},
		ScriptPath:      scriptPath,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stdout.String() != "added github\n" {
		t.Errorf("unexpected stdout %q", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Errorf("expected no diagnostics without verbose but got %q", stderr.String())
	}
	if res.Sent() != 2 {
		t.Errorf("expected 2 replies but got %d", res.Sent())
	}
	if diff := cmp.Diff([]string{"TestPass", "github"}, session.GetSent()); diff != "" {
		t.Errorf("sent mismatch (-want +got):\n%s", diff)
	}

	invs := spawner.GetInvocations()
	if len(invs) != 1 {
		t.Fatalf("expected 1 spawn but got %d", len(invs))
	}
	if diff := cmp.Diff([]string{"add", "--file", "/tmp/s.safe"}, invs[0].Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	if invs[0].Executable != "pwds" {
		t.Errorf("expected executable pwds but got %q", invs[0].Executable)
	}
}

func TestApplicationRunVerbose(t *testing.T) {
	session := testutil.NewMockSession(nil, []string{"usage: pwds"})
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	app := NewApplication(testConfig(), stdout, stderr)
	app.spawner = testutil.NewMockSpawner(session)

	_, err := app.Run(Options{
		PasswordPrompts: []string{"Enter password for .*: "},
		Verbose:         true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stderr.String(), "timed out") {
		t.Errorf("expected step outcome in diagnostics, got %q", stderr.String())
	}
	if !strings.Contains(stdout.String(), "usage") {
		t.Errorf("expected usage on stdout, got %q", stdout.String())
	}
}

func TestApplicationRunErrors(t *testing.T) {
	t.Run("spawn error", func(t *testing.T) {
		spawner := testutil.NewMockSpawner(nil)
		spawner.SetError(&process.SpawnError{Path: "pwds", Err: errors.New("not found")})

		app := NewApplication(testConfig(), &bytes.Buffer{}, &bytes.Buffer{})
		app.spawner = spawner

		res, err := app.Run(Options{Command: []string{"show"}})
		if err == nil {
			t.Fatal("expected error but got none")
		}
		if exitCode(res) != 1 {
			t.Errorf("expected exit code 1 but got %d", exitCode(res))
		}
	})

	t.Run("missing script file", func(t *testing.T) {
		spawner := testutil.NewMockSpawner(testutil.NewMockSession(nil, nil))

		app := NewApplication(testConfig(), &bytes.Buffer{}, &bytes.Buffer{})
		app.spawner = spawner

		if _, err := app.Run(Options{ScriptPath: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
			t.Fatal("expected error but got none")
		}
		if len(spawner.GetInvocations()) != 0 {
			t.Error("should not spawn with a broken script")
		}
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		res  *runner.Result
		want int
	}{
		{name: "no result", res: nil, want: 1},
		{name: "success", res: &runner.Result{ExitCode: 0}, want: 0},
		{name: "program failure", res: &runner.Result{ExitCode: 2}, want: 2},
		{name: "killed", res: &runner.Result{ExitCode: -1}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.res); got != tt.want {
				t.Errorf("expected %d but got %d", tt.want, got)
			}
		})
	}
}

func TestApplicationRunFakePwds(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Executable = testutil.WriteFakePwds(t)
	cfg.PromptTimeout = 2 * time.Second

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	app := NewApplication(cfg, stdout, stderr)

	res, err := app.Run(Options{
		SafeFile:        filepath.Join(t.TempDir(), "test.safe"),
		Command:         []string{"show", "--raw"},
		Secret:          "TestPass",
		PasswordPrompts: []string{"Enter new .*: ", "Confirm .*: "},
		Verbose:         true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stdout.String() != "[]\n" {
		t.Errorf("expected %q on stdout but got %q", "[]\n", stdout.String())
	}
	if res.ExitCode != 0 {
		t.Errorf("expected exit code 0 but got %d", res.ExitCode)
	}
	if !strings.Contains(stderr.String(), "pwds-expect: < []") {
		t.Errorf("expected live output in diagnostics, got %q", stderr.String())
	}
	if !regexp.MustCompile(`pwds-expect: [1-9][0-9]* bytes of output, quiet for `).MatchString(stderr.String()) {
		t.Errorf("expected output statistics in diagnostics, got %q", stderr.String())
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("device gone")
}

func TestReadFirstLine(t *testing.T) {
	tests := []struct {
		name    string
		input   io.Reader
		want    string
		wantErr bool
	}{
		{name: "line", input: strings.NewReader("TestPass\nrest\n"), want: "TestPass"},
		{name: "crlf", input: strings.NewReader("TestPass\r\n"), want: "TestPass"},
		{name: "no newline", input: strings.NewReader("TestPass"), want: "TestPass"},
		{name: "empty", input: strings.NewReader(""), want: ""},
		{name: "read error", input: failingReader{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readFirstLine(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q but got %q", tt.want, got)
			}
		})
	}
}

func TestIsatty(t *testing.T) {
	// The result depends on how the tests are run; only check it does not panic
	_ = isatty(os.Stdin.Fd())

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		t.Skipf("cannot open %s: %v", os.DevNull, err)
	}
	defer func() { _ = devNull.Close() }()

	if isatty(devNull.Fd()) {
		t.Errorf("%s should not be reported as a terminal", os.DevNull)
	}
}
