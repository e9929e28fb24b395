package main

import (
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/pwds-expect/pkg/config"
	"github.com/Veraticus/pwds-expect/pkg/interfaces"
	"github.com/Veraticus/pwds-expect/pkg/monitor"
	"github.com/Veraticus/pwds-expect/pkg/process"
	"github.com/Veraticus/pwds-expect/pkg/runner"
	"github.com/Veraticus/pwds-expect/pkg/script"
	"github.com/Veraticus/pwds-expect/pkg/types"
)

// Options describes one scripted run
type Options struct {
	SafeFile        string
	Command         []string
	Secret          string
	PasswordPrompts []string
	ScriptPath      string
	Verbose         bool
}

// Application represents the main application
type Application struct {
	config  *config.Config
	stdout  io.Writer
	stderr  io.Writer
	spawner interfaces.Spawner
}

// NewApplication creates a new application writing lines to stdout and
// diagnostics to stderr
func NewApplication(cfg *config.Config, stdout, stderr io.Writer) *Application {
	return &Application{
		config: cfg,
		stdout: stdout,
		stderr: stderr,
	}
}

// Run runs the scripted session and prints its output lines
func (a *Application) Run(opts Options) (*runner.Result, error) {
	s, err := buildScript(opts)
	if err != nil {
		return nil, err
	}

	args := append([]string{}, opts.Command...)
	if opts.SafeFile != "" {
		args = append(args, "--file", opts.SafeFile)
	}
	inv := types.Invocation{Executable: a.config.Executable, Args: args}

	spawner := a.spawner
	var om *monitor.OutputMonitor
	if spawner == nil {
		var handler interfaces.DataHandler
		if opts.Verbose {
			om = monitor.NewOutputMonitor(func(line string) {
				fmt.Fprintf(a.stderr, "pwds-expect: < %s\n", line)
			})
			handler = om
		}
		spawner = process.NewDriver(a.config, handler)
	}

	if opts.Verbose {
		fmt.Fprintf(a.stderr, "pwds-expect: running %s\n", inv)
	}

	res, err := runner.New(a.config, spawner).RunDetailed(inv, opts.Secret, s)
	if err != nil {
		return nil, err
	}

	if om != nil {
		om.Flush()
	}

	if opts.Verbose {
		for i, step := range res.Steps {
			fmt.Fprintf(a.stderr, "pwds-expect: step %d %s %q: %s\n", i, step.Step.Kind, step.Step.Pattern, step.Outcome)
		}
		fmt.Fprintf(a.stderr, "pwds-expect: exit code %d\n", res.ExitCode)
		if om != nil {
			fmt.Fprintf(a.stderr, "pwds-expect: %d bytes of output, quiet for %v\n",
				om.TotalBytes(), time.Since(om.GetLastOutputTime()).Round(time.Millisecond))
		}
	}

	for _, line := range res.Lines {
		fmt.Fprintln(a.stdout, line)
	}

	return res, nil
}

// buildScript puts the password prompts first, then the script file steps
func buildScript(opts Options) (*script.Script, error) {
	s := script.New(opts.PasswordPrompts, nil)
	if opts.ScriptPath == "" {
		return s, nil
	}

	loaded, err := script.LoadFile(opts.ScriptPath)
	if err != nil {
		return nil, err
	}
	s.Steps = append(s.Steps, loaded.Steps...)
	return s, nil
}

// exitCode maps a session result to the process exit status
func exitCode(res *runner.Result) int {
	if res == nil {
		return 1
	}
	if res.ExitCode < 0 {
		return 1
	}
	return res.ExitCode
}
