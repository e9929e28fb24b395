// Package runner drives one scripted session against the program under test
// and returns its normalized output lines.
package runner

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/pwds-expect/pkg/config"
	"github.com/Veraticus/pwds-expect/pkg/interfaces"
	"github.com/Veraticus/pwds-expect/pkg/process"
	"github.com/Veraticus/pwds-expect/pkg/script"
	"github.com/Veraticus/pwds-expect/pkg/types"
)

// Outcome is what happened while waiting for a step's prompt
type Outcome int

const (
	// Matched means the prompt appeared and the reply was sent
	Matched Outcome = iota
	// TimedOut means the prompt did not appear in time
	TimedOut
	// StreamEnded means the process closed its output first
	StreamEnded
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case TimedOut:
		return "timed out"
	case StreamEnded:
		return "stream ended"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// StepOutcome records how one step went
type StepOutcome struct {
	Step    script.Step
	Outcome Outcome
	SendErr error
}

// Result is everything a session produced
type Result struct {
	Lines    []string
	Steps    []StepOutcome
	ExitCode int
}

// Sent returns how many replies were written to the process
func (r *Result) Sent() int {
	n := 0
	for _, s := range r.Steps {
		if s.Outcome == Matched && s.SendErr == nil {
			n++
		}
	}
	return n
}

// Runner runs scripts against spawned sessions
type Runner struct {
	config  *config.Config
	spawner interfaces.Spawner
}

// New creates a runner. A nil spawner uses a PTY driver built from cfg.
func New(cfg *config.Config, spawner interfaces.Spawner) *Runner {
	if spawner == nil {
		spawner = process.NewDriver(cfg, nil)
	}
	return &Runner{
		config:  cfg,
		spawner: spawner,
	}
}

// Run runs the script and returns the output lines. Missing prompts are
// not errors; only a failure to spawn or an invalid script is.
func (r *Runner) Run(inv types.Invocation, secret string, s *script.Script) ([]string, error) {
	res, err := r.RunDetailed(inv, secret, s)
	if err != nil {
		return nil, err
	}
	return res.Lines, nil
}

// RunDetailed is Run with per-step outcomes and the exit code
func (r *Runner) RunDetailed(inv types.Invocation, secret string, s *script.Script) (*Result, error) {
	steps, err := compileSteps(s)
	if err != nil {
		return nil, err
	}

	session, err := r.spawner.Spawn(inv)
	if err != nil {
		return nil, err
	}
	defer func() { _ = session.Close() }()

	if r.config.SessionTimeout > 0 {
		watchdog := time.AfterFunc(r.config.SessionTimeout, func() {
			r.debugf("session exceeded %v, closing", r.config.SessionTimeout)
			_ = session.Close()
		})
		defer watchdog.Stop()
	}

	res := &Result{Steps: make([]StepOutcome, 0, len(steps))}
	for _, step := range steps {
		res.Steps = append(res.Steps, r.runStep(session, step, secret))
	}

	res.Lines = session.DrainLines()
	_ = session.Close()
	res.ExitCode = session.ExitCode()

	return res, nil
}

// runStep waits for the step's own prompt and sends its reply on a match
func (r *Runner) runStep(session interfaces.Session, step script.Step, secret string) StepOutcome {
	out := StepOutcome{Step: step}

	matched, err := session.Expect(step.CompiledRegex(), r.config.PromptTimeout)
	if !matched {
		switch {
		case errors.Is(err, process.ErrStreamEnded):
			out.Outcome = StreamEnded
		default:
			out.Outcome = TimedOut
		}
		r.debugf("skipping %s step %q: %v", step.Kind, step.Pattern, err)
		return out
	}

	out.Outcome = Matched
	if err := session.SendLine(step.Reply(secret)); err != nil {
		out.SendErr = err
		r.debugf("send for %q failed: %v", step.Pattern, err)
	}
	return out
}

// compileSteps compiles a copy of the script so the caller's stays untouched
func compileSteps(s *script.Script) ([]script.Step, error) {
	if s == nil {
		return nil, nil
	}
	c := &script.Script{Steps: append([]script.Step(nil), s.Steps...)}
	if err := c.Compile(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return c.Steps, nil
}

func (r *Runner) debugf(format string, args ...any) {
	if r.config.Debug {
		fmt.Fprintf(os.Stderr, "pwds-expect: "+format+"\n", args...)
	}
}
