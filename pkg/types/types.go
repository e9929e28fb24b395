// Package types contains shared data structures used across the application.
package types

import "strings"

// Invocation describes how to start the program under test
type Invocation struct {
	Executable string
	Args       []string
	Env        []string
	Dir        string
}

// NewInvocation builds an invocation from a whitespace separated command string.
// The extra arguments are appended after the command tokens.
func NewInvocation(executable, command string, extra ...string) Invocation {
	args := strings.Fields(command)
	args = append(args, extra...)
	return Invocation{
		Executable: executable,
		Args:       args,
	}
}

// WithEnv returns a copy of the invocation with env appended
func (inv Invocation) WithEnv(env ...string) Invocation {
	merged := make([]string, 0, len(inv.Env)+len(env))
	merged = append(merged, inv.Env...)
	merged = append(merged, env...)
	inv.Env = merged
	return inv
}

// String renders the command line for diagnostics
func (inv Invocation) String() string {
	return strings.Join(append([]string{inv.Executable}, inv.Args...), " ")
}

// PromptInput pairs an expected prompt with the line sent in reply
type PromptInput struct {
	Prompt string `yaml:"prompt"`
	Input  string `yaml:"input"`
}
