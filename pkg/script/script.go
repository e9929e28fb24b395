// Package script describes the prompts a session waits for and the lines
// sent back in reply.
package script

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/pwds-expect/pkg/types"
)

// Kind says what is sent once a step's prompt shows up
type Kind int

const (
	// SecretStep replies with the session secret
	SecretStep Kind = iota
	// InputStep replies with the step's own input line
	InputStep
)

func (k Kind) String() string {
	switch k {
	case SecretStep:
		return "secret"
	case InputStep:
		return "input"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Step is one expected prompt and its reply
type Step struct {
	Kind    Kind
	Pattern string
	Input   string

	compiled *regexp.Regexp
}

// CompiledRegex returns the compiled pattern, nil before Compile
func (s *Step) CompiledRegex() *regexp.Regexp {
	return s.compiled
}

// Reply returns the line to send for this step
func (s *Step) Reply(secret string) string {
	if s.Kind == SecretStep {
		return secret
	}
	return s.Input
}

// Script is an ordered list of steps
type Script struct {
	Steps []Step
}

// New builds a script that answers every password prompt with the secret
// and then answers each prompt/input pair with its input.
func New(passwordPrompts []string, promptsAndInputs []types.PromptInput) *Script {
	steps := make([]Step, 0, len(passwordPrompts)+len(promptsAndInputs))
	for _, prompt := range passwordPrompts {
		steps = append(steps, Step{Kind: SecretStep, Pattern: prompt})
	}
	for _, pi := range promptsAndInputs {
		steps = append(steps, Step{Kind: InputStep, Pattern: pi.Prompt, Input: pi.Input})
	}
	return &Script{Steps: steps}
}

// Compile compiles every step pattern
func (s *Script) Compile() error {
	for i := range s.Steps {
		step := &s.Steps[i]
		re, err := regexp.Compile(step.Pattern)
		if err != nil {
			return fmt.Errorf("failed to compile step %d pattern %q: %w", i, step.Pattern, err)
		}
		step.compiled = re
	}
	return nil
}

// File is the YAML form of a script
type File struct {
	PasswordPrompts []string            `yaml:"password_prompts"`
	Prompts         []types.PromptInput `yaml:"prompts"`
}

// Parse decodes a YAML script
func Parse(data []byte) (*Script, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	s := New(f.PasswordPrompts, f.Prompts)
	if err := s.Compile(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile reads and decodes a YAML script file
func LoadFile(path string) (*Script, error) {
	// #nosec G304 - script path is given by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}
