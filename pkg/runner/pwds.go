package runner

import (
	"github.com/Veraticus/pwds-expect/pkg/config"
	"github.com/Veraticus/pwds-expect/pkg/interfaces"
	"github.com/Veraticus/pwds-expect/pkg/script"
	"github.com/Veraticus/pwds-expect/pkg/types"
)

// Option configures RunPwds
type Option func(*options)

type options struct {
	config  *config.Config
	spawner interfaces.Spawner
	env     []string
}

// WithConfig sets the configuration used for timeouts and terminal size
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithSpawner replaces the PTY driver
func WithSpawner(s interfaces.Spawner) Option {
	return func(o *options) {
		o.spawner = s
	}
}

// WithEnv appends KEY=VALUE entries to the spawned environment
func WithEnv(env ...string) Option {
	return func(o *options) {
		o.env = append(o.env, env...)
	}
}

// RunPwds runs executable with the whitespace separated command, answers
// each password prompt with secret and each prompt/input pair with its
// input, and returns the remaining output lines.
func RunPwds(executable, command, secret string, passwordPrompts []string, promptsAndInputs []types.PromptInput, opts ...Option) ([]string, error) {
	o := options{config: config.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	inv := types.NewInvocation(executable, command).WithEnv(o.env...)
	return New(o.config, o.spawner).Run(inv, secret, script.New(passwordPrompts, promptsAndInputs))
}
