package process

import (
	"os"

	"github.com/Veraticus/pwds-expect/pkg/config"
	"github.com/Veraticus/pwds-expect/pkg/interfaces"
	"github.com/Veraticus/pwds-expect/pkg/types"
)

// Driver spawns programs under test on a fresh PTY
type Driver struct {
	config        *config.Config
	outputHandler interfaces.DataHandler
	newPTY        func(cols, rows uint16) PTY
}

// Ensure Driver implements interfaces.Spawner
var _ interfaces.Spawner = (*Driver)(nil)

// NewDriver creates a new driver. outputHandler, if not nil, sees every raw
// chunk of output from the reader goroutine.
func NewDriver(cfg *config.Config, outputHandler interfaces.DataHandler) *Driver {
	return &Driver{
		config:        cfg,
		outputHandler: outputHandler,
		newPTY: func(cols, rows uint16) PTY {
			return NewPTYManager(cols, rows)
		},
	}
}

// Start starts the invocation and returns the live session
func (d *Driver) Start(inv types.Invocation) (*Session, error) {
	env := append(os.Environ(), d.config.Env...)
	env = append(env, inv.Env...)

	p := d.newPTY(d.config.Cols, d.config.Rows)
	if err := p.Start(inv.Executable, inv.Args, env, inv.Dir); err != nil {
		return nil, &SpawnError{Path: inv.Executable, Err: err}
	}

	debugf("spawned %s", inv)

	return newSession(p, d.outputHandler, d.config.ExitGrace), nil
}

// Spawn implements interfaces.Spawner
func (d *Driver) Spawn(inv types.Invocation) (interfaces.Session, error) {
	s, err := d.Start(inv)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Spawn starts inv with the default configuration
func Spawn(inv types.Invocation) (*Session, error) {
	return NewDriver(config.DefaultConfig(), nil).Start(inv)
}
