package process

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// PTYManager handles PTY-based process execution
type PTYManager struct {
	cmd    *exec.Cmd
	pty    *os.File
	mu     sync.Mutex
	size   *pty.Winsize
	waited bool
	err    error
}

// Ensure PTYManager implements PTY
var _ PTY = (*PTYManager)(nil)

// NewPTYManager creates a new PTY manager with the given window size
func NewPTYManager(cols, rows uint16) *PTYManager {
	return &PTYManager{
		size: &pty.Winsize{Cols: cols, Rows: rows},
	}
}

// Start starts a process with PTY
func (p *PTYManager) Start(command string, args []string, env []string, dir string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return fmt.Errorf("process already started")
	}

	cmd := exec.Command(command, args...)
	cmd.Env = env
	cmd.Dir = dir

	// Start the command with a PTY
	f, err := pty.StartWithSize(cmd, p.size)
	if err != nil {
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	p.cmd = cmd
	p.pty = f
	return nil
}

// GetPTY returns the PTY file descriptor
func (p *PTYManager) GetPTY() *os.File {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pty
}

// waitLocked reaps the process once. Exit errors are not reported; use
// ProcessState to read the exit status.
func (p *PTYManager) waitLocked() error {
	if p.waited {
		return p.err
	}
	p.waited = true

	if err := p.cmd.Wait(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			p.err = err
		}
	}
	return p.err
}

// ProcessState returns the process state
func (p *PTYManager) ProcessState() *os.ProcessState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil {
		return nil
	}
	return p.cmd.ProcessState
}

// Stop gives the process grace to exit on its own, kills it otherwise,
// then closes the PTY and reaps the process.
func (p *PTYManager) Stop(grace time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil {
		return nil
	}

	var err error
	if !p.waited {
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = p.waitLocked()
		}()

		timer := time.NewTimer(grace)
		select {
		case <-done:
			timer.Stop()
		case <-timer.C:
			if kerr := p.kill(); kerr != nil {
				err = fmt.Errorf("failed to kill process: %w", kerr)
			}
			<-done
		}
	}

	if p.pty != nil {
		if cerr := p.pty.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close PTY: %w", cerr)
		}
		p.pty = nil
	}

	return err
}

// kill kills the process group so grandchildren holding the PTY go too.
// The process leads its own session, so its pid is the group id.
func (p *PTYManager) kill() error {
	if err := unix.Kill(-p.cmd.Process.Pid, unix.SIGKILL); err == nil {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil && err != os.ErrProcessDone {
		return err
	}
	return nil
}
