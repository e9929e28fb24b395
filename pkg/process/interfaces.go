package process

import (
	"os"
	"time"
)

// PTY defines the interface for PTY operations
type PTY interface {
	Start(command string, args []string, env []string, dir string) error
	Stop(grace time.Duration) error
	ProcessState() *os.ProcessState
	GetPTY() *os.File
}
