// Package interfaces defines the core interfaces used throughout the application.
package interfaces

import (
	"regexp"
	"time"

	"github.com/Veraticus/pwds-expect/pkg/types"
)

// Session is a live interactive process.
type Session interface {
	Expect(pattern *regexp.Regexp, timeout time.Duration) (bool, error)
	SendLine(text string) error
	DrainLines() []string
	Close() error
	ExitCode() int
}

// Spawner starts sessions.
type Spawner interface {
	Spawn(inv types.Invocation) (Session, error)
}

// DataHandler receives raw output chunks.
type DataHandler interface {
	HandleData(data []byte)
}
