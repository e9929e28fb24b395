package process

import (
	"errors"
	"fmt"
)

var (
	// ErrPromptTimeout is returned by Expect when the pattern did not show up in time
	ErrPromptTimeout = errors.New("timed out waiting for prompt")

	// ErrStreamEnded is returned by Expect when the process closed its output first
	ErrStreamEnded = errors.New("output stream ended")

	// ErrSessionClosed is returned when writing to a finished session
	ErrSessionClosed = errors.New("session closed")
)

// SpawnError reports that the executable could not be started
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
