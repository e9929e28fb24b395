package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/Veraticus/pwds-expect/pkg/interfaces"
)

// Session is a process attached to a PTY together with its unread output.
// It is driven from a single goroutine; only Close may be called concurrently.
type Session struct {
	pty       PTY
	file      *os.File
	handler   interfaces.DataHandler
	exitGrace time.Duration

	chunks chan []byte
	stop   chan struct{}

	// unconsumed output
	buf     []byte
	ended   bool
	drained bool

	closeOnce sync.Once
	closeErr  error
}

// Ensure Session implements interfaces.Session
var _ interfaces.Session = (*Session)(nil)

func newSession(p PTY, handler interfaces.DataHandler, exitGrace time.Duration) *Session {
	s := &Session{
		pty:       p,
		file:      p.GetPTY(),
		handler:   handler,
		exitGrace: exitGrace,
		chunks:    make(chan []byte),
		stop:      make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// readLoop pumps PTY output into the chunk channel until the stream ends
func (s *Session) readLoop() {
	defer close(s.chunks)

	buf := make([]byte, 4096)
	for {
		n, err := s.file.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])

			if s.handler != nil {
				s.handler.HandleData(data)
			}

			select {
			case s.chunks <- data:
			case <-s.stop:
				return
			}
		}
		if err != nil {
			// Linux reports EIO on the master once the last slave fd is closed
			if !isEndOfStream(err) {
				debugf("read error: %v", err)
			}
			return
		}
	}
}

func isEndOfStream(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, unix.EIO) || errors.Is(err, os.ErrClosed)
}

// Expect waits until pattern matches the unconsumed output. On a match the
// output up to the end of the match is consumed. Otherwise the output stays
// buffered and ErrPromptTimeout or ErrStreamEnded is returned.
func (s *Session) Expect(pattern *regexp.Regexp, timeout time.Duration) (bool, error) {
	if pattern == nil {
		return false, fmt.Errorf("nil pattern")
	}
	if s.consume(pattern) {
		return true, nil
	}
	if s.ended {
		return false, ErrStreamEnded
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case data, ok := <-s.chunks:
			if !ok {
				s.ended = true
				return false, ErrStreamEnded
			}
			s.buf = append(s.buf, data...)
			if s.consume(pattern) {
				return true, nil
			}
		case <-timer.C:
			debugf("no match for %q within %v, buffered: %q", pattern.String(), timeout, s.buf)
			return false, ErrPromptTimeout
		case <-s.stop:
			s.ended = true
			return false, ErrStreamEnded
		}
	}
}

// consume drops buffered output through the end of the first match
func (s *Session) consume(pattern *regexp.Regexp) bool {
	loc := pattern.FindIndex(s.buf)
	if loc == nil {
		return false
	}
	s.buf = append([]byte(nil), s.buf[loc[1]:]...)
	return true
}

// SendLine writes text followed by a newline to the process
func (s *Session) SendLine(text string) error {
	select {
	case <-s.stop:
		return ErrSessionClosed
	default:
	}

	if _, err := s.file.Write([]byte(text + "\n")); err != nil {
		return fmt.Errorf("failed to write to PTY: %w", err)
	}
	return nil
}

// DrainLines reads the remaining output until the process closes it, then
// closes the session. Lines are returned without their line endings and
// empty lines are dropped. Later calls return nothing.
func (s *Session) DrainLines() []string {
	if s.drained {
		return nil
	}
	s.drained = true

	if !s.ended {
	loop:
		for {
			select {
			case data, ok := <-s.chunks:
				if !ok {
					break loop
				}
				s.buf = append(s.buf, data...)
			case <-s.stop:
				break loop
			}
		}
		s.ended = true
	}

	out := s.buf
	s.buf = nil

	if err := s.closeWith(s.exitGrace); err != nil {
		debugf("close after drain: %v", err)
	}

	return SplitLines(out)
}

// Close releases the PTY and makes sure the process is gone. It is safe to
// call more than once and from another goroutine.
func (s *Session) Close() error {
	return s.closeWith(0)
}

func (s *Session) closeWith(grace time.Duration) error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.closeErr = s.pty.Stop(grace)
	})
	return s.closeErr
}

// ExitCode returns the exit status of a finished session, or -1
func (s *Session) ExitCode() int {
	state := s.pty.ProcessState()
	if state == nil {
		return -1
	}
	return state.ExitCode()
}
