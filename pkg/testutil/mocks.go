package testutil

import (
	"regexp"
	"sync"
	"time"

	"github.com/Veraticus/pwds-expect/pkg/interfaces"
	"github.com/Veraticus/pwds-expect/pkg/process"
	"github.com/Veraticus/pwds-expect/pkg/types"
)

// MockSession is a simulated program under test. It emits the given prompts
// in order and hands out the given lines when drained.
type MockSession struct {
	mu          sync.Mutex
	prompts     []string
	pos         int
	lines       []string
	streamEnded bool
	sendErr     error
	exitCode    int

	sent        []string
	expectCalls []string
	closeCount  int
	drained     bool
}

// Ensure MockSession implements interfaces.Session
var _ interfaces.Session = (*MockSession)(nil)

// NewMockSession creates a new mock session
func NewMockSession(prompts []string, lines []string) *MockSession {
	return &MockSession{
		prompts: prompts,
		lines:   lines,
	}
}

// Expect implements the Session interface. A pattern that does not match the
// next prompt times out immediately instead of waiting.
func (m *MockSession) Expect(pattern *regexp.Regexp, timeout time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expectCalls = append(m.expectCalls, pattern.String())

	if m.closeCount > 0 {
		return false, process.ErrStreamEnded
	}
	if m.pos < len(m.prompts) && pattern.MatchString(m.prompts[m.pos]) {
		m.pos++
		return true, nil
	}
	if m.pos >= len(m.prompts) && m.streamEnded {
		return false, process.ErrStreamEnded
	}
	return false, process.ErrPromptTimeout
}

// SendLine implements the Session interface
func (m *MockSession) SendLine(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closeCount > 0 {
		return process.ErrSessionClosed
	}
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, text)
	return nil
}

// DrainLines implements the Session interface
func (m *MockSession) DrainLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.drained {
		return nil
	}
	m.drained = true
	m.closeCount++

	result := make([]string, len(m.lines))
	copy(result, m.lines)
	return result
}

// Close implements the Session interface
func (m *MockSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCount++
	return nil
}

// ExitCode implements the Session interface
func (m *MockSession) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exitCode
}

// SetStreamEnded makes Expect report end of stream once all prompts are used
func (m *MockSession) SetStreamEnded(ended bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamEnded = ended
}

// SetSendError sets the error to return on SendLine calls
func (m *MockSession) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SetExitCode sets the exit code reported by ExitCode
func (m *MockSession) SetExitCode(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exitCode = code
}

// GetSent returns a copy of the lines sent to the session
func (m *MockSession) GetSent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]string, len(m.sent))
	copy(result, m.sent)
	return result
}

// GetExpectCalls returns the patterns passed to Expect, in order
func (m *MockSession) GetExpectCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]string, len(m.expectCalls))
	copy(result, m.expectCalls)
	return result
}

// GetCloseCount returns how many times the session was closed, draining included
func (m *MockSession) GetCloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCount
}

// MockSpawner hands out a prepared session
type MockSpawner struct {
	mu          sync.Mutex
	session     interfaces.Session
	spawnErr    error
	invocations []types.Invocation
}

// Ensure MockSpawner implements interfaces.Spawner
var _ interfaces.Spawner = (*MockSpawner)(nil)

// NewMockSpawner creates a spawner that returns session
func NewMockSpawner(session interfaces.Session) *MockSpawner {
	return &MockSpawner{session: session}
}

// Spawn implements the Spawner interface
func (m *MockSpawner) Spawn(inv types.Invocation) (interfaces.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.invocations = append(m.invocations, inv)
	if m.spawnErr != nil {
		return nil, m.spawnErr
	}
	return m.session, nil
}

// SetError sets the error to return on Spawn calls
func (m *MockSpawner) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spawnErr = err
}

// GetInvocations returns a copy of every invocation passed to Spawn
func (m *MockSpawner) GetInvocations() []types.Invocation {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]types.Invocation, len(m.invocations))
	copy(result, m.invocations)
	return result
}
