// Package monitor follows a session's raw output as it arrives.
package monitor

import (
	"bytes"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/pwds-expect/pkg/interfaces"
)

// LineHandler receives one complete line of output
type LineHandler func(line string)

// OutputMonitor assembles raw output chunks into lines and passes every
// non-empty line to its handler
type OutputMonitor struct {
	handler LineHandler

	mu             sync.Mutex
	lastOutputTime time.Time
	lineBuffer     bytes.Buffer
	totalBytes     int
}

// Ensure OutputMonitor implements interfaces.DataHandler
var _ interfaces.DataHandler = (*OutputMonitor)(nil)

// NewOutputMonitor creates a new output monitor
func NewOutputMonitor(handler LineHandler) *OutputMonitor {
	return &OutputMonitor{
		handler:        handler,
		lastOutputTime: time.Now(),
	}
}

// HandleData processes raw output data
func (om *OutputMonitor) HandleData(data []byte) {
	om.mu.Lock()
	defer om.mu.Unlock()

	om.lastOutputTime = time.Now()
	om.totalBytes += len(data)

	// Add data to line buffer
	om.lineBuffer.Write(data)

	// Process complete lines
	buffer := om.lineBuffer.Bytes()
	start := 0
	for i := 0; i < len(buffer); i++ {
		if buffer[i] == '\n' {
			om.processLine(string(buffer[start:i]))
			start = i + 1
		}
	}

	// Keep any incomplete line in the buffer
	rest := append([]byte(nil), buffer[start:]...)
	om.lineBuffer.Reset()
	om.lineBuffer.Write(rest)
}

// processLine strips the terminal line ending and skips empty lines
func (om *OutputMonitor) processLine(line string) {
	line = strings.TrimSuffix(line, "\r")
	if line == "" || om.handler == nil {
		return
	}
	om.handler(line)
}

// Flush processes any remaining data in the buffer
func (om *OutputMonitor) Flush() {
	om.mu.Lock()
	defer om.mu.Unlock()

	if om.lineBuffer.Len() > 0 {
		om.processLine(om.lineBuffer.String())
		om.lineBuffer.Reset()
	}
}

// GetLastOutputTime returns the last time output was received
func (om *OutputMonitor) GetLastOutputTime() time.Time {
	om.mu.Lock()
	defer om.mu.Unlock()
	return om.lastOutputTime
}

// TotalBytes returns how much output has been seen
func (om *OutputMonitor) TotalBytes() int {
	om.mu.Lock()
	defer om.mu.Unlock()
	return om.totalBytes
}
