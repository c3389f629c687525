package core

import (
	"sync"

	"github.com/hupe1980/turnstream/logging"
)

// ErrorReporter is the single sink for failures outside the stream path
// (resource reconciliation, deletions).
type ErrorReporter interface {
	Report(err error)
}

// LogReporter reports errors through a logging.Logger. It guarantees a
// non-nil logger by substituting a NoOpLogger when constructed with nil.
type LogReporter struct {
	logger logging.Logger
}

// NewLogReporter constructs a LogReporter.
func NewLogReporter(l logging.Logger) *LogReporter {
	if l == nil {
		l = logging.NoOpLogger{}
	}
	return &LogReporter{logger: l}
}

// Report logs err at error level. Nil errors are ignored.
func (r *LogReporter) Report(err error) {
	if err == nil {
		return
	}
	r.logger.Error("operation failed", "error", err.Error())
}

// Collector records reported errors in memory.
type Collector struct {
	mu   sync.Mutex
	errs []error
}

// Report appends err. Nil errors are ignored.
func (c *Collector) Report(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

// Errors returns a copy of the collected errors.
func (c *Collector) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.errs...)
}
