// pkg/session/logbuffer.go
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ErrSkipEvent is returned by a FormatFunc for events it does not care
// about. Skipped events produce no buffer entry and no diagnostic noise.
var ErrSkipEvent = errors.New("session: event skipped by formatter")

// FormatFunc turns a CDP event into one buffer record. Returning ErrSkipEvent
// filters the event out; any other error drops only that record.
type FormatFunc func(ev interface{}) (string, error)

// LogBuffer is an append-only, event-driven record of formatted strings.
// It subscribes to the session's tab event stream at construction and grows
// for the lifetime of the owning session. Past entries never change value or
// order; append order equals delivery order.
type LogBuffer struct {
	event  string
	format FormatFunc
	logger *zap.Logger

	mu      sync.Mutex
	entries []string
	max     int
	dropped int
}

// BufferOption configures a LogBuffer.
type BufferOption func(*LogBuffer)

// WithMaxEntries caps the buffer for long-running sessions. Once full,
// further records are counted but not stored; existing entries are never
// truncated or reordered.
func WithMaxEntries(n int) BufferOption {
	return func(b *LogBuffer) { b.max = n }
}

// NewLogBuffer registers a listener on the tab context and returns the
// buffer. The listener is detached implicitly when the tab context ends.
func NewLogBuffer(tabCtx context.Context, logger *zap.Logger, event string, format FormatFunc, opts ...BufferOption) *LogBuffer {
	b := &LogBuffer{
		event:  event,
		format: format,
		logger: logger.Named("logbuffer").With(zap.String("event", event)),
	}
	for _, opt := range opts {
		opt(b)
	}
	chromedp.ListenTarget(tabCtx, b.handle)
	return b
}

// handle is the single writer. A formatter failure drops that one record and
// the listener stays registered; a test run must not die on an unexpected
// event shape.
func (b *LogBuffer) handle(ev interface{}) {
	line, err := b.format(ev)
	if err != nil {
		if !errors.Is(err, ErrSkipEvent) {
			b.logger.Debug("Dropping log record after formatter failure.", zap.Error(err))
		}
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max > 0 && len(b.entries) >= b.max {
		b.dropped++
		return
	}
	b.entries = append(b.entries, line)
}

// Entries returns a copy of everything appended so far, in delivery order.
func (b *LogBuffer) Entries() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len reports the number of buffered records.
func (b *LogBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Dropped reports how many records were discarded by the cap.
func (b *LogBuffer) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Event names the stream this buffer listens to.
func (b *LogBuffer) Event() string { return b.event }
