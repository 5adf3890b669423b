// pkg/session/logbuffer_test.go
package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newDetachedBuffer builds a buffer without a live tab, so tests can feed
// the handler directly.
func newDetachedBuffer(format FormatFunc, opts ...BufferOption) *LogBuffer {
	b := &LogBuffer{
		event:  "test",
		format: format,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func passthrough(ev interface{}) (string, error) {
	s, ok := ev.(string)
	if !ok {
		return "", ErrSkipEvent
	}
	return s, nil
}

func TestLogBufferPreservesDeliveryOrder(t *testing.T) {
	b := newDetachedBuffer(passthrough)

	const n = 100
	want := make([]string, 0, n)
	for i := 0; i < n; i++ {
		line := fmt.Sprintf("event-%03d", i)
		want = append(want, line)
		b.handle(line)
	}

	got := b.Entries()
	require.Len(t, got, n)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("buffer order mismatch (-want +got):\n%s", diff)
	}
}

func TestLogBufferFailSoft(t *testing.T) {
	// The formatter blows up on one event; the buffer must keep recording
	// everything delivered afterwards.
	format := func(ev interface{}) (string, error) {
		s := ev.(string)
		if s == "poison" {
			return "", fmt.Errorf("unexpected event shape")
		}
		return s, nil
	}
	b := newDetachedBuffer(format)

	b.handle("before")
	b.handle("poison")
	b.handle("after-1")
	b.handle("after-2")

	assert.Equal(t, []string{"before", "after-1", "after-2"}, b.Entries())
}

func TestLogBufferSkipsForeignEvents(t *testing.T) {
	b := newDetachedBuffer(passthrough)

	b.handle(42)
	b.handle(struct{}{})
	b.handle("kept")

	assert.Equal(t, []string{"kept"}, b.Entries())
	assert.Equal(t, 0, b.Dropped())
}

func TestLogBufferCap(t *testing.T) {
	b := newDetachedBuffer(passthrough, WithMaxEntries(2))

	b.handle("one")
	b.handle("two")
	b.handle("three")
	b.handle("four")

	// Existing entries survive untouched; overflow is counted, not stored.
	assert.Equal(t, []string{"one", "two"}, b.Entries())
	assert.Equal(t, 2, b.Dropped())
	assert.Equal(t, 2, b.Len())
}

func TestLogBufferEntriesReturnsCopy(t *testing.T) {
	b := newDetachedBuffer(passthrough)
	b.handle("original")

	snapshot := b.Entries()
	snapshot[0] = "mutated"

	assert.Equal(t, []string{"original"}, b.Entries())
}

func TestLogBufferConcurrentReadsDuringAppends(t *testing.T) {
	b := newDetachedBuffer(passthrough)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			b.handle(fmt.Sprintf("line-%d", i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = b.Entries()
			_ = b.Len()
		}
	}()
	wg.Wait()

	assert.Equal(t, 500, b.Len())
}
