package commands

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// lockedBuffer lets the test read while the indicator goroutine writes
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTypingIndicator_Finish(t *testing.T) {
	var out lockedBuffer
	ti := newTypingIndicator(&out, "AI29 is typing")
	ti.run()
	time.Sleep(2 * typingInterval)
	ti.finish("Reply received")

	got := out.String()
	if !strings.HasPrefix(got, hideCursor) {
		t.Errorf("cursor should be hidden first, got %q", got)
	}
	if !strings.Contains(got, "AI29 is typing") {
		t.Errorf("expected label in output, got %q", got)
	}
	if !strings.Contains(got, "Reply received") {
		t.Errorf("expected success message in output, got %q", got)
	}
	if !strings.Contains(got, showCursor) {
		t.Error("cursor should be restored")
	}
}

func TestTypingIndicator_Abort(t *testing.T) {
	var out lockedBuffer
	ti := newTypingIndicator(&out, "AI29 is typing")
	ti.run()
	ti.abort()
	// a second stop must not close the channel again
	ti.halt()

	got := out.String()
	if strings.Contains(got, "✓") {
		t.Error("abort should not print a checkmark")
	}
	if !strings.HasSuffix(got, clearLine+showCursor) {
		t.Errorf("abort should leave a clean line, got %q", got)
	}
}

func TestTypingIndicator_ElapsedShownAfterOneSecond(t *testing.T) {
	var out lockedBuffer
	ti := newTypingIndicator(&out, "AI29 is typing")

	ti.mu.Lock()
	ti.began = time.Now().Add(-3 * time.Second)
	ti.draw()
	ti.mu.Unlock()

	if !strings.Contains(out.String(), "3s") {
		t.Errorf("expected elapsed time, got %q", out.String())
	}
}
