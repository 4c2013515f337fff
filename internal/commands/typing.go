package commands

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	typingInterval = 150 * time.Millisecond
	typingDots     = 3

	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"
	clearLine  = "\r\033[K"
)

var (
	dotLitStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	dotRestStyle = lipgloss.NewStyle().Foreground(colorTextMute)
	typingStyle  = lipgloss.NewStyle().Foreground(colorTextDim).Italic(true)
	elapsedStyle = lipgloss.NewStyle().Foreground(colorTextMute)
)

// typingIndicator draws the "AI29 is typing" line while a message is in
// flight. One dot is lit per frame, then all rest for a frame.
type typingIndicator struct {
	out   io.Writer
	label string

	mu      sync.Mutex
	frame   int
	began   time.Time
	stopped bool
	stop    chan struct{}
	done    chan struct{}
}

func newTypingIndicator(out io.Writer, label string) *typingIndicator {
	return &typingIndicator{
		out:   out,
		label: label,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// run starts drawing in the background; the first frame is drawn at once
func (t *typingIndicator) run() {
	t.mu.Lock()
	t.began = time.Now()
	fmt.Fprint(t.out, hideCursor)
	t.draw()
	t.mu.Unlock()

	go t.loop()
}

func (t *typingIndicator) loop() {
	defer close(t.done)

	ticker := time.NewTicker(typingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			fmt.Fprint(t.out, clearLine+showCursor)
			return
		case <-ticker.C:
			t.mu.Lock()
			t.frame++
			t.draw()
			t.mu.Unlock()
		}
	}
}

// draw writes the current frame. Callers hold t.mu.
func (t *typingIndicator) draw() {
	lit := t.frame % (typingDots + 1)

	var dots strings.Builder
	for i := 0; i < typingDots; i++ {
		if i > 0 {
			dots.WriteByte(' ')
		}
		if i == lit {
			dots.WriteString(dotLitStyle.Render("●"))
		} else {
			dots.WriteString(dotRestStyle.Render("•"))
		}
	}

	line := dots.String() + "  " + typingStyle.Render(t.label)
	if elapsed := time.Since(t.began).Truncate(time.Second); elapsed >= time.Second {
		line += " " + elapsedStyle.Render(elapsed.String())
	}
	fmt.Fprint(t.out, clearLine+line)
}

// halt stops the loop once and waits for it to restore the cursor
func (t *typingIndicator) halt() {
	t.mu.Lock()
	if !t.stopped {
		close(t.stop)
		t.stopped = true
	}
	t.mu.Unlock()
	<-t.done
}

// finish clears the line and prints a success note
func (t *typingIndicator) finish(message string) {
	t.halt()
	fmt.Fprintln(t.out, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ "+message))
}

// abort clears the line, leaving room for the error report
func (t *typingIndicator) abort() {
	t.halt()
}
