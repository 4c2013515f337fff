package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/ai29/internal/controller"
)

// Messages produced by the controller through the Bridge
type (
	snapshotMsg     struct{ snapshot controller.Snapshot }
	indicatorMsg    bool
	clearInputMsg   struct{}
	focusInputMsg   struct{}
	scrollBottomMsg struct{}
)

// Bridge implements controller.View by forwarding every call into a
// running bubbletea program. Calls made before Attach are dropped; the
// program pulls the current snapshot when it starts.
type Bridge struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

var _ controller.View = (*Bridge)(nil)

// NewBridge creates a detached bridge
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach routes view calls to p
func (b *Bridge) Attach(p *tea.Program) {
	b.AttachFunc(p.Send)
}

// AttachFunc routes view calls to send
func (b *Bridge) AttachFunc(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
}

func (b *Bridge) emit(msg tea.Msg) {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (b *Bridge) Render(s controller.Snapshot) { b.emit(snapshotMsg{snapshot: s}) }
func (b *Bridge) SetIndicator(visible bool)    { b.emit(indicatorMsg(visible)) }
func (b *Bridge) ClearInput()                  { b.emit(clearInputMsg{}) }
func (b *Bridge) FocusInput()                  { b.emit(focusInputMsg{}) }
func (b *Bridge) ScrollToBottom()              { b.emit(scrollBottomMsg{}) }
