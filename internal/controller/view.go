package controller

import "github.com/diogo/ai29/internal/models"

// Snapshot is a consistent copy of the controller state
type Snapshot struct {
	Messages []models.Message
	// Indicator is true while at least one submission is in flight
	Indicator bool
	InFlight  int
	// Version increases with every state change
	Version uint64
}

// Last returns the newest message, or false when the list is empty
func (s Snapshot) Last() (models.Message, bool) {
	if len(s.Messages) == 0 {
		return models.Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// View is the display the controller drives. Calls are serialized and
// arrive in state order. Implementations must not call back into
// Initialize, Submit or NewChat from inside these methods.
type View interface {
	Render(s Snapshot)
	SetIndicator(visible bool)
	ClearInput()
	FocusInput()
	ScrollToBottom()
}

// NopView discards every call
type NopView struct{}

func (NopView) Render(Snapshot)   {}
func (NopView) SetIndicator(bool) {}
func (NopView) ClearInput()       {}
func (NopView) FocusInput()       {}
func (NopView) ScrollToBottom()   {}

var _ View = NopView{}
