package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/diogo/ai29/internal/controller"
	"github.com/diogo/ai29/internal/history"
	"github.com/diogo/ai29/internal/models"
	"github.com/diogo/ai29/internal/render"
)

// ChatController is the part of the chat controller the TUI drives
type ChatController interface {
	Initialize(ctx context.Context) error
	Submit(ctx context.Context, text string) (models.Message, error)
	NewChat(ctx context.Context) error
	Snapshot() controller.Snapshot
}

// Results of controller operations started from the TUI. Their effects on
// the message list arrive separately as snapshots.
type (
	initDoneMsg    struct{ err error }
	submitDoneMsg  struct{ err error }
	newChatDoneMsg struct{ err error }
	noticeMsg      string
)

// Options configures the chat TUI
type Options struct {
	ServerURL string
	Markdown  render.Options
	// CopyFunc writes to the system clipboard (default: clipboard.WriteAll)
	CopyFunc func(string) error
	Logger   zerolog.Logger
}

// Model represents the TUI state
type Model struct {
	ctx  context.Context
	ctrl ChatController
	opts Options

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	messages  []models.Message
	indicator bool
	ready     bool
	notice    string

	width  int
	height int
}

// NewModel creates the chat model showing ctrl's current state
func NewModel(ctx context.Context, ctrl ChatController, opts Options) Model {
	if opts.CopyFunc == nil {
		opts.CopyFunc = clipboard.WriteAll
	}
	if opts.Markdown.Width == 0 {
		opts.Markdown = render.DefaultOptions()
	}

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	snap := ctrl.Snapshot()
	return Model{
		ctx:       ctx,
		ctrl:      ctrl,
		opts:      opts,
		textarea:  ta,
		spinner:   s,
		messages:  snap.Messages,
		indicator: snap.Indicator,
	}
}

// Init loads the conversation history
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.initialize(),
	)
}

func (m Model) initialize() tea.Cmd {
	return func() tea.Msg {
		return initDoneMsg{err: m.ctrl.Initialize(m.ctx)}
	}
}

func (m Model) submit(text string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.ctrl.Submit(m.ctx, text)
		return submitDoneMsg{err: err}
	}
}

func (m Model) newChat() tea.Cmd {
	return func() tea.Msg {
		return newChatDoneMsg{err: m.ctrl.NewChat(m.ctx)}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 7
		statusHeight := 1
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()
		m.viewport.GotoBottom()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+n":
			return m, m.newChat()

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if next, cmd, ok := m.handleCommand(input); ok {
				return next, cmd
			}
			m.notice = ""
			m.textarea.Reset()
			return m, m.submit(input)
		}

	case snapshotMsg:
		m.messages = msg.snapshot.Messages
		m.indicator = msg.snapshot.Indicator
		m.updateViewport()

	case indicatorMsg:
		m.indicator = bool(msg)
		if m.indicator {
			cmds = append(cmds, m.spinner.Tick)
		}

	case clearInputMsg:
		m.textarea.Reset()

	case focusInputMsg:
		cmds = append(cmds, m.textarea.Focus())

	case scrollBottomMsg:
		m.viewport.GotoBottom()

	case initDoneMsg:
		if msg.err != nil {
			m.notice = "Could not load chat history"
		}

	case submitDoneMsg, newChatDoneMsg:
		// failures are already in the message list

	case noticeMsg:
		m.notice = string(msg)

	case spinner.TickMsg:
		if m.indicator {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// only key presses reach the textarea so escape sequences don't leak in
	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleCommand runs a slash command typed into the input
func (m Model) handleCommand(input string) (Model, tea.Cmd, bool) {
	fields := strings.Fields(input)
	name := strings.ToLower(fields[0])

	switch name {
	case "exit", "quit", "/exit", "/quit":
		return m, tea.Quit, true

	case "/new", "/clear":
		m.textarea.Reset()
		return m, m.newChat(), true

	case "/copy":
		m.textarea.Reset()
		return m, m.copyLastReply(), true

	case "/export":
		m.textarea.Reset()
		if len(fields) < 2 {
			m.notice = "Usage: /export <file.md|file.json|file.html>"
			return m, nil, true
		}
		return m, m.export(fields[1]), true

	case "/help":
		m.textarea.Reset()
		m.notice = "/new start over · /copy copy last reply · /export <file> save transcript · /quit leave"
		return m, nil, true
	}
	return m, nil, false
}

// copyLastReply copies the newest assistant message to the clipboard
func (m Model) copyLastReply() tea.Cmd {
	var reply string
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Role == models.RoleAssistant {
			reply = m.messages[i].Content
			break
		}
	}
	copyFn := m.opts.CopyFunc
	logger := m.opts.Logger

	return func() tea.Msg {
		if reply == "" {
			return noticeMsg("Nothing to copy yet")
		}
		if err := copyFn(reply); err != nil {
			logger.Warn().Err(err).Msg("clipboard write failed")
			return noticeMsg("Copy failed: " + err.Error())
		}
		return noticeMsg("Last reply copied to clipboard")
	}
}

// export writes the visible transcript to path
func (m Model) export(path string) tea.Cmd {
	msgs := m.messages
	opts := history.DefaultExportOptions()
	opts.Format = history.FormatForPath(path)
	opts.ServerURL = m.opts.ServerURL

	return func() tea.Msg {
		if err := history.ExportToFile(path, msgs, opts); err != nil {
			return noticeMsg("Export failed: " + err.Error())
		}
		return noticeMsg(fmt.Sprintf("Saved %d messages to %s", len(msgs), path))
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	headerParts := []string{titleStyle.Render("✦ AI29")}
	if m.opts.ServerURL != "" {
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			subtitleStyle.Render(m.opts.ServerURL),
		)
	}
	header := headerStyle.Width(contentWidth).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, headerParts...),
	)
	sections = append(sections, header)

	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View())
	sections = append(sections, messagesPanel)

	typing := " "
	if m.indicator {
		typing = m.spinner.View() + loadingStyle.Render(" AI29 is typing")
	}
	inputContent := lipgloss.JoinVertical(
		lipgloss.Left,
		typing,
		inputLabelStyle.Render("You"),
		m.textarea.View(),
	)
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.notice != "" {
		sections = append(sections, noticeStyle.Render("  "+m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+N", "New chat"},
		{"/help", "Commands"},
		{"Esc", "Quit"},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 8
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}
	mdOpts := m.opts.Markdown.WithWidth(bubbleWidth - 4)

	for i, msg := range m.messages {
		if i > 0 {
			content.WriteString("\n")
		}

		switch msg.Role {
		case models.RoleUser:
			content.WriteString(userLabelStyle.Render("You"))
			content.WriteString("\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Content))

		case models.RoleError:
			content.WriteString(errorLabelStyle.Render("⚠ Error"))
			content.WriteString("\n")
			content.WriteString(errorBubbleStyle.Width(bubbleWidth).Render(msg.Content))

		default:
			rendered, err := render.TerminalMessage(msg, mdOpts)
			if err != nil {
				m.opts.Logger.Debug().Err(err).Int("seq", msg.Seq).Msg("markdown render failed")
			}
			content.WriteString(assistantLabelStyle.Render("✦ AI29"))
			content.WriteString("\n")
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat runs the chat TUI until the user quits. bridge must be the view
// the controller was created with.
func RunChat(ctx context.Context, ctrl ChatController, bridge *Bridge, opts Options) error {
	m := NewModel(ctx, ctrl, opts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	bridge.Attach(p)

	_, err := p.Run()
	return err
}
