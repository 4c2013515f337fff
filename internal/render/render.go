package render

import (
	"strings"

	"github.com/diogo/ai29/internal/models"
)

// Markdown renders markdown content for terminal display using a pooled renderer.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// TerminalMessage renders a message body for the terminal. Assistant replies
// are markdown; user input and error notices are shown as typed. When
// markdown rendering fails the raw text is returned with the error.
func TerminalMessage(m models.Message, opts Options) (string, error) {
	if m.Role != models.RoleAssistant {
		return m.Content, nil
	}
	out, err := Markdown(m.Content, opts)
	if err != nil {
		return m.Content, err
	}
	return strings.Trim(out, "\n"), nil
}
