// Package history exports chat transcripts to files.
package history

import (
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/ai29/internal/models"
	"github.com/diogo/ai29/internal/render"
)

// ExportFormat represents the format for exporting a transcript
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
	ExportFormatHTML     ExportFormat = "html"
)

// ParseFormat accepts a format name or a file extension
func ParseFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "md", "markdown":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	case "html", "htm":
		return ExportFormatHTML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use markdown, json or html)", s)
	}
}

// FormatForPath guesses the format from a file name, defaulting to markdown
func FormatForPath(path string) ExportFormat {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return ExportFormatMarkdown
	}
	return format
}

// ExportOptions configures how a transcript is exported
type ExportOptions struct {
	Format ExportFormat
	// Title heads Markdown and HTML output
	Title string
	// ServerURL is recorded in the header when set
	ServerURL string
	// IncludeErrors keeps client-side error notices
	IncludeErrors bool
	// ExportedAt defaults to the current time
	ExportedAt time.Time
}

// DefaultExportOptions returns sensible defaults for export
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:        ExportFormatMarkdown,
		Title:         "AI29 conversation",
		IncludeErrors: true,
	}
}

// Export renders messages in the requested format
func Export(messages []models.Message, opts ExportOptions) ([]byte, error) {
	if opts.ExportedAt.IsZero() {
		opts.ExportedAt = time.Now()
	}
	messages = filter(messages, opts.IncludeErrors)

	switch opts.Format {
	case ExportFormatMarkdown, "":
		return []byte(ToMarkdown(messages, opts)), nil
	case ExportFormatJSON:
		return ToJSON(messages, opts)
	case ExportFormatHTML:
		return []byte(ToHTML(messages, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", opts.Format)
	}
}

// ExportToFile writes the export to path with owner-only permissions
func ExportToFile(path string, messages []models.Message, opts ExportOptions) error {
	data, err := Export(messages, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func filter(messages []models.Message, includeErrors bool) []models.Message {
	if includeErrors {
		return messages
	}
	out := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if !m.IsError() {
			out = append(out, m)
		}
	}
	return out
}

func roleTitle(role models.Role) string {
	switch role {
	case models.RoleUser:
		return "User"
	case models.RoleError:
		return "Error"
	default:
		return "Assistant"
	}
}

// ToMarkdown renders the transcript as Markdown
func ToMarkdown(messages []models.Message, opts ExportOptions) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(opts.Title)
	sb.WriteString("\n\n")
	if opts.ServerURL != "" {
		sb.WriteString("**Server:** ")
		sb.WriteString(opts.ServerURL)
		sb.WriteString("\n")
	}
	sb.WriteString("**Exported:** ")
	sb.WriteString(opts.ExportedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "**Messages:** %d\n\n---\n\n", len(messages))

	for i, m := range messages {
		sb.WriteString("## ")
		sb.WriteString(roleTitle(m.Role))
		if !m.Timestamp.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(m.Timestamp.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		if m.IsError() {
			sb.WriteString("> ")
			sb.WriteString(strings.ReplaceAll(m.Content, "\n", "\n> "))
		} else {
			sb.WriteString(m.Content)
		}
		sb.WriteString("\n")

		if i < len(messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

type exportMessage struct {
	Seq       int        `json:"seq"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ReplyTo   int        `json:"reply_to,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`

	ServerID       int64  `json:"server_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type exportTranscript struct {
	Title      string          `json:"title"`
	ServerURL  string          `json:"server_url,omitempty"`
	ExportedAt time.Time       `json:"exported_at"`
	Messages   []exportMessage `json:"messages"`
}

// ToJSON renders the transcript as indented JSON
func ToJSON(messages []models.Message, opts ExportOptions) ([]byte, error) {
	out := exportTranscript{
		Title:      opts.Title,
		ServerURL:  opts.ServerURL,
		ExportedAt: opts.ExportedAt,
		Messages:   make([]exportMessage, len(messages)),
	}
	for i, m := range messages {
		em := exportMessage{
			Seq:     m.Seq,
			Role:    m.Role.String(),
			Content: m.Content,
			ReplyTo: m.ReplyTo,

			ServerID:       m.ServerID,
			ConversationID: m.ConversationID,
		}
		if !m.Timestamp.IsZero() {
			ts := m.Timestamp
			em.Timestamp = &ts
		}
		out.Messages[i] = em
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript: %w", err)
	}
	return data, nil
}

// ToHTML renders the transcript as a standalone page using the chat
// widget's markup for each message
func ToHTML(messages []models.Message, opts ExportOptions) string {
	var sb strings.Builder
	title := html.EscapeString(opts.Title)

	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	sb.WriteString(title)
	sb.WriteString("</title>\n<style>\n")
	sb.WriteString(transcriptCSS)
	sb.WriteString("</style>\n</head>\n<body>\n<h1>")
	sb.WriteString(title)
	sb.WriteString("</h1>\n")
	sb.WriteString(render.RenderTranscript(messages))
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}

const transcriptCSS = `body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
.message { margin: 0.75rem 0; padding: 0.5rem 1rem; border-radius: 0.75rem; }
.user-message { background: #4f8ef7; color: #fff; margin-left: 20%; }
.ai-message { background: #f1f3f5; margin-right: 20%; }
.text-danger { color: #dc3545; }
`
