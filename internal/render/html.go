package render

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/diogo/ai29/internal/models"
)

// urlPattern matches bare http(s) links up to the next whitespace
var urlPattern = regexp.MustCompile(`https?://\S+`)

// RenderMessage converts message text into the HTML fragment shown in a
// chat bubble. The text is escaped before line breaks and links are added,
// so markup inside a message is displayed literally.
func RenderMessage(role models.Role, text string) string {
	var b strings.Builder
	// html.Render only fails on writer errors; strings.Builder never returns one.
	_ = html.Render(&b, paragraph(role, text))
	return b.String()
}

// paragraph builds the <p> node for one message
func paragraph(role models.Role, text string) *html.Node {
	p := element(atom.P)
	if role == models.RoleError {
		p.Attr = append(p.Attr, html.Attribute{Key: "class", Val: "text-danger"})
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			p.AppendChild(element(atom.Br))
		}
		appendLinkified(p, line)
	}
	return p
}

// appendLinkified appends line to parent, turning URLs into anchors
func appendLinkified(parent *html.Node, line string) {
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(line, -1) {
		if loc[0] > last {
			parent.AppendChild(textNode(line[last:loc[0]]))
		}
		href := line[loc[0]:loc[1]]
		a := element(atom.A)
		a.Attr = []html.Attribute{
			{Key: "href", Val: href},
			{Key: "target", Val: "_blank"},
			{Key: "rel", Val: "noopener noreferrer"},
		}
		a.AppendChild(textNode(href))
		parent.AppendChild(a)
		last = loc[1]
	}
	if last < len(line) {
		parent.AppendChild(textNode(line[last:]))
	}
}

// RenderTranscript renders a list of messages as the chat container markup
func RenderTranscript(messages []models.Message) string {
	container := element(atom.Div)
	container.Attr = []html.Attribute{{Key: "class", Val: "chat-messages"}}

	for _, m := range messages {
		wrapper := element(atom.Div)
		wrapper.Attr = []html.Attribute{{Key: "class", Val: "message " + messageClass(m.Role)}}

		content := element(atom.Div)
		content.Attr = []html.Attribute{{Key: "class", Val: "message-content"}}

		body := element(atom.Div)
		body.Attr = []html.Attribute{{Key: "class", Val: "message-text"}}
		body.AppendChild(paragraph(m.Role, m.Content))

		content.AppendChild(body)
		wrapper.AppendChild(content)
		container.AppendChild(wrapper)
	}

	var b strings.Builder
	_ = html.Render(&b, container)
	return b.String()
}

// messageClass returns the CSS class the chat page uses for a role
func messageClass(role models.Role) string {
	switch role {
	case models.RoleUser:
		return "user-message"
	case models.RoleError:
		return "ai-message error-message"
	default:
		return "ai-message"
	}
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
