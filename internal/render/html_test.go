package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diogo/ai29/internal/models"
)

func TestRenderMessage(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		text string
		want string
	}{
		{
			name: "plain text",
			role: models.RoleAssistant,
			text: "Hello",
			want: "<p>Hello</p>",
		},
		{
			name: "newline becomes line break",
			role: models.RoleUser,
			text: "line one\nline two",
			want: "<p>line one<br/>line two</p>",
		},
		{
			name: "url becomes link",
			role: models.RoleAssistant,
			text: "see https://example.com now",
			want: `<p>see <a href="https://example.com" target="_blank" rel="noopener noreferrer">https://example.com</a> now</p>`,
		},
		{
			name: "http link at end of line",
			role: models.RoleAssistant,
			text: "go http://a.io/x?y=1\nbye",
			want: `<p>go <a href="http://a.io/x?y=1" target="_blank" rel="noopener noreferrer">http://a.io/x?y=1</a><br/>bye</p>`,
		},
		{
			name: "markup is escaped",
			role: models.RoleUser,
			text: `<script>alert("x")</script>`,
			want: "<p>&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;</p>",
		},
		{
			name: "error role",
			role: models.RoleError,
			text: "rate limited",
			want: `<p class="text-danger">rate limited</p>`,
		},
		{
			name: "empty",
			role: models.RoleAssistant,
			text: "",
			want: "<p></p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderMessage(tt.role, tt.text); got != tt.want {
				t.Errorf("RenderMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderMessage_LinkCannotBreakOutOfAttribute(t *testing.T) {
	got := RenderMessage(models.RoleAssistant, `https://evil.io/"onmouseover="x`)

	assert.NotContains(t, got, `"onmouseover="`)
	assert.Contains(t, got, `href="https://evil.io/&#34;onmouseover=&#34;x"`)
}

func TestRenderMessage_Ampersand(t *testing.T) {
	got := RenderMessage(models.RoleUser, "Q&A")
	assert.Equal(t, "<p>Q&amp;A</p>", got)
}

func TestRenderTranscript(t *testing.T) {
	msgs := []models.Message{
		{Seq: 1, Role: models.RoleUser, Content: "hi"},
		{Seq: 2, Role: models.RoleAssistant, Content: "hello"},
		{Seq: 3, Role: models.RoleError, Content: "oops"},
	}

	got := RenderTranscript(msgs)

	assert.True(t, strings.HasPrefix(got, `<div class="chat-messages">`))
	assert.Contains(t, got, `<div class="message user-message">`)
	assert.Contains(t, got, `<div class="message ai-message">`)
	assert.Contains(t, got, `<div class="message ai-message error-message">`)
	assert.Contains(t, got, `<p class="text-danger">oops</p>`)

	// order follows the list
	assert.Less(t, strings.Index(got, "hi"), strings.Index(got, "hello"))
	assert.Less(t, strings.Index(got, "hello"), strings.Index(got, "oops"))
}

func TestRenderTranscript_Empty(t *testing.T) {
	assert.Equal(t, `<div class="chat-messages"></div>`, RenderTranscript(nil))
}
