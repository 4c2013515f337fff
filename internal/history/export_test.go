package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diogo/ai29/internal/models"
)

func sampleMessages() []models.Message {
	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	return []models.Message{
		{Seq: 1, Role: models.RoleUser, Content: "What is Go?", Timestamp: ts, ServerID: 11, ConversationID: "conv-1"},
		{Seq: 2, Role: models.RoleAssistant, Content: "A language.\nSee https://go.dev", ReplyTo: 1, Timestamp: ts},
		{Seq: 3, Role: models.RoleUser, Content: "<b>bold?</b>"},
		{Seq: 4, Role: models.RoleError, Content: "rate limited", ReplyTo: 3},
	}
}

func testOptions(format ExportFormat) ExportOptions {
	opts := DefaultExportOptions()
	opts.Format = format
	opts.ServerURL = "http://localhost:5000"
	opts.ExportedAt = time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	return opts
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{"", ExportFormatMarkdown, false},
		{"md", ExportFormatMarkdown, false},
		{".MD", ExportFormatMarkdown, false},
		{"json", ExportFormatJSON, false},
		{".html", ExportFormatHTML, false},
		{"htm", ExportFormatHTML, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	if got := FormatForPath("chat.json"); got != ExportFormatJSON {
		t.Errorf("FormatForPath(chat.json) = %q", got)
	}
	if got := FormatForPath("chat.txt"); got != ExportFormatMarkdown {
		t.Errorf("FormatForPath(chat.txt) = %q", got)
	}
}

func TestExportMarkdown(t *testing.T) {
	data, err := Export(sampleMessages(), testOptions(ExportFormatMarkdown))
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"# AI29 conversation",
		"**Server:** http://localhost:5000",
		"**Messages:** 4",
		"## User (10:30:00)",
		"## Assistant (10:30:00)",
		"A language.\nSee https://go.dev",
		"## Error",
		"> rate limited",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q\n%s", want, out)
		}
	}
	if strings.Index(out, "What is Go?") > strings.Index(out, "A language.") {
		t.Error("messages out of order")
	}
}

func TestExportWithoutErrors(t *testing.T) {
	opts := testOptions(ExportFormatMarkdown)
	opts.IncludeErrors = false

	data, err := Export(sampleMessages(), opts)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if strings.Contains(string(data), "rate limited") {
		t.Error("error notice should be excluded")
	}
	if !strings.Contains(string(data), "**Messages:** 3") {
		t.Error("message count should exclude errors")
	}
}

func TestExportJSON(t *testing.T) {
	data, err := Export(sampleMessages(), testOptions(ExportFormatJSON))
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	var decoded struct {
		Title     string `json:"title"`
		ServerURL string `json:"server_url"`
		Messages  []struct {
			Seq       int     `json:"seq"`
			Role      string  `json:"role"`
			Content   string  `json:"content"`
			ReplyTo   int     `json:"reply_to"`
			Timestamp *string `json:"timestamp"`

			ServerID       int64   `json:"server_id"`
			ConversationID *string `json:"conversation_id"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if decoded.ServerURL != "http://localhost:5000" {
		t.Errorf("server_url = %q", decoded.ServerURL)
	}
	if len(decoded.Messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(decoded.Messages))
	}
	if decoded.Messages[1].Role != "assistant" || decoded.Messages[1].ReplyTo != 1 {
		t.Errorf("unexpected message: %+v", decoded.Messages[1])
	}
	if decoded.Messages[2].Timestamp != nil {
		t.Error("zero timestamp should be omitted")
	}
	if first := decoded.Messages[0]; first.ServerID != 11 || first.ConversationID == nil || *first.ConversationID != "conv-1" {
		t.Errorf("server ids not exported: %+v", first)
	}
	if decoded.Messages[1].ConversationID != nil {
		t.Error("empty conversation_id should be omitted")
	}
	if decoded.Messages[3].Role != "error" {
		t.Errorf("role = %q, want error", decoded.Messages[3].Role)
	}
}

func TestExportHTML(t *testing.T) {
	opts := testOptions(ExportFormatHTML)
	opts.Title = "Q&A <session>"

	data, err := Export(sampleMessages(), opts)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Q&amp;A &lt;session&gt;</title>",
		`<div class="message user-message">`,
		`<a href="https://go.dev" target="_blank" rel="noopener noreferrer">`,
		"&lt;b&gt;bold?&lt;/b&gt;",
		`<p class="text-danger">rate limited</p>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if strings.Contains(out, "<b>bold?</b>") {
		t.Error("message markup must be escaped")
	}
}

func TestExportUnknownFormat(t *testing.T) {
	if _, err := Export(sampleMessages(), ExportOptions{Format: "pdf"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestExportToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "chat.json")
	opts := testOptions(FormatForPath(path))

	if err := ExportToFile(path, sampleMessages(), opts); err != nil {
		t.Fatalf("ExportToFile() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions = %o, want 600", info.Mode().Perm())
	}

	data, _ := os.ReadFile(path)
	if !json.Valid(data) {
		t.Error("file content is not JSON")
	}
}
