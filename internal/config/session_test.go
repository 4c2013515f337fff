package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadSession(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())

	cookies := []SessionCookie{{Name: "session", Value: "abc123", Path: "/"}}
	if err := SaveSession("http://localhost:5000", cookies); err != nil {
		t.Fatalf("SaveSession() returned error: %v", err)
	}

	loaded, err := LoadSession("http://localhost:5000")
	if err != nil {
		t.Fatalf("LoadSession() returned error: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Value != "abc123" {
		t.Errorf("LoadSession() = %+v", loaded)
	}

	other, err := LoadSession("http://other:5000")
	if err != nil {
		t.Fatalf("LoadSession() returned error: %v", err)
	}
	if other != nil {
		t.Error("session of another server should not be returned")
	}
}

func TestLoadSession_Missing(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())

	cookies, err := LoadSession("http://localhost:5000")
	if err != nil {
		t.Fatalf("LoadSession() returned error: %v", err)
	}
	if cookies != nil {
		t.Error("expected no cookies")
	}
}

func TestClearSession(t *testing.T) {
	t.Setenv(EnvHome, t.TempDir())

	if err := ClearSession(); err != nil {
		t.Fatalf("ClearSession() on missing file returned error: %v", err)
	}
	_ = SaveSession("http://localhost:5000", []SessionCookie{{Name: "session", Value: "x"}})
	if err := ClearSession(); err != nil {
		t.Fatalf("ClearSession() returned error: %v", err)
	}
	path, _ := GetSessionPath()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("session file should be removed")
	}
}

func TestParseCookieExport(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    string
		wantErr bool
	}{
		{"dict", `{"session": "dict-value", "other": "x"}`, "dict-value", false},
		{"list", `[{"name": "other", "value": "x"}, {"name": "session", "value": "list-value", "domain": "localhost"}]`, "list-value", false},
		{"dict missing", `{"other": "x"}`, "", true},
		{"list missing", `[{"name": "other", "value": "x"}]`, "", true},
		{"garbage", `not json`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cookies, err := ParseCookieExport([]byte(tt.data), "session")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCookieExport() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cookies[0].Value != tt.want {
				t.Errorf("value = %s, want %s", cookies[0].Value, tt.want)
			}
		})
	}
}

func TestImportSession(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)

	src := filepath.Join(dir, "export.json")
	if err := os.WriteFile(src, []byte(`[{"name":"session","value":"imported"}]`), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := ImportSession(src, "http://localhost:5000", "session"); err != nil {
		t.Fatalf("ImportSession() returned error: %v", err)
	}
	cookies, _ := LoadSession("http://localhost:5000")
	if len(cookies) != 1 || cookies[0].Value != "imported" {
		t.Errorf("imported cookies = %+v", cookies)
	}

	if err := ImportSession(filepath.Join(dir, "nope.json"), "http://localhost:5000", "session"); err == nil {
		t.Error("expected error for missing source")
	}
}
