package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SessionCookie is a cookie the backend set to identify the conversation
type SessionCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`
}

// Session is the on-disk form of the stored cookies
type Session struct {
	ServerURL string          `json:"server_url"`
	Cookies   []SessionCookie `json:"cookies"`
}

// LoadSession returns the cookies stored for serverURL. A missing file, or a
// file written for a different server, yields no cookies and no error.
func LoadSession(serverURL string) ([]SessionCookie, error) {
	path, err := GetSessionPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if s.ServerURL != serverURL {
		return nil, nil
	}
	return s.Cookies, nil
}

// SaveSession stores the cookies for serverURL, replacing any previous session
func SaveSession(serverURL string, cookies []SessionCookie) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(Session{ServerURL: serverURL, Cookies: cookies}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Owner read/write only: the cookie grants access to the conversation
	if err := os.WriteFile(filepath.Join(configDir, "session.json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// ClearSession removes the stored session, if any
func ClearSession() error {
	path, err := GetSessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ParseCookieExport parses a browser cookie export.
// Supports both list format [{name, value, ...}] and dict format {name: value}.
func ParseCookieExport(data []byte, name string) ([]SessionCookie, error) {
	var dictFormat map[string]string
	if err := json.Unmarshal(data, &dictFormat); err == nil {
		value, ok := dictFormat[name]
		if !ok {
			return nil, fmt.Errorf("missing required cookie: %s", name)
		}
		return []SessionCookie{{Name: name, Value: value}}, nil
	}

	var listFormat []SessionCookie
	if err := json.Unmarshal(data, &listFormat); err == nil {
		var found []SessionCookie
		for _, item := range listFormat {
			if item.Name == name {
				found = append(found, item)
			}
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("missing required cookie: %s", name)
		}
		return found, nil
	}

	return nil, fmt.Errorf("invalid cookies format: expected list [{name, value}] or dict {name: value}")
}

// ImportSession reads a cookie export file and stores it for serverURL
func ImportSession(sourcePath, serverURL, name string) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("source file not found: %s", sourcePath)
		}
		return fmt.Errorf("could not read file: %w", err)
	}

	cookies, err := ParseCookieExport(data, name)
	if err != nil {
		return err
	}

	return SaveSession(serverURL, cookies)
}
