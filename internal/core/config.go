// Package core holds the client profile: who the local user is and where
// the chat backend lives.
package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Profile stores the local user's identity and endpoints.
type Profile struct {
	Version          int    `json:"version"`
	UserID           string `json:"user_id"`
	DisplayName      string `json:"display_name,omitempty"`
	ServerURL        string `json:"server_url"`
	UploadURL        string `json:"upload_url"`
	AuthToken        string `json:"auth_token,omitempty"`
	TypingDebounceMS int    `json:"typing_debounce_ms,omitempty"`
}

func profilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".config", "spark")
	return filepath.Join(configDir, "spark-config.json"), nil
}

func ensureConfigDir() (string, error) {
	path, err := profilePath()
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// ReadProfile reads the profile file if present. Returns nil, nil when no
// profile has been written yet.
func ReadProfile() (*Profile, error) {
	path, err := profilePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// WriteProfile writes the profile to disk.
func WriteProfile(profile Profile) error {
	path, err := ensureConfigDir()
	if err != nil {
		return err
	}
	if profile.Version == 0 {
		profile.Version = 1
	}
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// Validate checks that a profile is complete enough to open a conversation.
func (p *Profile) Validate() error {
	if p == nil {
		return fmt.Errorf("no profile configured; run `spark profile init` first")
	}
	if p.UserID == "" {
		return fmt.Errorf("profile missing user_id")
	}
	if p.ServerURL == "" {
		return fmt.Errorf("profile missing server_url")
	}
	return nil
}
