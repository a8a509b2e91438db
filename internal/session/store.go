package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrSessionDataNotFound is returned when no prepared session matches.
var ErrSessionDataNotFound = errors.New("session data not found")

// Descriptor is the prepared-session record persisted between the
// prepare and start commands.
type Descriptor struct {
	SessionID      string `json:"session_id"`
	TotalQuestions int    `json:"num_questions"`
}

// DescriptorPath returns the state-file location for the descriptor.
func DescriptorPath() (string, error) {
	stateDir := strings.TrimSpace(os.Getenv("XDG_STATE_HOME"))
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory for state: %w", err)
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "intervuai", "session.json"), nil
}

// SaveDescriptor persists the prepared session for the start command.
func SaveDescriptor(desc Descriptor) error {
	path, err := DescriptorPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session descriptor: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write session descriptor: %w", err)
	}
	return nil
}

// LoadDescriptor reads the persisted session. When wantSessionID is
// non-empty it must match the stored record, mirroring the startup guard
// against stale session data.
func LoadDescriptor(wantSessionID string) (Descriptor, error) {
	path, err := DescriptorPath()
	if err != nil {
		return Descriptor{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Descriptor{}, ErrSessionDataNotFound
		}
		return Descriptor{}, fmt.Errorf("read session descriptor: %w", err)
	}

	var desc Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return Descriptor{}, fmt.Errorf("decode session descriptor: %w", err)
	}
	if desc.SessionID == "" {
		return Descriptor{}, ErrSessionDataNotFound
	}
	if wantSessionID != "" && desc.SessionID != wantSessionID {
		return Descriptor{}, fmt.Errorf("%w: stored session %s does not match %s",
			ErrSessionDataNotFound, desc.SessionID, wantSessionID)
	}
	return desc, nil
}

// ClearDescriptor removes the persisted session record.
func ClearDescriptor() error {
	path, err := DescriptorPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session descriptor: %w", err)
	}
	return nil
}
