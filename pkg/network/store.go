package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robotalks/humidistat/pkg/msgs"
)

// Store keeps credentials across restarts.
type Store interface {
	Load() (msgs.Credentials, bool, error)
	Save(msgs.Credentials) error
}

// FileStore stores credentials as JSON in a file readable only by the owner.
type FileStore struct {
	Path string
}

// Load implements Store. It returns false if the file doesn't exist.
func (s *FileStore) Load() (creds msgs.Credentials, found bool, err error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return creds, false, nil
	}
	if err != nil {
		return creds, false, err
	}
	if err = json.Unmarshal(data, &creds); err != nil {
		return creds, false, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	return creds, true, creds.Validate()
}

// Save implements Store.
func (s *FileStore) Save(creds msgs.Credentials) error {
	data, err := json.Marshal(&creds)
	if err != nil {
		return err
	}
	tmp := s.Path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}
