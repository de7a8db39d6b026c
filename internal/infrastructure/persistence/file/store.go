// Package file implements the snapshot store on a single JSON document.
// Writes go through a temp file and rename so a crash mid-write never leaves
// a torn snapshot behind.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
)

// Store persists the guild snapshot to one file on disk.
type Store struct {
	path string
}

// NewStore creates a file-backed snapshot store at path. The parent directory
// is created if missing.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("file: store path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("file: create state directory: %w", err)
		}
	}
	return &Store{path: path}, nil
}

// Load implements guildstate.SnapshotStore. A missing file returns (nil, nil)
// so the caller bootstraps a default snapshot.
func (s *Store) Load(_ context.Context) (*guildstate.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("file: read snapshot: %w", err)
	}

	var state guildstate.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("file: decode snapshot: %w", err)
	}
	return &state, nil
}

// Save implements guildstate.SnapshotStore. The snapshot is written whole;
// rename makes the replacement atomic on POSIX filesystems.
func (s *Store) Save(_ context.Context, state *guildstate.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("file: encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("file: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file: write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file: sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: replace snapshot: %w", err)
	}
	return nil
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}
