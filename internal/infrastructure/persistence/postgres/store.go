package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/guildhub/guild-progression-bot/internal/domain/guildstate"
)

// Store persists the guild snapshot as a single JSONB row. The fixed key
// keeps the table at one row per deployment; UPSERT replaces it atomically.
type Store struct {
	conn *Connection
	key  string
}

const snapshotTable = `
	CREATE TABLE IF NOT EXISTS guild_snapshots (
		key         TEXT PRIMARY KEY,
		state       JSONB NOT NULL,
		updated_at  TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)
`

// NewStore creates a snapshot store on the given connection and ensures the
// backing table exists.
func NewStore(ctx context.Context, conn *Connection, key string) (*Store, error) {
	if key == "" {
		key = "default"
	}
	if _, err := conn.Exec(ctx, snapshotTable); err != nil {
		return nil, fmt.Errorf("postgres: create snapshot table: %w", err)
	}
	return &Store{conn: conn, key: key}, nil
}

// Load implements guildstate.SnapshotStore. A missing row returns (nil, nil).
func (s *Store) Load(ctx context.Context) (*guildstate.State, error) {
	var data []byte
	err := s.conn.QueryRow(ctx,
		"SELECT state FROM guild_snapshots WHERE key = $1", s.key,
	).Scan(&data)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: load snapshot: %w", err)
	}

	var state guildstate.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("postgres: decode snapshot: %w", err)
	}
	return &state, nil
}

// Save implements guildstate.SnapshotStore.
func (s *Store) Save(ctx context.Context, state *guildstate.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("postgres: encode snapshot: %w", err)
	}

	_, err = s.conn.Exec(ctx, `
		INSERT INTO guild_snapshots (key, state, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET state = $2, updated_at = $3
	`, s.key, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("postgres: save snapshot: %w", err)
	}
	return nil
}
