package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/migueltarga/kiddo-engine/pkg/story"
)

// snapshotTTL bounds how long an abandoned reading session is kept.
const snapshotTTL = 30 * 24 * time.Hour

// Snapshot is a resumable reading position: which story, which node,
// and what the reader was holding.
type Snapshot struct {
	ID           uuid.UUID             `json:"id"`
	StoryID      string                `json:"story_id"`
	NodeKey      string                `json:"node_key"`
	ProgressMade bool                  `json:"progress_made,omitempty"`
	Inventory    []story.InventoryItem `json:"inventory,omitempty"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// SessionStore persists reading-session snapshots in Redis so a reader
// can resume where they left off.
type SessionStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewSessionStore creates a session store for the given Redis URL.
func NewSessionStore(redisURL string, logger *slog.Logger) (*SessionStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return &SessionStore{client: redis.NewClient(opt), logger: logger}, nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *SessionStore) Close() error {
	return s.client.Close()
}

func sessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}

// Save persists the snapshot under its ID.
func (s *SessionStore) Save(ctx context.Context, snap *Snapshot) error {
	snap.UpdatedAt = time.Now()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal session snapshot: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(snap.ID), data, snapshotTTL).Err(); err != nil {
		s.logger.Error("Failed to save session snapshot", "id", snap.ID, "error", err)
		return fmt.Errorf("failed to save session snapshot: %w", err)
	}
	return nil
}

// Load retrieves a snapshot by ID. A missing snapshot returns nil, nil.
func (s *SessionStore) Load(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes a snapshot by ID.
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session snapshot: %w", err)
	}
	return nil
}
