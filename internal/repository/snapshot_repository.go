package repository

import (
	"context"
	"errors"
	"time"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// fixed width so stored timestamps sort lexically
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Snapshot is one persisted state record
type Snapshot struct {
	Key       string
	Version   int
	Payload   []byte
	UpdatedAt time.Time
}

// SnapshotRepository defines the interface for state snapshot storage
type SnapshotRepository interface {
	Load(ctx context.Context, key string) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
