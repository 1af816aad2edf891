package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memorySnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

// NewMemorySnapshotRepository keeps snapshots in process memory
func NewMemorySnapshotRepository() SnapshotRepository {
	return &memorySnapshotRepository{snapshots: make(map[string]Snapshot)}
}

func (r *memorySnapshotRepository) Load(_ context.Context, key string) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.snapshots[key]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	snapshot.Payload = append([]byte(nil), snapshot.Payload...)
	return &snapshot, nil
}

func (r *memorySnapshotRepository) Save(_ context.Context, snapshot *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *snapshot
	stored.Payload = append([]byte(nil), snapshot.Payload...)
	r.snapshots[snapshot.Key] = stored
	return nil
}

func (r *memorySnapshotRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.snapshots, key)
	return nil
}

func (r *memorySnapshotRepository) Keys(_ context.Context, prefix string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []string
	for key := range r.snapshots {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
