package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisSnapshotRepository struct {
	client *redis.Client
}

// NewRedisSnapshotRepository stores each snapshot as a hash under its key
func NewRedisSnapshotRepository(client *redis.Client) SnapshotRepository {
	return &redisSnapshotRepository{client: client}
}

func (r *redisSnapshotRepository) Load(ctx context.Context, key string) (*Snapshot, error) {
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrSnapshotNotFound
	}

	version, err := strconv.Atoi(fields["version"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot version: %w", err)
	}
	updatedAt, err := time.Parse(timestampLayout, fields["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot timestamp: %w", err)
	}

	return &Snapshot{
		Key:       key,
		Version:   version,
		Payload:   []byte(fields["payload"]),
		UpdatedAt: updatedAt,
	}, nil
}

func (r *redisSnapshotRepository) Save(ctx context.Context, snapshot *Snapshot) error {
	err := r.client.HSet(ctx, snapshot.Key,
		"version", snapshot.Version,
		"payload", string(snapshot.Payload),
		"updated_at", snapshot.UpdatedAt.UTC().Format(timestampLayout),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (r *redisSnapshotRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (r *redisSnapshotRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := r.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot keys: %w", err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}

	sort.Strings(keys)
	return keys, nil
}
