package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/database"
)

type snapshotQueries struct {
	load   string
	upsert string
	delete string
	keys   string
}

var postgresSnapshotQueries = snapshotQueries{
	load: `
		SELECT storage_key, version, payload, updated_at
		FROM state_snapshots
		WHERE storage_key = $1
	`,
	upsert: `
		INSERT INTO state_snapshots (storage_key, version, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (storage_key) DO UPDATE
		SET version = excluded.version, payload = excluded.payload, updated_at = excluded.updated_at
	`,
	delete: `DELETE FROM state_snapshots WHERE storage_key = $1`,
	keys:   `SELECT storage_key FROM state_snapshots WHERE storage_key LIKE $1`,
}

var sqliteSnapshotQueries = snapshotQueries{
	load: `
		SELECT storage_key, version, payload, updated_at
		FROM state_snapshots
		WHERE storage_key = ?
	`,
	upsert: `
		INSERT INTO state_snapshots (storage_key, version, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (storage_key) DO UPDATE
		SET version = excluded.version, payload = excluded.payload, updated_at = excluded.updated_at
	`,
	delete: `DELETE FROM state_snapshots WHERE storage_key = ?`,
	keys:   `SELECT storage_key FROM state_snapshots WHERE storage_key LIKE ?`,
}

type sqlSnapshotRepository struct {
	db      *sql.DB
	queries snapshotQueries
}

// NewSQLSnapshotRepository creates a snapshot repository over PostgreSQL or SQLite
func NewSQLSnapshotRepository(db *sql.DB, dialect database.Dialect) SnapshotRepository {
	queries := postgresSnapshotQueries
	if dialect == database.DialectSQLite {
		queries = sqliteSnapshotQueries
	}
	return &sqlSnapshotRepository{db: db, queries: queries}
}

// Load retrieves a snapshot by its storage key
func (r *sqlSnapshotRepository) Load(ctx context.Context, key string) (*Snapshot, error) {
	var (
		snapshot  Snapshot
		payload   string
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx, r.queries.load, key).Scan(
		&snapshot.Key,
		&snapshot.Version,
		&payload,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snapshot.Payload = []byte(payload)
	if snapshot.UpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot timestamp: %w", err)
	}

	return &snapshot, nil
}

// Save inserts or replaces the snapshot stored under its key
func (r *sqlSnapshotRepository) Save(ctx context.Context, snapshot *Snapshot) error {
	_, err := r.db.ExecContext(
		ctx,
		r.queries.upsert,
		snapshot.Key,
		snapshot.Version,
		string(snapshot.Payload),
		snapshot.UpdatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// Delete removes a snapshot; deleting a missing key is not an error
func (r *sqlSnapshotRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.queries.delete, key); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Keys lists the stored keys starting with prefix, sorted
func (r *sqlSnapshotRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, r.queries.keys, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot key: %w", err)
		}
		// LIKE treats _ as a wildcard
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot keys: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

func likePrefix(prefix string) string {
	return strings.NewReplacer("%", "_").Replace(prefix) + "%"
}
