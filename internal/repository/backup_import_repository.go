package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/database"
)

// BackupImport records one accepted backup restore
type BackupImport struct {
	ID         string    `json:"id"`
	Products   int       `json:"products"`
	Reviews    int       `json:"reviews"`
	Orders     int       `json:"orders"`
	ImportedBy string    `json:"importedBy"`
	ImportedAt time.Time `json:"importedAt"`
}

// BackupImportRepository defines the interface for the backup import audit trail
type BackupImportRepository interface {
	Record(ctx context.Context, entry *BackupImport) error
	List(ctx context.Context, limit int) ([]BackupImport, error)
}

type sqlBackupImportRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewSQLBackupImportRepository creates a backup import repository over PostgreSQL or SQLite
func NewSQLBackupImportRepository(db *sql.DB, dialect database.Dialect) BackupImportRepository {
	return &sqlBackupImportRepository{db: db, dialect: dialect}
}

func (r *sqlBackupImportRepository) Record(ctx context.Context, entry *BackupImport) error {
	query := `
		INSERT INTO backup_imports (id, products, reviews, orders, imported_by, imported_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if r.dialect == database.DialectSQLite {
		query = `
		INSERT INTO backup_imports (id, products, reviews, orders, imported_by, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.Products,
		entry.Reviews,
		entry.Orders,
		entry.ImportedBy,
		entry.ImportedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record backup import: %w", err)
	}

	return nil
}

// List returns the most recent imports first
func (r *sqlBackupImportRepository) List(ctx context.Context, limit int) ([]BackupImport, error) {
	query := `
		SELECT id, products, reviews, orders, imported_by, imported_at
		FROM backup_imports
		ORDER BY imported_at DESC
		LIMIT $1
	`
	if r.dialect == database.DialectSQLite {
		query = `
		SELECT id, products, reviews, orders, imported_by, imported_at
		FROM backup_imports
		ORDER BY imported_at DESC
		LIMIT ?
	`
	}

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list backup imports: %w", err)
	}
	defer rows.Close()

	var entries []BackupImport
	for rows.Next() {
		var (
			entry      BackupImport
			importedAt string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.Products,
			&entry.Reviews,
			&entry.Orders,
			&entry.ImportedBy,
			&importedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan backup import: %w", err)
		}
		if entry.ImportedAt, err = time.Parse(timestampLayout, importedAt); err != nil {
			return nil, fmt.Errorf("failed to parse backup import timestamp: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate backup imports: %w", err)
	}

	return entries, nil
}

type memoryBackupImportRepository struct {
	mu      sync.Mutex
	entries []BackupImport
}

// NewMemoryBackupImportRepository keeps the audit trail in process memory
func NewMemoryBackupImportRepository() BackupImportRepository {
	return &memoryBackupImportRepository{}
}

func (r *memoryBackupImportRepository) Record(_ context.Context, entry *BackupImport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memoryBackupImportRepository) List(_ context.Context, limit int) ([]BackupImport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]BackupImport, len(r.entries))
	copy(entries, r.entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ImportedAt.After(entries[j].ImportedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
