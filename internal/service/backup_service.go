package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/store"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

var ErrInvalidBackup = errors.New("invalid backup file")

const backupSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["products", "content"],
  "properties": {
    "products": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "brand", "category", "price", "sizes"],
        "properties": {
          "id": { "type": "integer", "minimum": 1 },
          "name": { "type": "string", "minLength": 1 },
          "price": { "type": ["number", "string"] },
          "discount": { "type": "integer", "minimum": 0, "maximum": 100 },
          "sizes": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["size", "stock"],
              "properties": {
                "size": { "type": "number" },
                "stock": { "type": "integer", "minimum": 0 }
              }
            }
          }
        }
      }
    },
    "content": { "type": "object" },
    "reviews": { "type": "array", "items": { "type": "object" } },
    "orders": { "type": "array", "items": { "type": "object" } },
    "timestamp": { "type": "string" }
  }
}`

var backupSchemaLoader = gojsonschema.NewStringLoader(backupSchema)

// Backup is the export/import document
type Backup struct {
	Products  []domain.Product `json:"products"`
	Content   domain.Content   `json:"content"`
	Reviews   []domain.Review  `json:"reviews"`
	Orders    []domain.Order   `json:"orders"`
	Timestamp time.Time        `json:"timestamp"`
}

// BackupService defines the interface for catalog backup and restore
type BackupService interface {
	Export(ctx context.Context) Backup
	Import(ctx context.Context, raw []byte, importedBy string) (*repository.BackupImport, error)
	History(ctx context.Context, limit int) ([]repository.BackupImport, error)
}

type backupService struct {
	store   *store.Store
	imports repository.BackupImportRepository
	logger  *zap.Logger
}

// NewBackupService creates a new instance of BackupService
func NewBackupService(st *store.Store, imports repository.BackupImportRepository, logger *zap.Logger) BackupService {
	return &backupService{store: st, imports: imports, logger: logger}
}

func (s *backupService) Export(ctx context.Context) Backup {
	var b Backup
	s.store.View(func(st store.State) {
		clone := st.Clone()
		b = Backup{
			Products:  clone.Products,
			Content:   clone.Content,
			Reviews:   clone.Reviews,
			Orders:    clone.Orders,
			Timestamp: s.store.Now().UTC(),
		}
	})
	return b
}

// Import validates raw against the backup schema and replaces the stores it
// carries. Nothing changes when validation fails.
func (s *backupService) Import(ctx context.Context, raw []byte, importedBy string) (*repository.BackupImport, error) {
	if err := validateJSONSchema(backupSchemaLoader, raw); err != nil {
		return nil, err
	}

	var b Backup
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	cmd := &store.ImportBackup{
		Products: b.Products,
		Content:  b.Content,
		Reviews:  b.Reviews,
		Orders:   b.Orders,
	}
	if err := s.store.Dispatch(ctx, cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	entry := &repository.BackupImport{
		ID:         uuid.New().String(),
		Products:   len(b.Products),
		Reviews:    len(b.Reviews),
		Orders:     len(b.Orders),
		ImportedBy: importedBy,
		ImportedAt: s.store.Now(),
	}
	if err := s.imports.Record(ctx, entry); err != nil {
		s.logger.Warn("Failed to record backup import", zap.Error(err))
	}

	s.logger.Info("Backup imported",
		zap.String("imported_by", importedBy),
		zap.Int("products", entry.Products),
		zap.Int("reviews", entry.Reviews),
		zap.Int("orders", entry.Orders),
	)
	return entry, nil
}

func (s *backupService) History(ctx context.Context, limit int) ([]repository.BackupImport, error) {
	entries, err := s.imports.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list backup imports: %w", err)
	}
	if entries == nil {
		entries = []repository.BackupImport{}
	}
	return entries, nil
}

func validateJSONSchema(schemaLoader gojsonschema.JSONLoader, body []byte) error {
	loader := gojsonschema.NewBytesLoader(body)
	result, err := gojsonschema.Validate(schemaLoader, loader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if !result.Valid() {
		var sb strings.Builder
		for _, e := range result.Errors() {
			sb.WriteString(e.String())
			sb.WriteString("; ")
		}
		return fmt.Errorf("%w: %s", ErrInvalidBackup, sb.String())
	}
	return nil
}
