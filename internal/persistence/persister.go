package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/repository"
	"storefront/internal/store"

	"go.uber.org/zap"
)

// Persister writes the whitelisted state through to a snapshot repository and
// rehydrates it on boot.
type Persister struct {
	repo       repository.SnapshotRepository
	storageKey string
	version    int
	logger     *zap.Logger
	now        func() time.Time
}

func NewPersister(repo repository.SnapshotRepository, storageKey string, version int, logger *zap.Logger) *Persister {
	return &Persister{
		repo:       repo,
		storageKey: storageKey,
		version:    version,
		logger:     logger,
		now:        time.Now,
	}
}

// Key is the versioned record key, e.g. storefront-state:v1
func (p *Persister) Key() string {
	return fmt.Sprintf("%s:v%d", p.storageKey, p.version)
}

// Load returns the persisted state overlaid on seed. The second result reports
// whether a compatible record was found. Records from other versions are
// discarded, never migrated.
func (p *Persister) Load(ctx context.Context, seed store.State) (store.State, bool, error) {
	if err := p.purgeStale(ctx); err != nil {
		return store.State{}, false, err
	}

	snapshot, err := p.repo.Load(ctx, p.Key())
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		p.logger.Info("No persisted state found, starting from seed", zap.String("key", p.Key()))
		return seed.Clone(), false, nil
	}
	if err != nil {
		return store.State{}, false, fmt.Errorf("failed to load persisted state: %w", err)
	}

	record, err := Decode(snapshot.Payload)
	if err == nil && record.Version != p.version {
		err = fmt.Errorf("record version %d does not match %d", record.Version, p.version)
	}
	if err != nil {
		p.logger.Warn("Discarding incompatible persisted state",
			zap.String("key", p.Key()),
			zap.Error(err),
		)
		if err := p.repo.Delete(ctx, p.Key()); err != nil {
			return store.State{}, false, fmt.Errorf("failed to discard persisted state: %w", err)
		}
		return seed.Clone(), false, nil
	}

	p.logger.Info("Rehydrated persisted state",
		zap.String("key", p.Key()),
		zap.Time("saved_at", record.SavedAt),
		zap.Int("products", len(record.Products)),
		zap.Int("orders", len(record.Orders)),
	)
	return record.Apply(seed), true, nil
}

// purgeStale deletes records written under any other version of the storage key
func (p *Persister) purgeStale(ctx context.Context) error {
	keys, err := p.repo.Keys(ctx, p.storageKey+":v")
	if err != nil {
		return fmt.Errorf("failed to list persisted state keys: %w", err)
	}
	for _, key := range keys {
		if key == p.Key() {
			continue
		}
		if err := p.repo.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to purge stale state %s: %w", key, err)
		}
		p.logger.Info("Purged stale persisted state", zap.String("key", key))
	}
	return nil
}

// Save writes the whitelisted slices of s under the versioned key
func (p *Persister) Save(ctx context.Context, s store.State) error {
	now := p.now()
	payload, err := Encode(NewRecord(s, p.version, now))
	if err != nil {
		return err
	}

	return p.repo.Save(ctx, &repository.Snapshot{
		Key:       p.Key(),
		Version:   p.version,
		Payload:   payload,
		UpdatedAt: now,
	})
}

// Listener saves after every committed command. A failed write is logged; the
// in-memory commit stands.
func (p *Persister) Listener() store.Listener {
	return func(ctx context.Context, s store.State, cmd store.Command) {
		// the request context may already be cancelled once the response is written
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := p.Save(ctx, s); err != nil {
			p.logger.Error("Failed to persist state",
				zap.String("command", cmd.Name()),
				zap.Error(err),
			)
		}
	}
}
