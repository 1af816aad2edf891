package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotBackends(t *testing.T) map[string]SnapshotRepository {
	backends := map[string]SnapshotRepository{
		"memory": NewMemorySnapshotRepository(),
		"sqlite": NewSQLSnapshotRepository(newSQLiteDB(t), "sqlite"),
		"redis":  NewRedisSnapshotRepository(newRedisClient(t)),
	}
	if testDB != nil {
		backends["postgres"] = NewSQLSnapshotRepository(testDB, "postgres")
	}
	return backends
}

func TestSnapshotRepository_Contract(t *testing.T) {
	for name, repo := range snapshotBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			prefix := fmt.Sprintf("contract-%s-%d", name, time.Now().UnixNano())
			key := prefix + ":v1"

			_, err := repo.Load(ctx, key)
			assert.True(t, errors.Is(err, ErrSnapshotNotFound), "missing key should be ErrSnapshotNotFound, got %v", err)

			saved := &Snapshot{
				Key:       key,
				Version:   1,
				Payload:   []byte(`{"version":1,"products":[]}`),
				UpdatedAt: time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC),
			}
			require.NoError(t, repo.Save(ctx, saved))

			loaded, err := repo.Load(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, key, loaded.Key)
			assert.Equal(t, 1, loaded.Version)
			assert.JSONEq(t, string(saved.Payload), string(loaded.Payload))
			assert.True(t, saved.UpdatedAt.Equal(loaded.UpdatedAt))

			// save overwrites in place
			saved.Version = 2
			saved.Payload = []byte(`{"version":2}`)
			require.NoError(t, repo.Save(ctx, saved))
			loaded, err = repo.Load(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, 2, loaded.Version)
			assert.JSONEq(t, `{"version":2}`, string(loaded.Payload))

			require.NoError(t, repo.Save(ctx, &Snapshot{Key: prefix + ":v0", Version: 0, Payload: []byte(`{}`), UpdatedAt: time.Now()}))
			require.NoError(t, repo.Save(ctx, &Snapshot{Key: "unrelated-" + prefix, Version: 1, Payload: []byte(`{}`), UpdatedAt: time.Now()}))

			keys, err := repo.Keys(ctx, prefix+":")
			require.NoError(t, err)
			assert.Equal(t, []string{prefix + ":v0", key}, keys)

			require.NoError(t, repo.Delete(ctx, key))
			require.NoError(t, repo.Delete(ctx, key), "deleting twice should not fail")
			_, err = repo.Load(ctx, key)
			assert.True(t, errors.Is(err, ErrSnapshotNotFound))
		})
	}
}

func TestSQLSnapshotRepository_PrefixWildcardsAreLiteral(t *testing.T) {
	repo := NewSQLSnapshotRepository(newSQLiteDB(t), "sqlite")
	ctx := context.Background()

	for _, key := range []string{"shop_a:v1", "shopXa:v1", "shop%a:v1"} {
		require.NoError(t, repo.Save(ctx, &Snapshot{Key: key, Version: 1, Payload: []byte(`{}`), UpdatedAt: time.Now()}))
	}

	keys, err := repo.Keys(ctx, "shop_a")
	require.NoError(t, err)
	assert.Equal(t, []string{"shop_a:v1"}, keys)
}

// Feature: storefront-state, Property 6: Saved snapshots load back unchanged
func TestProperty_SnapshotRoundTrip(t *testing.T) {
	repos := map[string]SnapshotRepository{
		"memory": NewMemorySnapshotRepository(),
		"sqlite": NewSQLSnapshotRepository(newSQLiteDB(t), "sqlite"),
		"redis":  NewRedisSnapshotRepository(newRedisClient(t)),
	}

	for name, repo := range repos {
		properties := gopter.NewProperties(nil)

		properties.Property(name+": load returns what was saved", prop.ForAll(
			func(key string, version int, payload string) bool {
				ctx := context.Background()
				in := &Snapshot{Key: "k-" + key, Version: version, Payload: []byte(payload), UpdatedAt: time.Now().UTC()}
				if err := repo.Save(ctx, in); err != nil {
					t.Logf("save failed: %v", err)
					return false
				}
				out, err := repo.Load(ctx, in.Key)
				if err != nil {
					t.Logf("load failed: %v", err)
					return false
				}
				return out.Version == in.Version &&
					string(out.Payload) == payload &&
					out.UpdatedAt.Equal(in.UpdatedAt)
			},
			gen.Identifier(),
			gen.IntRange(0, 1000),
			gen.AlphaString(),
		))

		properties.TestingRun(t)
	}
}

func TestMemorySnapshotRepository_CopiesPayload(t *testing.T) {
	repo := NewMemorySnapshotRepository()
	ctx := context.Background()
	payload := []byte(`{"a":1}`)

	require.NoError(t, repo.Save(ctx, &Snapshot{Key: "k", Version: 1, Payload: payload, UpdatedAt: time.Now()}))
	payload[2] = 'b'

	loaded, err := repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(loaded.Payload))
}
