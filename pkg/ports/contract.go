package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDraftStoreContract runs a suite of tests to verify that a DraftStore implementation
// adheres to the defined interface contract.
func RunDraftStoreContract(t *testing.T, store DraftStore) {
	t.Helper()
	ctx := context.Background()
	key := domain.RecordKey("contract-" + time.Now().Format("20060102150405"))

	t.Run("Save and Load", func(t *testing.T) {
		payload := []byte(`{"version":1,"currentStep":3}`)

		err := store.Save(ctx, key, payload)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, payload, loaded)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, []byte(`{"version":1,"currentStep":1}`)))
		require.NoError(t, store.Save(ctx, key, []byte(`{"version":1,"currentStep":2}`)))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `{"version":1,"currentStep":2}`, string(loaded))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, domain.RecordKey("missing-"+key))
		assert.ErrorIs(t, err, domain.ErrDraftNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, []byte(`{"version":1}`)))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrDraftNotFound, "Load after Delete should return ErrDraftNotFound")

		assert.NoError(t, store.Delete(ctx, key), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		k1 := key + "-1"
		k2 := key + "-2"
		require.NoError(t, store.Save(ctx, k1, []byte(`{"version":1}`)))
		require.NoError(t, store.Save(ctx, k2, []byte(`{"version":1}`)))

		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
