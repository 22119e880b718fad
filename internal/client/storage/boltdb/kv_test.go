package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/gcontacts/internal/client/storage"
)

func TestSetGetRemove(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t, 0)

	_, err := store.Get(ctx, "contacts_user-42")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Set(ctx, "contacts_user-42", "v1"))
	got, err := store.Get(ctx, "contacts_user-42")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)

	// перезапись
	require.NoError(t, store.Set(ctx, "contacts_user-42", "v2"))
	got, err = store.Get(ctx, "contacts_user-42")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)

	require.NoError(t, store.Remove(ctx, "contacts_user-42"))
	_, err = store.Get(ctx, "contacts_user-42")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// повторное удаление не является ошибкой
	assert.NoError(t, store.Remove(ctx, "contacts_user-42"))
}

func TestSet_QuotaExceededKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t, 64)

	require.NoError(t, store.Set(ctx, "contacts_u", "small"))

	big := make([]byte, 100)
	for i := range big {
		big[i] = 'x'
	}
	err := store.Set(ctx, "contacts_u", string(big))
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)

	got, err := store.Get(ctx, "contacts_u")
	require.NoError(t, err)
	assert.Equal(t, "small", got, "rejected write must not touch the previous value")
}

func TestSet_QuotaCountsReplacedValueOnce(t *testing.T) {
	ctx := context.Background()
	// ключ (1) + значение (30) = 31 байт, дважды не помещается в 40
	store := createTestStorage(t, 40)

	value := "012345678901234567890123456789"
	require.NoError(t, store.Set(ctx, "k", value))
	require.NoError(t, store.Set(ctx, "k", value), "overwrite must not count the old value")

	err := store.Set(ctx, "j", value)
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)
}

func TestUsage(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t, 1024)

	used, quota, err := store.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), used)
	assert.Equal(t, int64(1024), quota)

	require.NoError(t, store.Set(ctx, "abc", "12345"))
	require.NoError(t, store.Set(ctx, "de", "1"))

	used, _, err = store.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), used)
}

func TestOperationsAfterClose(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t, 0)
	require.NoError(t, store.Close())

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, store.Set(ctx, "k", "v"), storage.ErrStorageClosed)
	assert.ErrorIs(t, store.Remove(ctx, "k"), storage.ErrStorageClosed)
	_, _, err = store.Usage(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestBucketMissing(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t, 0)

	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket(bucketKV)
	})
	require.NoError(t, err)

	_, err = store.Get(ctx, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kv bucket not found")

	err = store.Set(ctx, "k", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kv bucket not found")
}
