package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gcontacts/internal/client/storage"
)

// Get returns the value stored under key
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	if s.db == nil {
		return "", storage.ErrStorageClosed
	}

	var value string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("kv bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrNotFound
		}

		// data валидна только внутри транзакции, string() делает копию
		value = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}

	return value, nil
}

// Set stores value under key. The quota check and the write happen in one
// transaction, so a rejected write leaves the previous value in place.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("kv bucket not found")
		}

		if s.quota > 0 {
			used, err := bucketUsage(bucket)
			if err != nil {
				return err
			}
			if old := bucket.Get([]byte(key)); old != nil {
				used -= storage.EntrySize(key, string(old))
			}
			used += storage.EntrySize(key, value)
			if storage.ExceedsQuota(used, s.quota) {
				return fmt.Errorf("%w: %d bytes needed, quota is %d", storage.ErrQuotaExceeded, used, s.quota)
			}
		}

		if err := bucket.Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("failed to save value: %w", err)
		}

		return nil
	})
}

// Remove deletes key; missing keys are ignored
func (s *Storage) Remove(ctx context.Context, key string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("kv bucket not found")
		}

		if err := bucket.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete value: %w", err)
		}
		return nil
	})
}

// Usage returns bytes used by all entries and the configured quota
func (s *Storage) Usage(ctx context.Context) (int64, int64, error) {
	if s.db == nil {
		return 0, 0, storage.ErrStorageClosed
	}

	var used int64
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("kv bucket not found")
		}

		var err error
		used, err = bucketUsage(bucket)
		return err
	})
	if err != nil {
		return 0, 0, err
	}

	return used, s.quota, nil
}

func bucketUsage(bucket *bbolt.Bucket) (int64, error) {
	var used int64
	err := bucket.ForEach(func(k, v []byte) error {
		used += int64(len(k) + len(v))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to compute usage: %w", err)
	}
	return used, nil
}
