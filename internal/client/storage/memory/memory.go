// Package memory provides an in-process Store used for memory-only sessions
// and tests. Contents are lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/iudanet/gcontacts/internal/client/storage"
)

// Storage is a map-backed Store with optional quota accounting.
type Storage struct {
	data  map[string]string
	quota int64
	used  int64
	mu    sync.RWMutex
}

var _ storage.Backend = (*Storage)(nil)

// New creates an empty store; quota of 0 disables the limit.
func New(quota int64) *Storage {
	return &Storage{
		data:  make(map[string]string),
		quota: quota,
	}
}

func (s *Storage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return value, nil
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.used + storage.EntrySize(key, value)
	if old, ok := s.data[key]; ok {
		used -= storage.EntrySize(key, old)
	}
	if storage.ExceedsQuota(used, s.quota) {
		return fmt.Errorf("%w: %d bytes needed, quota is %d", storage.ErrQuotaExceeded, used, s.quota)
	}

	s.data[key] = value
	s.used = used
	return nil
}

func (s *Storage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.data[key]; ok {
		s.used -= storage.EntrySize(key, old)
		delete(s.data, key)
	}
	return nil
}

func (s *Storage) Usage(_ context.Context) (int64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.used, s.quota, nil
}

// Close is a no-op so the memory store can stand in for file-backed ones.
func (s *Storage) Close() error {
	return nil
}
