// Package cache keeps a user's contact list encrypted in a persistent
// key-value store and decides when it must be refreshed from the remote source.
//
// Each user owns two entries in the store:
//
//	contacts_<userID>   base64(nonce || AES-256-GCM ciphertext) of the envelope
//	last_sync_<userID>  decimal epoch milliseconds of the last successful save
//
// The sync timestamp is stored in clear so staleness can be checked without
// the key. A Cache instance is owned by its caller and is not shared globally;
// callers serialize Save and Load for a given user.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/iudanet/gcontacts/internal/client/storage"
	"github.com/iudanet/gcontacts/internal/crypto"
	"github.com/iudanet/gcontacts/internal/models"
	"github.com/iudanet/gcontacts/internal/validation"
)

const (
	contactsKeyPrefix = "contacts_"
	lastSyncKeyPrefix = "last_sync_"

	// DefaultSyncThreshold is the cache age after which NeedsSync reports true.
	DefaultSyncThreshold = 24 * time.Hour
)

// ContactsKey returns the store key of the user's encrypted envelope.
func ContactsKey(userID string) string {
	return contactsKeyPrefix + userID
}

// LastSyncKey returns the store key of the user's sync timestamp.
func LastSyncKey(userID string) string {
	return lastSyncKeyPrefix + userID
}

// KeyDeriver produces the symmetric key of a user.
type KeyDeriver interface {
	Derive(userID string) (*crypto.Key, error)
}

// Cache is the encrypted contact cache. The zero value is not usable; use New.
type Cache struct {
	store   storage.Store
	deriver KeyDeriver
	logger  *slog.Logger
	now     func() time.Time

	key    *crypto.Key
	userID string
	mu     sync.Mutex
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger sets the logger; slog.Default is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates an uninitialized cache on top of store.
func New(store storage.Store, deriver KeyDeriver, opts ...Option) *Cache {
	c := &Cache{
		store:   store,
		deriver: deriver,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init derives the key of userID and makes it the active session.
// Re-initializing with another user discards the previous key first;
// re-initializing with the active user is a no-op.
func (c *Cache) Init(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initLocked(ctx, userID)
}

func (c *Cache) initLocked(ctx context.Context, userID string) error {
	if c.key != nil && c.userID == userID {
		return nil
	}

	// текущая сессия меняется только после успешной деривации нового ключа
	key, err := c.deriver.Derive(userID)
	if err != nil {
		if errors.Is(err, crypto.ErrInvalidUserID) {
			return fmt.Errorf("%w: %w", ErrInvalidUserID, err)
		}
		c.logger.ErrorContext(ctx, "Key derivation failed", "error", err)
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	c.key = key
	c.userID = userID
	c.logger.DebugContext(ctx, "Contact cache initialized",
		"user", crypto.Fingerprint(userID),
		"kdf", key.Scheme())

	return nil
}

// activeUser returns the user of the current session, if any.
func (c *Cache) activeUser() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID, c.key != nil
}

// session returns the key for userID, switching the active session when
// userID differs from the current one. Sessions are never merged.
func (c *Cache) session(ctx context.Context, userID string) (*crypto.Key, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.key == nil {
		return nil, ErrNotInitialized
	}

	if userID != c.userID {
		c.logger.InfoContext(ctx, "User changed, switching cache session",
			"from", crypto.Fingerprint(c.userID),
			"to", crypto.Fingerprint(userID))
		if err := c.initLocked(ctx, userID); err != nil {
			return nil, err
		}
	}

	return c.key, nil
}

// Save encrypts contacts and replaces the user's envelope and sync timestamp.
// A nil list is saved as an empty one. The envelope is fully built before
// the store is touched; if the store rejects a write the previously persisted
// envelope is kept and ErrStorageCapacity (or ErrStorage) is returned.
func (c *Cache) Save(ctx context.Context, userID string, contacts models.ContactList) error {
	if err := validateUserID(userID); err != nil {
		return err
	}

	key, err := c.session(ctx, userID)
	if err != nil {
		return err
	}

	if contacts == nil {
		contacts = models.ContactList{}
	}
	if err := contacts.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	timestamp := c.now().UnixMilli()

	sealed, err := sealContacts(key, userID, contacts, timestamp)
	if err != nil {
		return err
	}

	contactsKey := ContactsKey(userID)

	// запоминаем предыдущий конверт, чтобы откатиться если не запишется метка синхронизации
	previous, prevErr := c.store.Get(ctx, contactsKey)

	if err := c.store.Set(ctx, contactsKey, sealed); err != nil {
		return c.writeError(ctx, "Failed to persist contacts", err, len(sealed))
	}

	if err := c.store.Set(ctx, LastSyncKey(userID), strconv.FormatInt(timestamp, 10)); err != nil {
		c.rollback(ctx, contactsKey, previous, prevErr)
		return c.writeError(ctx, "Failed to persist sync timestamp", err, 0)
	}

	c.logger.InfoContext(ctx, "Saved contacts to local cache",
		"user", crypto.Fingerprint(userID),
		"count", len(contacts),
		"bytes", len(sealed))

	return nil
}

func (c *Cache) writeError(ctx context.Context, msg string, err error, size int) error {
	if errors.Is(err, storage.ErrQuotaExceeded) {
		c.logger.WarnContext(ctx, msg, "error", err, "bytes", size)
		return fmt.Errorf("%w: %w", ErrStorageCapacity, err)
	}
	c.logger.ErrorContext(ctx, msg, "error", err)
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func (c *Cache) rollback(ctx context.Context, contactsKey, previous string, prevErr error) {
	var err error
	switch {
	case prevErr == nil:
		err = c.store.Set(ctx, contactsKey, previous)
	case errors.Is(prevErr, storage.ErrNotFound):
		err = c.store.Remove(ctx, contactsKey)
	default:
		err = fmt.Errorf("previous envelope unknown: %w", prevErr)
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to restore previous envelope", "error", err)
	}
}

// Load returns the user's cached contacts. found is false when nothing is
// cached or when the envelope cannot be decrypted or validated; the cause of
// the latter is logged and the caller is expected to refetch.
// An existing envelope can only be read from an initialized cache.
func (c *Cache) Load(ctx context.Context, userID string) (contacts models.ContactList, found bool, err error) {
	if err := validateUserID(userID); err != nil {
		return nil, false, err
	}

	encoded, err := c.store.Get(ctx, ContactsKey(userID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.logger.DebugContext(ctx, "No contacts in local cache", "user", crypto.Fingerprint(userID))
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	key, err := c.session(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	contacts, timestamp, err := openContacts(key, userID, encoded)
	if err != nil {
		c.logger.WarnContext(ctx, "Cached contacts unreadable, treating as cache miss",
			"user", crypto.Fingerprint(userID),
			"error", err)
		return nil, false, nil
	}

	c.logger.DebugContext(ctx, "Loaded contacts from local cache",
		"user", crypto.Fingerprint(userID),
		"count", len(contacts),
		"saved_at", time.UnixMilli(timestamp))

	return contacts, true, nil
}

// LastSyncTime returns the time of the user's last successful save without
// touching the encrypted envelope. ok is false if the user was never synced.
func (c *Cache) LastSyncTime(ctx context.Context, userID string) (t time.Time, ok bool, err error) {
	if err := validateUserID(userID); err != nil {
		return time.Time{}, false, err
	}

	raw, err := c.store.Get(ctx, LastSyncKey(userID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		c.logger.WarnContext(ctx, "Ignoring malformed sync timestamp",
			"user", crypto.Fingerprint(userID),
			"value", raw)
		return time.Time{}, false, nil
	}

	return time.UnixMilli(ms), true, nil
}

// NeedsSync reports whether the user was never synced or the last sync is
// older than threshold. A non-positive threshold means DefaultSyncThreshold.
func (c *Cache) NeedsSync(ctx context.Context, userID string, threshold time.Duration) (bool, error) {
	if threshold <= 0 {
		threshold = DefaultSyncThreshold
	}

	last, ok, err := c.LastSyncTime(ctx, userID)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}

	return c.now().Sub(last) > threshold, nil
}

// Clear removes the user's envelope and sync timestamp and discards the
// in-memory key, returning the cache to the uninitialized state.
// Clearing a user with nothing stored is not an error.
func (c *Cache) Clear(ctx context.Context, userID string) error {
	c.mu.Lock()
	c.key = nil
	c.userID = ""
	c.mu.Unlock()

	if err := validateUserID(userID); err != nil {
		return err
	}

	err := errors.Join(
		c.store.Remove(ctx, ContactsKey(userID)),
		c.store.Remove(ctx, LastSyncKey(userID)),
	)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to clear user data", "error", err)
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	c.logger.InfoContext(ctx, "User data cleared from local cache", "user", crypto.Fingerprint(userID))
	return nil
}

func validateUserID(userID string) error {
	if err := validation.ValidateUserID(userID); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUserID, err)
	}
	return nil
}
