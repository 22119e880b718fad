package cache

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gcontacts/internal/client/storage"
	"github.com/iudanet/gcontacts/internal/client/storage/memory"
	"github.com/iudanet/gcontacts/internal/crypto"
	"github.com/iudanet/gcontacts/internal/models"
)

type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type deriverFunc func(userID string) (*crypto.Key, error)

func (f deriverFunc) Derive(userID string) (*crypto.Key, error) {
	return f(userID)
}

func newDeriver(t *testing.T) *crypto.KeyDeriver {
	t.Helper()
	d, err := crypto.NewKeyDeriver(crypto.SchemeSHA256)
	require.NoError(t, err)
	return d
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCache(t *testing.T, store storage.Store) (*Cache, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	c := New(store, newDeriver(t), WithClock(clock.Now), WithLogger(discardLogger()))
	return c, clock
}

func ada() models.ContactList {
	return models.ContactList{
		{ID: "p1", DisplayName: "Ada Lovelace", Emails: []string{"ada@example.com"}, Phones: []string{}},
	}
}

func TestCache_Scenario(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, memory.New(0))

	require.NoError(t, c.Init(ctx, "user-42"))
	require.NoError(t, c.Save(ctx, "user-42", ada()))

	got, found, err := c.Load(ctx, "user-42")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ada(), got)

	last, ok, err := c.LastSyncTime(ctx, "user-42")
	require.NoError(t, err)
	require.True(t, ok)
	assert.WithinDuration(t, clock.Now(), last, time.Second)

	require.NoError(t, c.Clear(ctx, "user-42"))

	got, found, err = c.Load(ctx, "user-42")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestCache_RoundTrip(t *testing.T) {
	many := make(models.ContactList, 0, 500)
	for i := range 500 {
		many = append(many, models.Contact{
			ID:          fmt.Sprintf("people/c%d", i),
			DisplayName: fmt.Sprintf("Contact %03d", i),
			Emails:      []string{fmt.Sprintf("c%d@example.com", i)},
			Phones:      []string{fmt.Sprintf("+1 555 %04d", i)},
		})
	}

	tests := []struct {
		name     string
		contacts models.ContactList
	}{
		{name: "single contact", contacts: ada()},
		{name: "unicode and nil fields", contacts: models.ContactList{
			{ID: "people/c9", DisplayName: "Фёдор Достоевский", Emails: nil, Phones: []string{"+7 812 000-00-00"}},
			{ID: "people/c10", DisplayName: "李白 🌙", Emails: []string{"li@example.cn", "bai@example.cn"}},
		}},
		{name: "many contacts", contacts: many},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c, _ := newTestCache(t, memory.New(0))
			require.NoError(t, c.Init(ctx, "user-roundtrip"))

			require.NoError(t, c.Save(ctx, "user-roundtrip", tt.contacts))

			got, found, err := c.Load(ctx, "user-roundtrip")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, tt.contacts, got)
		})
	}
}

func TestCache_EmptyList(t *testing.T) {
	for _, list := range []models.ContactList{nil, {}} {
		ctx := context.Background()
		c, _ := newTestCache(t, memory.New(0))
		require.NoError(t, c.Init(ctx, "user-empty"))

		require.NoError(t, c.Save(ctx, "user-empty", ada()))
		require.NoError(t, c.Save(ctx, "user-empty", list), "empty list overwrites previous contacts")

		got, found, err := c.Load(ctx, "user-empty")
		require.NoError(t, err)
		require.True(t, found, "empty list is a valid synced state")
		assert.NotNil(t, got)
		assert.Empty(t, got)

		needs, err := c.NeedsSync(ctx, "user-empty", DefaultSyncThreshold)
		require.NoError(t, err)
		assert.False(t, needs)
	}
}

func TestCache_NotInitialized(t *testing.T) {
	ctx := context.Background()
	store := memory.New(0)
	c, _ := newTestCache(t, store)

	err := c.Save(ctx, "user-42", ada())
	assert.ErrorIs(t, err, ErrNotInitialized)

	// ничего не сохранено - обычный промах, ключ не нужен
	got, found, err := c.Load(ctx, "user-42")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)

	// конверт существует - без Init прочитать его нельзя
	writer, _ := newTestCache(t, store)
	require.NoError(t, writer.Init(ctx, "user-42"))
	require.NoError(t, writer.Save(ctx, "user-42", ada()))

	_, _, err = c.Load(ctx, "user-42")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, ok := c.activeUser()
	assert.False(t, ok)
}

func TestCache_InitErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid user id", func(t *testing.T) {
		c, _ := newTestCache(t, memory.New(0))
		for _, userID := range []string{"", "abc"} {
			err := c.Init(ctx, userID)
			assert.ErrorIs(t, err, ErrInvalidUserID)
		}
		_, ok := c.activeUser()
		assert.False(t, ok)
	})

	t.Run("crypto unavailable", func(t *testing.T) {
		broken := deriverFunc(func(string) (*crypto.Key, error) {
			return nil, fmt.Errorf("%w: no AES", crypto.ErrUnavailable)
		})
		c := New(memory.New(0), broken, WithLogger(discardLogger()))

		err := c.Init(ctx, "user-42")
		assert.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestCache_RejectedUserKeepsSession(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, memory.New(0))

	require.NoError(t, c.Init(ctx, "user-42"))

	err := c.Save(ctx, "ab", ada())
	assert.ErrorIs(t, err, ErrInvalidUserID)

	err = c.Init(ctx, "abc")
	assert.ErrorIs(t, err, ErrInvalidUserID)

	userID, ok := c.activeUser()
	require.True(t, ok)
	assert.Equal(t, "user-42", userID)

	require.NoError(t, c.Save(ctx, "user-42", ada()))
	got, found, err := c.Load(ctx, "user-42")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ada(), got)
}

func TestCache_FailedDerivationKeepsSession(t *testing.T) {
	ctx := context.Background()
	base := newDeriver(t)
	flaky := deriverFunc(func(userID string) (*crypto.Key, error) {
		if userID == "user-43" {
			return nil, fmt.Errorf("%w: no AES", crypto.ErrUnavailable)
		}
		return base.Derive(userID)
	})
	c := New(memory.New(0), flaky, WithLogger(discardLogger()))

	require.NoError(t, c.Init(ctx, "user-42"))

	err := c.Save(ctx, "user-43", ada())
	assert.ErrorIs(t, err, ErrConfiguration)

	userID, ok := c.activeUser()
	require.True(t, ok)
	assert.Equal(t, "user-42", userID)
	assert.NoError(t, c.Save(ctx, "user-42", ada()))
}

func TestCache_InitIdempotent(t *testing.T) {
	ctx := context.Background()
	calls := 0
	base := newDeriver(t)
	counting := deriverFunc(func(userID string) (*crypto.Key, error) {
		calls++
		return base.Derive(userID)
	})
	c := New(memory.New(0), counting, WithLogger(discardLogger()))

	require.NoError(t, c.Init(ctx, "user-42"))
	require.NoError(t, c.Init(ctx, "user-42"))
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Init(ctx, "user-43"))
	assert.Equal(t, 2, calls)

	userID, ok := c.activeUser()
	assert.True(t, ok)
	assert.Equal(t, "user-43", userID)
}

func TestCache_SwitchSession(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, memory.New(0))

	alice := models.ContactList{{ID: "a1", DisplayName: "Alice's friend"}}
	bob := models.ContactList{{ID: "b1", DisplayName: "Bob's friend"}}

	require.NoError(t, c.Init(ctx, "alice-id"))
	require.NoError(t, c.Save(ctx, "alice-id", alice))

	// другой userID переключает сессию, а не смешивает данные
	require.NoError(t, c.Save(ctx, "bob-id-1", bob))
	userID, _ := c.activeUser()
	assert.Equal(t, "bob-id-1", userID)

	got, found, err := c.Load(ctx, "alice-id")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, alice, got)

	got, found, err = c.Load(ctx, "bob-id-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, bob, got)
}

func TestCache_ForeignEnvelopeIsMiss(t *testing.T) {
	ctx := context.Background()
	store := memory.New(0)
	c, _ := newTestCache(t, store)

	require.NoError(t, c.Init(ctx, "user-one"))
	require.NoError(t, c.Save(ctx, "user-one", ada()))

	// подкладываем конверт user-one под ключ user-two
	stolen, err := store.Get(ctx, ContactsKey("user-one"))
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, ContactsKey("user-two"), stolen))

	require.NoError(t, c.Init(ctx, "user-two"))
	got, found, err := c.Load(ctx, "user-two")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestCache_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := memory.New(0)

	first, _ := newTestCache(t, store)
	require.NoError(t, first.Init(ctx, "user-42"))
	require.NoError(t, first.Save(ctx, "user-42", ada()))

	second, _ := newTestCache(t, store)
	require.NoError(t, second.Init(ctx, "user-42"))
	got, found, err := second.Load(ctx, "user-42")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ada(), got)
}

func TestCache_UniqueCiphertext(t *testing.T) {
	ctx := context.Background()
	store := memory.New(0)
	c, _ := newTestCache(t, store)
	require.NoError(t, c.Init(ctx, "user-42"))

	require.NoError(t, c.Save(ctx, "user-42", ada()))
	first, err := store.Get(ctx, ContactsKey("user-42"))
	require.NoError(t, err)

	require.NoError(t, c.Save(ctx, "user-42", ada()))
	second, err := store.Get(ctx, ContactsKey("user-42"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	a, err := base64.StdEncoding.DecodeString(first)
	require.NoError(t, err)
	b, err := base64.StdEncoding.DecodeString(second)
	require.NoError(t, err)
	assert.NotEqual(t, a[:crypto.NonceSize], b[:crypto.NonceSize])
}

func TestCache_Staleness(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t, memory.New(0))

	needs, err := c.NeedsSync(ctx, "user-42", DefaultSyncThreshold)
	require.NoError(t, err)
	assert.True(t, needs, "never synced")

	_, ok, err := c.LastSyncTime(ctx, "user-42")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Init(ctx, "user-42"))
	require.NoError(t, c.Save(ctx, "user-42", ada()))

	needs, err = c.NeedsSync(ctx, "user-42", DefaultSyncThreshold)
	require.NoError(t, err)
	assert.False(t, needs, "just synced")

	clock.Advance(24 * time.Hour)
	needs, err = c.NeedsSync(ctx, "user-42", 0)
	require.NoError(t, err)
	assert.False(t, needs, "exactly at the threshold is still fresh")

	clock.Advance(time.Millisecond)
	needs, err = c.NeedsSync(ctx, "user-42", 0)
	require.NoError(t, err)
	assert.True(t, needs, "past the default threshold")

	needs, err = c.NeedsSync(ctx, "user-42", 48*time.Hour)
	require.NoError(t, err)
	assert.False(t, needs, "custom threshold")

	require.NoError(t, c.Clear(ctx, "user-42"))
	needs, err = c.NeedsSync(ctx, "user-42", 48*time.Hour)
	require.NoError(t, err)
	assert.True(t, needs, "cleared user needs sync")
}

func TestCache_StalenessWithoutKey(t *testing.T) {
	ctx := context.Background()
	store := memory.New(0)
	require.NoError(t, store.Set(ctx, LastSyncKey("user-42"), "1709294400000"))

	c, clock := newTestCache(t, store)
	clock.now = time.UnixMilli(1709294400000).Add(time.Hour)

	last, ok, err := c.LastSyncTime(ctx, "user-42")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1709294400000), last.UnixMilli())

	needs, err := c.NeedsSync(ctx, "user-42", 2*time.Hour)
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestCache_MalformedSyncTimestamp(t *testing.T) {
	ctx := context.Background()
	store := memory.New(0)
	c, _ := newTestCache(t, store)

	for _, raw := range []string{"", "abc", "-5", "0"} {
		require.NoError(t, store.Set(ctx, LastSyncKey("user-42"), raw))

		_, ok, err := c.LastSyncTime(ctx, "user-42")
		require.NoError(t, err)
		assert.False(t, ok, "value %q", raw)

		needs, err := c.NeedsSync(ctx, "user-42", 0)
		require.NoError(t, err)
		assert.True(t, needs, "value %q", raw)
	}
}

func TestCache_CorruptEnvelope(t *testing.T) {
	ctx := context.Background()
	store := memory.New(0)
	c, _ := newTestCache(t, store)
	require.NoError(t, c.Init(ctx, "user-42"))
	require.NoError(t, c.Save(ctx, "user-42", ada()))

	original, err := store.Get(ctx, ContactsKey("user-42"))
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(original)
	require.NoError(t, err)

	for _, pos := range []int{0, crypto.NonceSize - 1, crypto.NonceSize, len(raw) / 2, len(raw) - 1} {
		t.Run(fmt.Sprintf("byte %d", pos), func(t *testing.T) {
			mutated := append([]byte(nil), raw...)
			mutated[pos] ^= 0x01
			require.NoError(t, store.Set(ctx, ContactsKey("user-42"), base64.StdEncoding.EncodeToString(mutated)))

			got, found, err := c.Load(ctx, "user-42")
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, got)
		})
	}

	for name, value := range map[string]string{
		"not base64": "%%%not-base64%%%",
		"truncated":  base64.StdEncoding.EncodeToString(raw[:10]),
		"empty":      "",
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, ContactsKey("user-42"), value))

			got, found, err := c.Load(ctx, "user-42")
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, got)
		})
	}
}

func TestCache_CapacityKeepsPreviousEnvelope(t *testing.T) {
	ctx := context.Background()
	store := memory.New(2048)
	c, clock := newTestCache(t, store)
	require.NoError(t, c.Init(ctx, "user-42"))

	require.NoError(t, c.Save(ctx, "user-42", ada()))
	before, err := store.Get(ctx, ContactsKey("user-42"))
	require.NoError(t, err)
	firstSync, _, err := c.LastSyncTime(ctx, "user-42")
	require.NoError(t, err)

	huge := models.ContactList{}
	for i := range 100 {
		huge = append(huge, models.Contact{
			ID:          fmt.Sprintf("people/c%d", i),
			DisplayName: strings.Repeat("n", 50),
		})
	}

	clock.Advance(time.Hour)
	err = c.Save(ctx, "user-42", huge)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageCapacity)

	after, err := store.Get(ctx, ContactsKey("user-42"))
	require.NoError(t, err)
	assert.Equal(t, before, after)

	lastSync, _, err := c.LastSyncTime(ctx, "user-42")
	require.NoError(t, err)
	assert.Equal(t, firstSync, lastSync)

	got, found, err := c.Load(ctx, "user-42")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ada(), got)
}

func TestCache_SyncTimestampFailureRestoresEnvelope(t *testing.T) {
	ctx := context.Background()
	backing := memory.New(0)
	failTimestamp := false

	store := &storage.StoreMock{
		GetFunc:    backing.Get,
		RemoveFunc: backing.Remove,
		SetFunc: func(ctx context.Context, key, value string) error {
			if failTimestamp && strings.HasPrefix(key, "last_sync_") {
				return fmt.Errorf("%w: disk full", storage.ErrQuotaExceeded)
			}
			return backing.Set(ctx, key, value)
		},
	}

	c, _ := newTestCache(t, store)
	require.NoError(t, c.Init(ctx, "user-42"))

	t.Run("no previous envelope", func(t *testing.T) {
		failTimestamp = true
		err := c.Save(ctx, "user-42", ada())
		assert.ErrorIs(t, err, ErrStorageCapacity)

		_, err = backing.Get(ctx, ContactsKey("user-42"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("previous envelope restored", func(t *testing.T) {
		failTimestamp = false
		require.NoError(t, c.Save(ctx, "user-42", ada()))
		before, err := backing.Get(ctx, ContactsKey("user-42"))
		require.NoError(t, err)

		failTimestamp = true
		err = c.Save(ctx, "user-42", models.ContactList{{ID: "other"}})
		assert.ErrorIs(t, err, ErrStorageCapacity)

		after, err := backing.Get(ctx, ContactsKey("user-42"))
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestCache_StoreFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("io error")
	store := &storage.StoreMock{
		GetFunc: func(context.Context, string) (string, error) {
			return "", boom
		},
		SetFunc: func(context.Context, string, string) error {
			return boom
		},
		RemoveFunc: func(context.Context, string) error {
			return boom
		},
	}

	c, _ := newTestCache(t, store)
	require.NoError(t, c.Init(ctx, "user-42"))

	err := c.Save(ctx, "user-42", ada())
	assert.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrStorageCapacity)

	_, _, err = c.Load(ctx, "user-42")
	assert.ErrorIs(t, err, ErrStorage)

	_, err = c.NeedsSync(ctx, "user-42", 0)
	assert.ErrorIs(t, err, ErrStorage)

	err = c.Clear(ctx, "user-42")
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, boom)
}

func TestCache_InvalidContacts(t *testing.T) {
	ctx := context.Background()
	store := memory.New(0)
	c, _ := newTestCache(t, store)
	require.NoError(t, c.Init(ctx, "user-42"))

	err := c.Save(ctx, "user-42", models.ContactList{{DisplayName: "no id"}})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = store.Get(ctx, ContactsKey("user-42"))
	assert.ErrorIs(t, err, storage.ErrNotFound, "nothing written for invalid input")
}

func TestCache_Clear(t *testing.T) {
	ctx := context.Background()
	store := memory.New(0)
	c, _ := newTestCache(t, store)

	// ничего не сохранено - не ошибка
	require.NoError(t, c.Clear(ctx, "user-42"))

	require.NoError(t, c.Init(ctx, "user-42"))
	require.NoError(t, c.Save(ctx, "user-42", ada()))
	require.NoError(t, c.Clear(ctx, "user-42"))

	_, ok := c.activeUser()
	assert.False(t, ok)

	_, err := store.Get(ctx, ContactsKey("user-42"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Get(ctx, LastSyncKey("user-42"))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, c.Save(ctx, "user-42", ada()), ErrNotInitialized)
	assert.ErrorIs(t, c.Clear(ctx, ""), ErrInvalidUserID)
}

func TestCache_StoreLayout(t *testing.T) {
	ctx := context.Background()
	store := memory.New(0)
	c, clock := newTestCache(t, store)
	require.NoError(t, c.Init(ctx, "user-42"))
	require.NoError(t, c.Save(ctx, "user-42", ada()))

	ts, err := store.Get(ctx, "last_sync_user-42")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprint(clock.Now().UnixMilli()), ts)

	envelope, err := store.Get(ctx, "contacts_user-42")
	require.NoError(t, err)
	assert.NotContains(t, envelope, "Ada")

	used, _, err := store.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len("contacts_user-42")+len(envelope)+len("last_sync_user-42")+len(ts)), used)
}
