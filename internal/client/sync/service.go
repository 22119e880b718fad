package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iudanet/gcontacts/internal/cache"
	"github.com/iudanet/gcontacts/internal/client/identity"
	"github.com/iudanet/gcontacts/internal/crypto"
	"github.com/iudanet/gcontacts/internal/models"
	"github.com/iudanet/gcontacts/pkg/api"
)

// DefaultFetchTimeout - watchdog для загрузки контактов
const DefaultFetchTimeout = 60 * time.Second

//go:generate moq -out source_mock.go . ContactsSource
//go:generate moq -out service_mock.go . Service

// ContactsSource - удаленный источник контактов (People API)
type ContactsSource interface {
	GetUserID(ctx context.Context, accessToken string) (string, error)
	FetchAllContacts(ctx context.Context, accessToken string, onProgress func(string)) ([]api.Person, error)
}

// ContactsCache - локальный зашифрованный кэш
type ContactsCache interface {
	Init(ctx context.Context, userID string) error
	Save(ctx context.Context, userID string, contacts models.ContactList) error
	Load(ctx context.Context, userID string) (models.ContactList, bool, error)
	NeedsSync(ctx context.Context, userID string, threshold time.Duration) (bool, error)
	LastSyncTime(ctx context.Context, userID string) (time.Time, bool, error)
	Clear(ctx context.Context, userID string) error
}

// Service определяет интерфейс для sync.Service
type Service interface {
	// SignIn определяет пользователя и открывает сессию кэша
	SignIn(ctx context.Context, accessToken, idToken string) (string, error)

	// Sync возвращает контакты из кэша или загружает их из источника
	Sync(ctx context.Context, userID, accessToken string, opts Options) (*Result, error)

	// Status возвращает состояние кэша пользователя
	Status(ctx context.Context, userID string) (*Status, error)

	// SignOut удаляет данные пользователя
	SignOut(ctx context.Context, userID string) error
}

// Config - параметры синхронизации
type Config struct {
	Threshold    time.Duration
	FetchTimeout time.Duration
}

// Options - параметры одного вызова Sync
type Options struct {
	// OnProgress получает сообщения о ходе загрузки
	OnProgress func(string)
	// Force загружает контакты даже если кэш свежий
	Force bool
}

// Result contains sync operation results
type Result struct {
	LastSync time.Time

	// FetchError is set when the source failed and cached data was served instead
	FetchError error

	Contacts  models.ContactList
	Skipped   int  // записи без имени, отброшенные при нормализации
	FromCache bool // контакты взяты из кэша
	Stale     bool // кэш устарел, но источник недоступен
	Persisted bool // контакты сохранены в постоянное хранилище
}

// Status describes the cached state of a user
type Status struct {
	LastSync   time.Time
	Contacts   int
	HasSync    bool
	Cached     bool
	NeedsSync  bool
	MemoryOnly bool
}

type service struct {
	source  ContactsSource
	cache   ContactsCache
	logger  *slog.Logger
	memory  map[string]models.ContactList
	cfg     Config
	mu      sync.Mutex
	syncing atomic.Bool
}

// NewService creates a new sync service
func NewService(source ContactsSource, contactsCache ContactsCache, cfg Config, logger *slog.Logger) Service {
	if cfg.Threshold <= 0 {
		cfg.Threshold = cache.DefaultSyncThreshold
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		source: source,
		cache:  contactsCache,
		cfg:    cfg,
		logger: logger,
		memory: make(map[string]models.ContactList),
	}
}

// SignIn resolves the user id from the ID token when present, otherwise from
// the source profile, and initializes the cache session for it.
func (s *service) SignIn(ctx context.Context, accessToken, idToken string) (string, error) {
	var (
		userID string
		err    error
	)

	if idToken != "" {
		userID, err = identity.FromIDToken(idToken)
		if err != nil {
			s.logger.Warn("Failed to read identity from ID token, asking the source", "error", err)
		}
	}
	if userID == "" {
		if accessToken == "" {
			return "", ErrNotSignedIn
		}
		userID, err = s.source.GetUserID(ctx, accessToken)
		if err != nil {
			return "", fmt.Errorf("failed to resolve user id: %w", err)
		}
	}

	if err := s.cache.Init(ctx, userID); err != nil {
		return "", fmt.Errorf("failed to open cache session: %w", err)
	}

	s.logger.Info("Signed in", "user", crypto.Fingerprint(userID))
	return userID, nil
}

// Sync serves fresh cached contacts, otherwise fetches them from the source
// under the watchdog timeout and stores them. Only one Sync runs at a time.
func (s *service) Sync(ctx context.Context, userID, accessToken string, opts Options) (*Result, error) {
	if !s.syncing.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.syncing.Store(false)

	log := s.logger.With("user", crypto.Fingerprint(userID))

	if !opts.Force {
		if result, ok := s.fromCache(ctx, log, userID); ok {
			return result, nil
		}
	}

	log.Info("Fetching contacts from source", "force", opts.Force)

	people, err := s.fetch(ctx, accessToken, opts.OnProgress)
	if err != nil {
		return s.fallback(ctx, log, userID, err)
	}

	contacts, skipped := models.FromPeople(people)
	if skipped > 0 {
		log.Debug("Dropped contacts without a name", "count", skipped)
	}

	result := &Result{
		Contacts: contacts,
		Skipped:  skipped,
		LastSync: time.Now(),
	}

	err = s.cache.Save(ctx, userID, contacts)
	switch {
	case err == nil:
		result.Persisted = true
		s.forget(userID)
		if ts, ok, _ := s.cache.LastSyncTime(ctx, userID); ok {
			result.LastSync = ts
		}
	case errors.Is(err, cache.ErrStorageCapacity), errors.Is(err, cache.ErrStorage):
		// продолжаем в памяти: данные есть, но не переживут перезапуск
		log.Warn("Failed to persist contacts, continuing in memory-only mode", "error", err)
		s.remember(userID, contacts)
	default:
		return nil, fmt.Errorf("failed to save contacts: %w", err)
	}

	log.Info("Synchronization completed",
		"count", len(contacts),
		"skipped", skipped,
		"persisted", result.Persisted)

	return result, nil
}

func (s *service) fromCache(ctx context.Context, log *slog.Logger, userID string) (*Result, bool) {
	if contacts, ok := s.recall(userID); ok {
		return &Result{Contacts: contacts, FromCache: true}, true
	}

	needs, err := s.cache.NeedsSync(ctx, userID, s.cfg.Threshold)
	if err != nil {
		log.Warn("Failed to check cache age", "error", err)
		return nil, false
	}
	if needs {
		return nil, false
	}

	contacts, found, err := s.cache.Load(ctx, userID)
	if err != nil {
		log.Warn("Cached contacts are unusable, refetching", "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	lastSync, _, _ := s.cache.LastSyncTime(ctx, userID)
	log.Debug("Serving contacts from cache", "count", len(contacts))
	return &Result{Contacts: contacts, FromCache: true, Persisted: true, LastSync: lastSync}, true
}

func (s *service) fetch(ctx context.Context, accessToken string, onProgress func(string)) ([]api.Person, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	people, err := s.source.FetchAllContacts(fetchCtx, accessToken, onProgress)
	if err != nil {
		if ctx.Err() == nil && errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %w", ErrFetchTimeout, s.cfg.FetchTimeout, err)
		}
		return nil, err
	}
	return people, nil
}

// fallback отдает устаревший кэш, если источник недоступен
func (s *service) fallback(ctx context.Context, log *slog.Logger, userID string, fetchErr error) (*Result, error) {
	log.Warn("Failed to fetch contacts", "error", fetchErr)

	if ctx.Err() != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", fetchErr)
	}

	if contacts, ok := s.recall(userID); ok {
		return &Result{Contacts: contacts, FromCache: true, Stale: true, FetchError: fetchErr}, nil
	}

	contacts, found, err := s.cache.Load(ctx, userID)
	if err != nil || !found {
		if err != nil {
			log.Warn("Cached contacts are unusable", "error", err)
		}
		return nil, fmt.Errorf("failed to fetch contacts: %w", fetchErr)
	}

	lastSync, _, _ := s.cache.LastSyncTime(ctx, userID)
	log.Info("Serving stale contacts from cache", "count", len(contacts))

	return &Result{
		Contacts:   contacts,
		FromCache:  true,
		Stale:      true,
		Persisted:  true,
		LastSync:   lastSync,
		FetchError: fetchErr,
	}, nil
}

// Status reports cache state without touching the source
func (s *service) Status(ctx context.Context, userID string) (*Status, error) {
	st := &Status{}

	if contacts, ok := s.recall(userID); ok {
		st.Cached = true
		st.MemoryOnly = true
		st.Contacts = len(contacts)
	}

	lastSync, ok, err := s.cache.LastSyncTime(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read last sync time: %w", err)
	}
	st.LastSync, st.HasSync = lastSync, ok

	st.NeedsSync, err = s.cache.NeedsSync(ctx, userID, s.cfg.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to check cache age: %w", err)
	}

	if !st.MemoryOnly {
		contacts, found, err := s.cache.Load(ctx, userID)
		switch {
		case err != nil:
			s.logger.Warn("Cached contacts are unusable", "error", err)
		case found:
			st.Cached = true
			st.Contacts = len(contacts)
		}
	}

	return st, nil
}

// SignOut clears all cached data of the user
func (s *service) SignOut(ctx context.Context, userID string) error {
	s.forget(userID)
	if err := s.cache.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	s.logger.Info("Signed out", "user", crypto.Fingerprint(userID))
	return nil
}

func (s *service) remember(userID string, contacts models.ContactList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory[userID] = contacts
}

func (s *service) recall(userID string) (models.ContactList, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contacts, ok := s.memory[userID]
	return contacts, ok
}

func (s *service) forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memory, userID)
}
