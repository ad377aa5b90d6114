package devicekey

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/otpfill/pkg/kvstore"
	"github.com/dmitrymomot/otpfill/pkg/logger"
)

// Manager loads the installation's device key from a key-value store and
// creates it lazily on the first encryption.
type Manager struct {
	store      kvstore.Store
	storageKey string
	log        *slog.Logger

	// mu serialises the create path within the process.
	mu sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// NewManager creates a Manager that keeps the key under storageKey.
func NewManager(store kvstore.Store, storageKey string, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		storageKey: storageKey,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("devicekey"))
	return m
}

// StorageKey returns the identifier the key is persisted under.
func (m *Manager) StorageKey() string {
	return m.storageKey
}

// DecryptionKey returns the persisted key. It never creates one: a fresh key
// could not open anything encrypted before, so absence is ErrKeyNotFound.
func (m *Manager) DecryptionKey(ctx context.Context) (*DecryptionKey, error) {
	raw, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	return newDecryptionKey(raw)
}

// EncryptionKey returns the persisted key, generating and storing a new one on
// first use. Concurrent callers in this process share one creation; across
// processes, stores implementing kvstore.AtomicStore make the first writer win
// and everyone else adopts its key.
func (m *Manager) EncryptionKey(ctx context.Context) (*EncryptionKey, error) {
	raw, err := m.load(ctx)
	if err == nil {
		return newEncryptionKey(raw)
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another goroutine may have created it while we waited.
	raw, err = m.load(ctx)
	if err == nil {
		return newEncryptionKey(raw)
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return nil, err
	}

	raw, err = m.create(ctx)
	if err != nil {
		return nil, err
	}
	return newEncryptionKey(raw)
}

// Exists reports whether a device key is persisted.
func (m *Manager) Exists(ctx context.Context) (bool, error) {
	_, err := m.store.Get(ctx, m.storageKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Join(ErrFailedToLoadKey, err)
	}
	return true, nil
}

func (m *Manager) load(ctx context.Context) ([]byte, error) {
	stored, err := m.store.Get(ctx, m.storageKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadKey, err)
	}
	return parseStored(stored)
}

func (m *Manager) create(ctx context.Context) ([]byte, error) {
	raw, err := GenerateKey()
	if err != nil {
		return nil, err
	}

	atomic, ok := m.store.(kvstore.AtomicStore)
	if !ok {
		if err := m.store.Set(ctx, m.storageKey, raw); err != nil {
			return nil, errors.Join(ErrFailedToStoreKey, err)
		}
		m.log.InfoContext(ctx, "generated new device key", logger.StoreKey(m.storageKey))
		return raw, nil
	}

	created, err := atomic.SetNX(ctx, m.storageKey, raw)
	if err != nil {
		return nil, errors.Join(ErrFailedToStoreKey, err)
	}
	if created {
		m.log.InfoContext(ctx, "generated new device key", logger.StoreKey(m.storageKey))
		return raw, nil
	}

	m.log.InfoContext(ctx, "device key created concurrently, adopting stored key", logger.StoreKey(m.storageKey))
	return m.load(ctx)
}
