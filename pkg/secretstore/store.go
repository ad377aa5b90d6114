package secretstore

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/otpfill/pkg/devicekey"
	"github.com/dmitrymomot/otpfill/pkg/envelope"
	"github.com/dmitrymomot/otpfill/pkg/kvstore"
	"github.com/dmitrymomot/otpfill/pkg/logger"
	"github.com/dmitrymomot/otpfill/pkg/prompt"
)

// Cipher converts plaintext to stored envelope bytes and back.
// *envelope.Cipher implements it.
type Cipher interface {
	EncryptBytes(ctx context.Context, plaintext string) ([]byte, error)
	DecryptBytes(ctx context.Context, stored []byte) (string, error)
}

// Store keeps secrets encrypted in a key-value store and asks the user for
// the ones that are missing.
type Store struct {
	kv       kvstore.Store
	cipher   Cipher
	prompter prompt.Prompter
	keys     Keys
	log      *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithKeys overrides the storage identifiers. Defaults to KeysFor("").
func WithKeys(k Keys) Option {
	return func(s *Store) {
		s.keys = k
	}
}

// New creates a Store.
func New(kv kvstore.Store, cipher Cipher, prompter prompt.Prompter, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		cipher:   cipher,
		prompter: prompter,
		keys:     KeysFor(""),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("secretstore"))
	return s
}

// Keys returns the storage identifiers in use.
func (s *Store) Keys() Keys {
	return s.keys
}

// GetOrPrompt returns the stored plaintext for sec, asking the user and
// storing the answer when nothing is stored yet. A stored value that fails to
// decrypt is reported, never silently replaced by a new prompt.
func (s *Store) GetOrPrompt(ctx context.Context, sec Secret) (string, error) {
	v, err := s.Get(ctx, sec.Key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrSecretNotFound) {
		return "", err
	}
	return s.Prompt(ctx, sec)
}

// Prompt always asks and overwrites the stored value on a non-empty answer.
// A cancelled prompt leaves storage untouched and returns ErrNoSecretProvided.
func (s *Store) Prompt(ctx context.Context, sec Secret) (string, error) {
	answer, err := s.prompter.Ask(ctx, sec.Message)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if sec.Normalize != nil {
		answer = sec.Normalize(answer)
	}
	if answer == "" {
		s.log.InfoContext(ctx, "prompt cancelled", logger.StoreKey(sec.Key))
		return "", ErrNoSecretProvided
	}
	if sec.Validate != nil {
		if err := sec.Validate(answer); err != nil {
			return "", errors.Join(ErrInvalidSecret, err)
		}
	}
	if err := s.Put(ctx, sec.Key, answer); err != nil {
		return "", err
	}
	return answer, nil
}

// Get decrypts the value stored under key. Absent values yield
// ErrSecretNotFound; a value that cannot be opened yields
// envelope.ErrDecryptionFailed, including when the device key is gone.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	stored, err := s.kv.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", ErrSecretNotFound
	}
	if err != nil {
		return "", errors.Join(ErrFailedToLoad, err)
	}

	v, err := s.cipher.DecryptBytes(ctx, stored)
	if err != nil {
		if errors.Is(err, devicekey.ErrKeyNotFound) {
			err = errors.Join(envelope.ErrDecryptionFailed, err)
		}
		s.log.ErrorContext(ctx, "stored secret could not be decrypted",
			logger.StoreKey(key),
			logger.Error(err),
		)
		return "", err
	}
	return v, nil
}

// Put encrypts plaintext and stores it under key.
func (s *Store) Put(ctx context.Context, key, plaintext string) error {
	stored, err := s.cipher.EncryptBytes(ctx, plaintext)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, key, stored); err != nil {
		return errors.Join(ErrFailedToStore, err)
	}
	s.log.InfoContext(ctx, "secret stored", logger.StoreKey(key))
	return nil
}

// Delete removes the value stored under key. Deleting an absent value is not
// an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return errors.Join(ErrFailedToStore, err)
	}
	return nil
}

// SaveCredentials stores both fields, or nothing when either is empty. It
// reports whether anything was written.
func (s *Store) SaveCredentials(ctx context.Context, c Credentials) (bool, error) {
	if !c.Complete() {
		return false, nil
	}
	if err := s.Put(ctx, s.keys.Username, c.Username); err != nil {
		return false, err
	}
	if err := s.Put(ctx, s.keys.Password, c.Password); err != nil {
		return false, err
	}
	return true, nil
}

// Credentials returns the stored username and password. Missing entries are
// left empty; entries that fail to decrypt are errors.
func (s *Store) Credentials(ctx context.Context) (Credentials, error) {
	var c Credentials
	var err error
	if c.Username, err = s.optional(ctx, s.keys.Username); err != nil {
		return Credentials{}, err
	}
	if c.Password, err = s.optional(ctx, s.keys.Password); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

func (s *Store) optional(ctx context.Context, key string) (string, error) {
	v, err := s.Get(ctx, key)
	if errors.Is(err, ErrSecretNotFound) {
		return "", nil
	}
	return v, err
}
