package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/otpfill/pkg/kvstore"
)

// querier is the subset of *pgxpool.Pool used by Store.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	selectValueSQL = `SELECT value FROM otpfill_kv WHERE key = $1`
	upsertValueSQL = `INSERT INTO otpfill_kv (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	insertValueSQL = `INSERT INTO otpfill_kv (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`
	deleteValueSQL = `DELETE FROM otpfill_kv WHERE key = $1`
	healthcheckSQL = `SELECT 1 FROM otpfill_kv LIMIT 1`
)

// Store implements kvstore.AtomicStore on the otpfill_kv table created by Migrate.
type Store struct {
	db querier
}

// NewStore wraps a connection pool (or any compatible querier such as a transaction).
func NewStore(db querier) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, kvstore.ErrEmptyKey
	}

	var value []byte
	if err := s.db.QueryRow(ctx, selectValueSQL, key).Scan(&value); err != nil {
		if IsNotFoundError(err) {
			return nil, kvstore.ErrNotFound
		}
		return nil, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return kvstore.ErrEmptyKey
	}
	_, err := s.db.Exec(ctx, upsertValueSQL, key, nonNil(value))
	return err
}

// SetNX inserts the row only if the key is absent.
func (s *Store) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	if key == "" {
		return false, kvstore.ErrEmptyKey
	}
	tag, err := s.db.Exec(ctx, insertValueSQL, key, nonNil(value))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return kvstore.ErrEmptyKey
	}
	_, err := s.db.Exec(ctx, deleteValueSQL, key)
	return err
}

// value is NOT NULL; pgx encodes a nil slice as NULL.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

var _ kvstore.AtomicStore = (*Store)(nil)
