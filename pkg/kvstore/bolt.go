package kvstore

import (
	"context"
	"errors"

	"go.etcd.io/bbolt"
)

// BoltStore keeps values in a single bucket of a bbolt database file.
// bbolt holds an exclusive file lock, so only one process can open the store.
type BoltStore struct {
	db     *bbolt.DB
	bucket []byte
}

// NewBoltStore opens (or creates) the database at cfg.Path and ensures the bucket exists.
func NewBoltStore(cfg BoltConfig) (*BoltStore, error) {
	if cfg.Path == "" || cfg.Bucket == "" {
		return nil, errors.Join(ErrInvalidConfig, errors.New("bolt path and bucket are required"))
	}

	db, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{Timeout: cfg.OpenTimeout})
	if err != nil {
		return nil, err
	}

	bucket := []byte(cfg.Bucket)
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltStore{db: db, bucket: bucket}, nil
}

func (s *BoltStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// Values are only valid for the life of the transaction.
		out = clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStore) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), clone(value))
	})
}

func (s *BoltStore) SetNX(_ context.Context, key string, value []byte) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}

	created := false
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b.Get([]byte(key)) != nil {
			return nil
		}
		created = true
		return b.Put([]byte(key), clone(value))
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *BoltStore) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
