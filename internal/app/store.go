package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/otpfill/pkg/kvstore"
	"github.com/dmitrymomot/otpfill/pkg/logger"
	"github.com/dmitrymomot/otpfill/pkg/mongo"
	"github.com/dmitrymomot/otpfill/pkg/pg"
	"github.com/dmitrymomot/otpfill/pkg/redis"
)

// Backend names a key-value store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendBolt     Backend = "bolt"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
	BackendMongo    Backend = "mongo"
	BackendS3       Backend = "s3"
)

// Valid reports whether b is a known backend.
func (b Backend) Valid() bool {
	switch b {
	case BackendMemory, BackendFile, BackendBolt, BackendRedis, BackendPostgres, BackendMongo, BackendS3:
		return true
	}
	return false
}

// OpenedStore is a connected backend.
type OpenedStore struct {
	kvstore.Store
	Backend Backend

	health func(context.Context) error
	close  func(context.Context) error
}

// Healthcheck pings the backend. Local backends are always healthy.
func (s *OpenedStore) Healthcheck(ctx context.Context) error {
	if s.health == nil {
		return nil
	}
	return s.health(ctx)
}

// Close releases the backend's connections or file locks.
func (s *OpenedStore) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStore connects the backend selected by cfg.Store.
func OpenStore(ctx context.Context, cfg Config, b Backends, log *slog.Logger) (*OpenedStore, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Backend(string(cfg.Store)))

	s, err := openStore(ctx, cfg.Store, b, log)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenStore, err)
	}
	s.Backend = cfg.Store
	log.DebugContext(ctx, "store opened")
	return s, nil
}

func openStore(ctx context.Context, backend Backend, b Backends, log *slog.Logger) (*OpenedStore, error) {
	switch backend {
	case BackendMemory:
		return &OpenedStore{Store: kvstore.NewMemoryStore()}, nil

	case BackendFile:
		fs, err := kvstore.NewFileStore(b.File)
		if err != nil {
			return nil, err
		}
		return &OpenedStore{Store: fs}, nil

	case BackendBolt:
		bs, err := kvstore.NewBoltStore(b.Bolt)
		if err != nil {
			return nil, err
		}
		return &OpenedStore{
			Store: bs,
			close: func(context.Context) error { return bs.Close() },
		}, nil

	case BackendRedis:
		client, err := redis.Connect(ctx, b.Redis)
		if err != nil {
			return nil, err
		}
		rs := redis.NewStore(client, b.Redis.KeyPrefix)
		return &OpenedStore{
			Store:  rs,
			health: redis.Healthcheck(client),
			close:  func(context.Context) error { return rs.Close() },
		}, nil

	case BackendPostgres:
		pool, err := pg.Connect(ctx, b.PG)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, b.PG, log); err != nil {
			pool.Close()
			return nil, err
		}
		return &OpenedStore{
			Store:  pg.NewStore(pool),
			health: pg.Healthcheck(pool),
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case BackendMongo:
		client, err := mongo.New(ctx, b.Mongo)
		if err != nil {
			return nil, err
		}
		return &OpenedStore{
			Store:  mongo.NewStore(client, b.Mongo),
			health: mongo.Healthcheck(client),
			close:  client.Disconnect,
		}, nil

	case BackendS3:
		ss, err := kvstore.NewS3Store(ctx, b.S3)
		if err != nil {
			return nil, err
		}
		return &OpenedStore{
			Store:  ss,
			health: probe(ss),
		}, nil
	}
	return nil, errors.Join(ErrInvalidConfig, errors.New("unknown store backend "+string(backend)))
}

// probe treats a successful lookup or a clean miss as healthy.
func probe(s kvstore.Store) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.Get(ctx, "healthcheck")
		if err == nil || errors.Is(err, kvstore.ErrNotFound) {
			return nil
		}
		return err
	}
}
