package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/otpfill/pkg/kvstore"
)

type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store implements kvstore.AtomicStore with one document per key.
// The key is the document _id, so uniqueness comes from the primary index.
type Store struct {
	coll *mongo.Collection
}

// NewStore uses the collection named by cfg in cfg.Database.
func NewStore(client *mongo.Client, cfg Config) *Store {
	return &Store{coll: client.Database(cfg.Database).Collection(cfg.Collection)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, kvstore.ErrEmptyKey
	}

	var doc kvDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, kvstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if doc.Value == nil {
		doc.Value = []byte{}
	}
	return doc.Value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return kvstore.ErrEmptyKey
	}

	_, err := s.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: key}},
		kvDocument{Key: key, Value: value, UpdatedAt: time.Now().UTC()},
		options.Replace().SetUpsert(true),
	)
	return err
}

// SetNX inserts the document and treats a duplicate _id as "already present".
func (s *Store) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	if key == "" {
		return false, kvstore.ErrEmptyKey
	}

	_, err := s.coll.InsertOne(ctx, kvDocument{Key: key, Value: value, UpdatedAt: time.Now().UTC()})
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return kvstore.ErrEmptyKey
	}
	_, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}})
	return err
}

var _ kvstore.AtomicStore = (*Store)(nil)
