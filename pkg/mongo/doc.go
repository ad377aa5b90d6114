// Package mongo connects to MongoDB and exposes a collection as a key-value
// backend for encrypted secrets.
//
// New applies the Config pool settings and retries the initial ping. Store
// keeps one document per key ({_id, value, updated_at}); SetNX relies on the
// _id uniqueness, so a duplicate-key error means another writer got there first.
//
// # Usage
//
//	client, err := mongo.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Disconnect(context.Background())
//
//	store := mongo.NewStore(client, cfg)
//	if err := mongo.Healthcheck(client)(ctx); err != nil {
//	    // not reachable
//	}
package mongo
