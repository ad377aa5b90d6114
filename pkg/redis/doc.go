// Package redis connects to a Redis server and exposes it as a key-value
// backend for encrypted secrets.
//
// The package wraps go-redis and adds:
//
//   - Connect, which retries the initial ping using the supplied configuration.
//   - Store, a kvstore.AtomicStore whose SetNX maps to the SETNX command, so
//     concurrent first runs agree on a single device key.
//   - Healthcheck, a ping helper for liveness checks.
//
// Configuration is described by Config whose fields are populated from
// environment variables via github.com/caarlos0/env.
//
// # Usage
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := redis.NewStore(client, cfg.KeyPrefix)
//	defer store.Close()
//
// # Errors
//
// Sentinel errors (ErrRedisNotReady and friends) wrap the underlying go-redis
// errors using errors.Join. Missing keys are reported as kvstore.ErrNotFound.
package redis
