package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// HealthcheckTimeout bounds a single Healthcheck call.
const HealthcheckTimeout = 3 * time.Second

// Healthcheck returns a probe that PINGs the server. The status command uses
// it to tell an unreachable backend from a missing secret.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, HealthcheckTimeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
