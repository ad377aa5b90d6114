package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthcheckTimeout bounds a single Healthcheck call.
const HealthcheckTimeout = 3 * time.Second

// Healthcheck returns a probe that pings the pool and checks that the kv table
// created by Migrate is reachable.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, HealthcheckTimeout)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if _, err := pool.Exec(ctx, healthcheckSQL); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
