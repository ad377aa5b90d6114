// Package pg stores encrypted secrets in PostgreSQL using the pgx/v5 driver.
//
// It offers three cooperating building blocks:
//
//   - Config: populated from environment variables via github.com/caarlos0/env;
//     controls pool limits, health-check cadence and the goose version table.
//   - Connect: opens a *pgxpool.Pool, retrying with linear back-off.
//   - Migrate: applies the embedded goose migrations that create the
//     otpfill_kv table.
//
// Store implements kvstore.AtomicStore on that table. SetNX uses
// INSERT ... ON CONFLICT DO NOTHING, so only one writer can create the device key.
//
// # Usage
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    return err
//	}
//	store := pg.NewStore(pool)
package pg
