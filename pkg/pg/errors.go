package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	ErrEmptyConnectionString    = errors.New("pg: connection string is empty, set PG_CONN_URL")
	ErrFailedToParseDBConfig    = errors.New("pg: invalid connection string")
	ErrFailedToOpenDBConnection = errors.New("pg: failed to connect")
	ErrFailedToApplyMigrations  = errors.New("pg: failed to apply migrations")
	ErrHealthcheckFailed        = errors.New("pg: healthcheck failed")
)

// IsNotFoundError reports whether err is pgx.ErrNoRows.
func IsNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
