package postgres

import (
	"database/sql"
	"errors"
	"hash/fnv"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nullStringValue(value sql.NullString) any {
	if !value.Valid {
		return nil
	}
	return value.String
}

// advisoryLockKey maps a game id onto the bigint key space of pg_advisory_xact_lock.
func advisoryLockKey(gameID string) int64 {
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(gameID))
	return int64(hash.Sum64())
}
