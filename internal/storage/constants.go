package db

import "time"

// Connection and pool settings.
const (
	connectBaseDelay   = 500 * time.Millisecond
	connectMaxDelay    = 5 * time.Second
	maxConnectAttempts = 10

	defaultMaxConns          = 25
	defaultMinConns          = 5
	defaultMaxConnIdleTime   = 30 * time.Minute
	defaultMaxConnLifetime   = time.Hour
	defaultHealthCheckPeriod = time.Minute

	migrationLockID int64 = 1000
)

// Query limits.
const (
	// similarityThreshold is the minimum pg_trgm similarity of a translation memory hit.
	similarityThreshold = 0.3
	defaultPageSize     = 20
	maxPageSize         = 1000
)

// Log field keys.
const (
	logKeyAttempt   = "attempt"
	logKeyDelay     = "delay"
	logKeyVersion   = "version"
	logKeyMigration = "migration"
	logKeyDuration  = "duration"
)
