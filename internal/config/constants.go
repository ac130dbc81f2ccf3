package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Transport timeouts
const (
	ServerShutdownTimeout = 30 * time.Second
	ConnWriteTimeout      = 15 * time.Second
)

// Maximum accepted frame size on a client connection (1 MiB). Content
// version payloads carry full map content, which dominates frame size.
const MaxFrameBytes = 1 << 20

// Per-run time budget for the expiry sweeper.
const SweepRunTimeout = 30 * time.Second
