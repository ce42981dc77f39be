package db

import (
	"context"
	"time"
)

// Store is the document store facade. Consumers depend on the narrow
// sub-interfaces below, not on Store itself.
type Store interface {
	Pinger
	JSONStore
	Scanner
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
}

// Scanner iterates keys matching a pattern.
type Scanner interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
}
