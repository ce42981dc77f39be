package health

import "context"

// DBPinger checks document store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// DocumentCounter reports corpus size for the readiness surface.
type DocumentCounter interface {
	Count(ctx context.Context) (int, error)
	CountWithEmbedding(ctx context.Context) (int, error)
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
