package search

import (
	"context"

	"github.com/pickstack/itemsearch/internal/domain"
	domdoc "github.com/pickstack/itemsearch/internal/domain/document"
)

// DocumentSource supplies the corpus snapshot for a ranking pass.
type DocumentSource interface {
	// Snapshot returns all stored documents in a deterministic order.
	Snapshot(ctx context.Context) ([]domdoc.Document, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
