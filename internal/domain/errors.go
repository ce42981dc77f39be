package domain

import "errors"

var (
	// ErrStoreUnavailable signals that the backing document store cannot be reached.
	// It is the single fatal precondition of a ranking pass.
	ErrStoreUnavailable = errors.New("backing document store unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrInvalidRequest signals search parameters outside their declared bounds.
	ErrInvalidRequest = errors.New("invalid search request")
)
