// Package request models a validated search request. Bound violations are
// rejected here, before any ranking work starts.
package request

import (
	"fmt"

	"github.com/pickstack/itemsearch/internal/domain"
)

const (
	// DefaultLimit is used when the caller does not specify a limit.
	DefaultLimit = 5
	// MaxLimit bounds the result list length.
	MaxLimit = 100
)

// Request is a validated search request.
type Request struct {
	query    string
	limit    int
	minScore float64
}

// New validates and creates a Request. limit == 0 means "use the default";
// anything else outside [1, MaxLimit] is rejected, as is a minScore
// outside [0, 1] or an empty query.
func New(query string, limit int, minScore float64) (Request, error) {
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return Request{}, fmt.Errorf(
			"%w: limit must be between 1 and %d, got %d", domain.ErrInvalidRequest, MaxLimit, limit,
		)
	}
	if minScore < 0 || minScore > 1 {
		return Request{}, fmt.Errorf(
			"%w: min_score must be between 0.0 and 1.0, got %v", domain.ErrInvalidRequest, minScore,
		)
	}
	return Request{query: query, limit: limit, minScore: minScore}, nil
}

// Query returns the raw query text.
func (r *Request) Query() string { return r.query }

// Limit returns the maximum number of results to return.
func (r *Request) Limit() int { return r.limit }

// MinScore returns the minimum final score a candidate must reach.
func (r *Request) MinScore() float64 { return r.minScore }
