// Package embedding holds decorators around the embedding provider.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/pickstack/itemsearch/internal/domain"
)

// BreakerConfig holds circuit breaker tuning for the embedding provider.
type BreakerConfig struct {
	MinRequests      uint32
	FailureRatio     float64
	OpenTimeout      time.Duration
	HalfOpenMaxCalls uint32
}

func (c BreakerConfig) normalize() BreakerConfig {
	if c.MinRequests == 0 {
		c.MinRequests = 5
	}
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		c.FailureRatio = 0.6
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.HalfOpenMaxCalls == 0 {
		c.HalfOpenMaxCalls = 1
	}
	return c
}

// ResilientEmbedder wraps an Embedder with a circuit breaker so a failing
// provider fast-fails instead of being hammered on every search.
type ResilientEmbedder struct {
	inner   domain.Embedder
	breaker *gobreaker.CircuitBreaker[domain.EmbeddingResult]
}

// NewResilientEmbedder creates the circuit-breaker decorator.
func NewResilientEmbedder(inner domain.Embedder, cfg BreakerConfig, logger *zap.Logger) *ResilientEmbedder {
	cfg = cfg.normalize()

	settings := gobreaker.Settings{
		Name:        "embedding",
		MaxRequests: cfg.HalfOpenMaxCalls,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("embedding circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &ResilientEmbedder{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[domain.EmbeddingResult](settings),
	}
}

// Embed delegates through the breaker. An open breaker surfaces as an
// embedding provider error so transport maps it to 502.
func (e *ResilientEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.breaker.Execute(func() (domain.EmbeddingResult, error) {
		return e.inner.Embed(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.EmbeddingResult{}, fmt.Errorf(
				"embedding circuit open: %w", domain.ErrEmbeddingProviderError,
			)
		}
		return domain.EmbeddingResult{}, err
	}
	return res, nil
}

// HealthCheck delegates to the inner embedder when it supports checks.
func (e *ResilientEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
