package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pickstack/itemsearch/internal/domain"
	"github.com/pickstack/itemsearch/internal/domain/search/candidate"
	"github.com/pickstack/itemsearch/internal/domain/search/match"
	"github.com/pickstack/itemsearch/internal/domain/search/request"
	"github.com/pickstack/itemsearch/internal/domain/vector"
	"github.com/pickstack/itemsearch/internal/logger"
	"github.com/pickstack/itemsearch/internal/metrics"

	domdoc "github.com/pickstack/itemsearch/internal/domain/document"
)

// keywordBoost is the fixed additive bonus for a lexical match. It is not
// clamped, so a near-perfect semantic match with a keyword hit can score
// above 1.0 (max 1.15).
const keywordBoost = 0.15

// emptyCorpusMessage explains a zero-result response when the store holds
// no documents at all.
const emptyCorpusMessage = "no documents found in store"

// Response is the outcome of one ranking pass.
type Response struct {
	Query      string
	Results    []candidate.Candidate
	TotalFound int // candidates passing the min_score filter, before truncation
	Returned   int // len(Results) == min(limit, TotalFound)
	Message    string
}

// Service is the ranking engine: it turns a validated request and a corpus
// snapshot into an ordered, filtered, truncated result set.
type Service struct {
	source DocumentSource
	embed  Embedder
}

// New creates a search service.
func New(source DocumentSource, embed Embedder) *Service {
	return &Service{source: source, embed: embed}
}

// Rank executes one ranking pass. The only fatal conditions are an
// unreachable document source and a failed query embedding; every
// per-document or per-product anomaly degrades to a skip.
func (s *Service) Rank(ctx context.Context, req request.Request) (Response, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	embRes, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return Response{}, fmt.Errorf("vectorize query: %w", err)
	}
	queryVector := embRes.Embedding

	docs, err := s.source.Snapshot(ctx)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return Response{}, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	if len(docs) == 0 {
		metrics.SearchRequestsTotal.WithLabelValues("success").Inc()
		return Response{
			Query:   req.Query(),
			Results: []candidate.Candidate{},
			Message: emptyCorpusMessage,
		}, nil
	}

	var ranked []candidate.Candidate
	skipped := 0
	for i := range docs {
		cands, ok := scoreDocument(&docs[i], queryVector, req.Query(), req.MinScore())
		if !ok {
			skipped++
			continue
		}
		ranked = append(ranked, cands...)
	}

	// Stable sort keeps snapshot order on ties; no secondary key.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})

	totalFound := len(ranked)
	if len(ranked) > req.Limit() {
		ranked = ranked[:req.Limit()]
	}
	if ranked == nil {
		ranked = []candidate.Candidate{}
	}

	metrics.SearchRequestsTotal.WithLabelValues("success").Inc()
	metrics.SearchDocumentsSkipped.Add(float64(skipped))
	metrics.SearchCandidatesTotal.Add(float64(totalFound))
	metrics.SearchDuration.Observe(time.Since(start).Seconds())

	log.Debug("ranking pass complete",
		zap.String("query", req.Query()),
		zap.Int("documents", len(docs)),
		zap.Int("skipped", skipped),
		zap.Int("total_found", totalFound),
		zap.Int("returned", len(ranked)),
	)

	resp := Response{
		Query:      req.Query(),
		Results:    ranked,
		TotalFound: totalFound,
		Returned:   len(ranked),
	}
	if totalFound == 0 {
		resp.Message = "no results cleared the score threshold"
	}
	return resp, nil
}

// scoreDocument scores every product of one document against the query.
// ok is false when the document as a whole must be skipped: it failed
// validation or its embedding is unscorable against the query vector.
// A document that merely yields no surviving candidates is not a skip.
func scoreDocument(
	doc *domdoc.Document, queryVector []float32, query string, minScore float64,
) ([]candidate.Candidate, bool) {
	if !doc.Rankable() {
		return nil, false
	}

	similarity, ok := vector.Cosine(doc.Embedding(), queryVector)
	if !ok {
		return nil, false
	}

	// Products are scored independently; iterating names in sorted order
	// keeps tie ordering deterministic across calls.
	names := make([]string, 0, len(doc.Products()))
	for name := range doc.Products() {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []candidate.Candidate
	for _, name := range names {
		rec := doc.Products()[name]
		keywordMatch := match.Matches(query, name, &rec)

		finalScore := similarity
		if keywordMatch {
			finalScore += keywordBoost
		}
		if finalScore < minScore {
			continue
		}

		out = append(out, candidate.New(
			name, rec, doc.UserInfo(), round4(finalScore), keywordMatch, doc.ID(),
		))
	}
	return out, true
}

// round4 rounds to 4 decimal places for the externally visible score.
func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
