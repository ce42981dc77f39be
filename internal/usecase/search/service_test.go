package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/pickstack/itemsearch/internal/domain"
	domdoc "github.com/pickstack/itemsearch/internal/domain/document"
	"github.com/pickstack/itemsearch/internal/domain/document/product"
	"github.com/pickstack/itemsearch/internal/domain/search/request"
)

// --- Mocks ---

type mockSource struct {
	docs   []domdoc.Document
	err    error
	called bool
}

func (m *mockSource) Snapshot(_ context.Context) ([]domdoc.Document, error) {
	m.called = true
	return m.docs, m.err
}

type mockEmbedder struct {
	vec    []float32
	err    error
	called bool
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called = true
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

func mustRequest(t *testing.T, query string, limit int, minScore float64) request.Request {
	t.Helper()
	r, err := request.New(query, limit, minScore)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return r
}

func products(names ...string) map[string]product.Record {
	m := make(map[string]product.Record, len(names))
	for _, n := range names {
		m[n] = product.Record{}
	}
	return m
}

// threeDocCorpus builds the reference corpus: A cosine ~0.9 with a name
// match for "brake", B cosine 0.5 with no match, C missing its embedding.
// Query vector is (1, 0).
func threeDocCorpus() []domdoc.Document {
	// cos(A, q) = 0.9 with unit q=(1,0): A = (0.9, sqrt(1-0.81))
	a := domdoc.New("doc-a",
		[]float32{0.9, float32(math.Sqrt(1 - 0.81))},
		products("brake cable"),
		domdoc.UserInfo{UserID: "u1", UserName: "alex", PickUpLocation: "block C"},
	)
	b := domdoc.New("doc-b",
		[]float32{0.5, float32(math.Sqrt(1 - 0.25))},
		products("water bottle"),
		domdoc.UserInfo{UserID: "u2"},
	)
	c := domdoc.Reconstruct("doc-c", nil, products("mystery item"), domdoc.UserInfo{})
	return []domdoc.Document{a, b, c}
}

// --- Tests ---

func TestRank_ReferenceCorpus(t *testing.T) {
	source := &mockSource{docs: threeDocCorpus()}
	embed := &mockEmbedder{vec: []float32{1, 0}}
	svc := New(source, embed)

	resp, err := svc.Rank(context.Background(), mustRequest(t, "brake", 5, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.TotalFound != 2 {
		t.Fatalf("TotalFound = %d, want 2", resp.TotalFound)
	}
	if resp.Returned != 2 || len(resp.Results) != 2 {
		t.Fatalf("Returned = %d, len = %d, want 2", resp.Returned, len(resp.Results))
	}

	first := resp.Results[0]
	if first.DocumentID() != "doc-a" {
		t.Errorf("first result = %q, want doc-a", first.DocumentID())
	}
	if !first.KeywordMatch() {
		t.Error("doc-a must carry the keyword boost")
	}
	if math.Abs(first.Score()-1.05) > 1e-4 {
		t.Errorf("doc-a score = %v, want 1.05 (0.9 + 0.15)", first.Score())
	}

	second := resp.Results[1]
	if second.DocumentID() != "doc-b" {
		t.Errorf("second result = %q, want doc-b", second.DocumentID())
	}
	if second.KeywordMatch() {
		t.Error("doc-b must not match the keyword")
	}
	if math.Abs(second.Score()-0.5) > 1e-4 {
		t.Errorf("doc-b score = %v, want 0.5", second.Score())
	}
	if first.UserInfo().UserName != "alex" {
		t.Errorf("user info not carried: %+v", first.UserInfo())
	}
}

func TestRank_MinScoreFiltersPerProduct(t *testing.T) {
	source := &mockSource{docs: threeDocCorpus()}
	embed := &mockEmbedder{vec: []float32{1, 0}}
	svc := New(source, embed)

	resp, err := svc.Rank(context.Background(), mustRequest(t, "brake", 5, 0.9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalFound != 1 {
		t.Fatalf("TotalFound = %d, want 1", resp.TotalFound)
	}
	if resp.Results[0].DocumentID() != "doc-a" {
		t.Errorf("surviving result = %q, want doc-a", resp.Results[0].DocumentID())
	}
}

func TestRank_EmptyCorpus(t *testing.T) {
	svc := New(&mockSource{}, &mockEmbedder{vec: []float32{1}})

	resp, err := svc.Rank(context.Background(), mustRequest(t, "brake", 5, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 0 || resp.TotalFound != 0 || resp.Returned != 0 {
		t.Errorf("empty corpus: %+v", resp)
	}
	if resp.Message == "" {
		t.Error("empty corpus response must carry an explanatory message")
	}
}

func TestRank_StoreUnavailableIsFatal(t *testing.T) {
	source := &mockSource{err: errors.New("connection refused")}
	svc := New(source, &mockEmbedder{vec: []float32{1}})

	_, err := svc.Rank(context.Background(), mustRequest(t, "brake", 5, 0))
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestRank_EmbedderFailureIsFatal(t *testing.T) {
	source := &mockSource{docs: threeDocCorpus()}
	embed := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	svc := New(source, embed)

	_, err := svc.Rank(context.Background(), mustRequest(t, "brake", 5, 0))
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected embedding provider error, got %v", err)
	}
	if source.called {
		t.Error("store must not be hit when the query cannot be embedded")
	}
}

func TestRank_DimensionMismatchSkipsDocumentOnly(t *testing.T) {
	short := domdoc.New("doc-short", make([]float32, 10), products("thing"), domdoc.UserInfo{})
	good := domdoc.New("doc-good", append([]float32{1}, make([]float32, 19)...), products("thing"), domdoc.UserInfo{})
	source := &mockSource{docs: []domdoc.Document{short, good}}
	embed := &mockEmbedder{vec: append([]float32{1}, make([]float32, 19)...)}
	svc := New(source, embed)

	resp, err := svc.Rank(context.Background(), mustRequest(t, "nothing", 5, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalFound != 1 || resp.Results[0].DocumentID() != "doc-good" {
		t.Errorf("expected only doc-good to survive, got %+v", resp)
	}
}

func TestRank_LimitTruncatesAfterCounting(t *testing.T) {
	docs := make([]domdoc.Document, 7)
	for i := range docs {
		docs[i] = domdoc.New("doc", []float32{1, 0}, products("item"), domdoc.UserInfo{})
	}
	source := &mockSource{docs: docs}
	embed := &mockEmbedder{vec: []float32{1, 0}}
	svc := New(source, embed)

	resp, err := svc.Rank(context.Background(), mustRequest(t, "zzz", 3, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalFound != 7 {
		t.Errorf("TotalFound = %d, want 7", resp.TotalFound)
	}
	if resp.Returned != 3 || len(resp.Results) != 3 {
		t.Errorf("Returned = %d, want 3", resp.Returned)
	}
}

func TestRank_SortedDescending(t *testing.T) {
	source := &mockSource{docs: threeDocCorpus()}
	embed := &mockEmbedder{vec: []float32{1, 0}}
	svc := New(source, embed)

	resp, err := svc.Rank(context.Background(), mustRequest(t, "brake", 5, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i-1].Score() < resp.Results[i].Score() {
			t.Errorf("results not sorted descending at %d", i)
		}
	}
}

func TestRank_Deterministic(t *testing.T) {
	doc := domdoc.New("doc-multi", []float32{1, 0},
		products("alpha", "beta", "gamma", "delta"), domdoc.UserInfo{})
	source := &mockSource{docs: []domdoc.Document{doc}}
	embed := &mockEmbedder{vec: []float32{1, 0}}
	svc := New(source, embed)

	req := mustRequest(t, "zzz", 10, 0)
	first, err := svc.Rank(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := svc.Rank(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(again.Results) != len(first.Results) {
			t.Fatalf("result count changed between identical calls")
		}
		for i := range again.Results {
			if again.Results[i].ProductName() != first.Results[i].ProductName() {
				t.Fatalf("tie order changed between identical calls: %q vs %q",
					again.Results[i].ProductName(), first.Results[i].ProductName())
			}
		}
	}
}

func TestRank_ScoreBounds(t *testing.T) {
	source := &mockSource{docs: threeDocCorpus()}
	embed := &mockEmbedder{vec: []float32{1, 0}}
	svc := New(source, embed)

	resp, err := svc.Rank(context.Background(), mustRequest(t, "brake", 5, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range resp.Results {
		if r.Score() > 1.15 {
			t.Errorf("score %v exceeds 1.15", r.Score())
		}
	}
}

func TestRank_PerfectMatchWithBoostExceedsOne(t *testing.T) {
	doc := domdoc.New("doc-a", []float32{1, 0}, products("brake cable"), domdoc.UserInfo{})
	source := &mockSource{docs: []domdoc.Document{doc}}
	embed := &mockEmbedder{vec: []float32{1, 0}}
	svc := New(source, embed)

	resp, err := svc.Rank(context.Background(), mustRequest(t, "brake", 5, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(resp.Results[0].Score()-1.15) > 1e-4 {
		t.Errorf("boosted perfect match = %v, want 1.15 (unclamped)", resp.Results[0].Score())
	}
}

func TestRank_ScoreRoundedTo4Places(t *testing.T) {
	// cos = 1/sqrt(2) = 0.70710678... -> 0.7071
	doc := domdoc.New("doc-a", []float32{1, 1}, products("thing"), domdoc.UserInfo{})
	source := &mockSource{docs: []domdoc.Document{doc}}
	embed := &mockEmbedder{vec: []float32{1, 0}}
	svc := New(source, embed)

	resp, err := svc.Rank(context.Background(), mustRequest(t, "zzz", 5, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resp.Results[0].Score(); got != 0.7071 {
		t.Errorf("score = %v, want 0.7071", got)
	}
}

func TestRank_UnrankableDocumentsContributeNothing(t *testing.T) {
	noEmbedding := domdoc.Reconstruct("d1", nil, products("x"), domdoc.UserInfo{})
	emptyEmbedding := domdoc.Reconstruct("d2", []float32{}, products("x"), domdoc.UserInfo{})
	noProducts := domdoc.Reconstruct("d3", []float32{1, 0}, nil, domdoc.UserInfo{})
	source := &mockSource{docs: []domdoc.Document{noEmbedding, emptyEmbedding, noProducts}}
	embed := &mockEmbedder{vec: []float32{1, 0}}
	svc := New(source, embed)

	resp, err := svc.Rank(context.Background(), mustRequest(t, "x", 5, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalFound != 0 {
		t.Errorf("TotalFound = %d, want 0", resp.TotalFound)
	}
}
