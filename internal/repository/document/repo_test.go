package document

import (
	"context"
	"errors"
	"testing"

	"github.com/pickstack/itemsearch/internal/db"
	domdoc "github.com/pickstack/itemsearch/internal/domain/document"
	"github.com/pickstack/itemsearch/internal/domain/document/product"
)

// fakeStore is an in-memory store double.
type fakeStore struct {
	data    map[string][]byte
	scanErr error
	getErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) JSONSet(_ context.Context, key, _ string, data []byte) error {
	f.data[key] = data
	return nil
}

func (f *fakeStore) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	raw, ok := f.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	// Real JSON.GET with "$" wraps the document in a one-element array.
	return append(append([]byte("["), raw...), ']'), nil
}

func (f *fakeStore) Del(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeStore) Scan(_ context.Context, _ string) ([]string, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestPutSnapshot_RoundTrip(t *testing.T) {
	store := newFakeStore()
	repo := New(store, "itemsearch:")

	products := map[string]product.Record{
		"brake cable": product.New(strPtr("8am"), strPtr("library"), nil, nil, f64Ptr(2), f64Ptr(12.5)),
	}
	doc := domdoc.New("doc-1", []float32{0.1, 0.2}, products,
		domdoc.UserInfo{UserID: "u1", UserName: "alex", PickUpLocation: "block C"})

	if err := repo.Put(context.Background(), &doc); err != nil {
		t.Fatalf("Put: %v", err)
	}

	docs, err := repo.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Snapshot returned %d docs, want 1", len(docs))
	}

	got := docs[0]
	if got.ID() != "doc-1" {
		t.Errorf("ID = %q", got.ID())
	}
	if len(got.Embedding()) != 2 {
		t.Errorf("Embedding = %v", got.Embedding())
	}
	rec, ok := got.Products()["brake cable"]
	if !ok {
		t.Fatalf("product missing: %v", got.Products())
	}
	if rec.PickUpTime() == nil || *rec.PickUpTime() != "8am" {
		t.Errorf("PickUpTime = %v", rec.PickUpTime())
	}
	if rec.DropOffTime() != nil {
		t.Error("DropOffTime must stay unset")
	}
	if rec.Price() == nil || *rec.Price() != 12.5 {
		t.Errorf("Price = %v", rec.Price())
	}
	if got.UserInfo().UserName != "alex" {
		t.Errorf("UserInfo = %+v", got.UserInfo())
	}
	if !got.Rankable() {
		t.Error("round-tripped document must be rankable")
	}
}

func TestSnapshot_MalformedShapesHydrateUnrankable(t *testing.T) {
	store := newFakeStore()
	repo := New(store, "itemsearch:")

	cases := map[string]string{
		"itemsearch:doc:scalar-embedding":  `{"embedding": 5, "structured_data": {"products": {}}}`,
		"itemsearch:doc:missing-embedding": `{"structured_data": {"products": {"x": {}}}}`,
		"itemsearch:doc:empty-embedding":   `{"embedding": [], "structured_data": {"products": {"x": {}}}}`,
		"itemsearch:doc:products-list":     `{"embedding": [0.1], "structured_data": {"products": ["x"]}}`,
		"itemsearch:doc:no-structured":     `{"embedding": [0.1]}`,
		"itemsearch:doc:not-json":          `not json at all`,
	}
	for key, raw := range cases {
		store.data[key] = []byte(raw)
	}

	docs, err := repo.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(docs) != len(cases) {
		t.Fatalf("Snapshot returned %d docs, want %d", len(docs), len(cases))
	}
	for i := range docs {
		if docs[i].Rankable() {
			t.Errorf("document %q must not be rankable", docs[i].ID())
		}
	}
}

func TestSnapshot_SortedKeyOrder(t *testing.T) {
	store := newFakeStore()
	repo := New(store, "itemsearch:")
	for _, id := range []string{"c", "a", "b"} {
		store.data["itemsearch:doc:"+id] = []byte(`{"embedding": [1], "structured_data": {"products": {}}}`)
	}

	docs, err := repo.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if docs[i].ID() != id {
			t.Errorf("docs[%d].ID() = %q, want %q", i, docs[i].ID(), id)
		}
	}
}

func TestSnapshot_ScanError(t *testing.T) {
	store := newFakeStore()
	store.scanErr = errors.New("connection refused")
	repo := New(store, "itemsearch:")

	if _, err := repo.Snapshot(context.Background()); err == nil {
		t.Fatal("expected error when scan fails")
	}
}

func TestDeleteAll(t *testing.T) {
	store := newFakeStore()
	repo := New(store, "itemsearch:")
	for _, id := range []string{"a", "b", "c"} {
		store.data["itemsearch:doc:"+id] = []byte(`{"embedding": [1], "structured_data": {"products": {}}}`)
	}

	n, err := repo.DeleteAll(context.Background())
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if n != 3 {
		t.Errorf("DeleteAll removed %d, want 3", n)
	}
	if len(store.data) != 0 {
		t.Errorf("%d keys left behind", len(store.data))
	}
}

func TestCounts(t *testing.T) {
	store := newFakeStore()
	repo := New(store, "itemsearch:")
	store.data["itemsearch:doc:a"] = []byte(`{"embedding": [1], "structured_data": {"products": {}}}`)
	store.data["itemsearch:doc:b"] = []byte(`{"structured_data": {"products": {}}}`)

	total, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if total != 2 {
		t.Errorf("Count = %d, want 2", total)
	}

	embedded, err := repo.CountWithEmbedding(context.Background())
	if err != nil {
		t.Fatalf("CountWithEmbedding: %v", err)
	}
	if embedded != 1 {
		t.Errorf("CountWithEmbedding = %d, want 1", embedded)
	}
}
