// Package document stores and hydrates item documents in RedisJSON.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pickstack/itemsearch/internal/db"
	domdoc "github.com/pickstack/itemsearch/internal/domain/document"
)

// store is the consumer interface for documents (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/search.DocumentSource and usecase/health.DocumentCounter.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a document repository. keyPrefix namespaces all document keys.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// Put stores a document (used by the seeder; ranking never writes).
func (r *Repo) Put(ctx context.Context, doc *domdoc.Document) error {
	data, err := json.Marshal(buildJSONDoc(doc))
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	key := r.docKey(doc.ID())
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Snapshot returns all stored documents in sorted key order, so repeated
// ranking passes over a fixed corpus see the same sequence. Documents
// whose JSON cannot be fetched or parsed hydrate as unrankable rather
// than failing the snapshot.
func (r *Repo) Snapshot(ctx context.Context) ([]domdoc.Document, error) {
	keys, err := r.store.Scan(ctx, r.keyPrefix+"doc:*")
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	sort.Strings(keys)

	docs := make([]domdoc.Document, 0, len(keys))
	for _, key := range keys {
		raw, err := r.store.JSONGet(ctx, key, "$")
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				// Deleted between SCAN and JSON.GET.
				continue
			}
			return nil, fmt.Errorf("json.get %s: %w", key, err)
		}
		docs = append(docs, parseDoc(r.extractID(key), unwrapJSONPath(raw)))
	}
	return docs, nil
}

// DeleteAll removes every stored document. Used by the seeder's reset.
func (r *Repo) DeleteAll(ctx context.Context) (int, error) {
	keys, err := r.store.Scan(ctx, r.keyPrefix+"doc:*")
	if err != nil {
		return 0, fmt.Errorf("scan documents: %w", err)
	}
	for _, key := range keys {
		if err := r.store.Del(ctx, key); err != nil {
			return 0, fmt.Errorf("del %s: %w", key, err)
		}
	}
	return len(keys), nil
}

// Count returns the number of stored documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	keys, err := r.store.Scan(ctx, r.keyPrefix+"doc:*")
	if err != nil {
		return 0, fmt.Errorf("scan documents: %w", err)
	}
	return len(keys), nil
}

// CountWithEmbedding returns the number of documents carrying a non-empty embedding.
func (r *Repo) CountWithEmbedding(ctx context.Context) (int, error) {
	docs, err := r.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range docs {
		if len(docs[i].Embedding()) > 0 {
			n++
		}
	}
	return n, nil
}

func (r *Repo) docKey(id string) string {
	return r.keyPrefix + "doc:" + id
}

func (r *Repo) extractID(key string) string {
	return strings.TrimPrefix(key, r.keyPrefix+"doc:")
}

// unwrapJSONPath strips the one-element array JSON.GET returns for the
// "$" path, leaving the document object itself.
func unwrapJSONPath(raw []byte) []byte {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) == 1 {
		return arr[0]
	}
	return raw
}
