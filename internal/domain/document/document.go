package document

import (
	"github.com/pickstack/itemsearch/internal/domain/document/product"
)

// Document is an ingested item document (immutable value object).
// Instances are created once by the ingestion side and are never mutated
// by ranking code.
type Document struct {
	id        string
	embedding []float32
	products  map[string]product.Record
	userInfo  UserInfo
}

// UserInfo carries submitter context attached at ingestion time.
type UserInfo struct {
	UserID         string
	UserName       string
	PickUpLocation string
}

// New creates a Document. Products may be empty but is never stored nil,
// so a constructed document always passes the products-present check.
func New(id string, embedding []float32, products map[string]product.Record, userInfo UserInfo) Document {
	if products == nil {
		products = map[string]product.Record{}
	}
	return Document{
		id:        id,
		embedding: embedding,
		products:  cloneProducts(products),
		userInfo:  userInfo,
	}
}

// Reconstruct creates a Document from storage without normalization.
// A nil products map marks a document whose structured products were
// missing or malformed; such documents fail Rankable.
func Reconstruct(id string, embedding []float32, products map[string]product.Record, userInfo UserInfo) Document {
	return Document{id: id, embedding: embedding, products: products, userInfo: userInfo}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Embedding returns the embedding vector. Callers must not mutate it.
func (d *Document) Embedding() []float32 { return d.embedding }

// Products returns the product records keyed by product name.
// Nil means the products mapping was absent or not a mapping.
func (d *Document) Products() map[string]product.Record { return d.products }

// UserInfo returns the submitter context.
func (d *Document) UserInfo() UserInfo { return d.userInfo }

// Rankable reports whether the document has the minimum shape required
// for ranking: a non-empty embedding and a products mapping. It never
// fails; a malformed document is simply not rankable.
func (d *Document) Rankable() bool {
	return len(d.embedding) > 0 && d.products != nil
}

func cloneProducts(m map[string]product.Record) map[string]product.Record {
	c := make(map[string]product.Record, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
