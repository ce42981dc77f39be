// Package candidate holds the scored (document, product) pair produced by
// a ranking pass.
package candidate

import (
	"github.com/pickstack/itemsearch/internal/domain/document"
	"github.com/pickstack/itemsearch/internal/domain/document/product"
)

// Candidate is one scored (document, product) pair. Created per pass,
// discarded after the response is formatted.
type Candidate struct {
	productName  string
	details      product.Record
	userInfo     document.UserInfo
	score        float64
	keywordMatch bool
	documentID   string
}

// New creates a Candidate. score is expected to be pre-rounded by the engine.
func New(
	productName string, details product.Record, userInfo document.UserInfo,
	score float64, keywordMatch bool, documentID string,
) Candidate {
	return Candidate{
		productName:  productName,
		details:      details,
		userInfo:     userInfo,
		score:        score,
		keywordMatch: keywordMatch,
		documentID:   documentID,
	}
}

// ProductName returns the product name.
func (c *Candidate) ProductName() string { return c.productName }

// Details returns the product fields.
func (c *Candidate) Details() product.Record { return c.details }

// UserInfo returns the submitter context of the owning document.
func (c *Candidate) UserInfo() document.UserInfo { return c.userInfo }

// Score returns the final score (similarity plus keyword boost).
func (c *Candidate) Score() float64 { return c.score }

// KeywordMatch reports whether the keyword boost applied.
func (c *Candidate) KeywordMatch() bool { return c.keywordMatch }

// DocumentID returns the owning document id.
func (c *Candidate) DocumentID() string { return c.documentID }
