// Package match implements the lexical keyword check that backs the
// fixed score boost.
package match

import (
	"strconv"
	"strings"

	"github.com/pickstack/itemsearch/internal/domain/document/product"
)

// Matches reports whether the query text occurs, case-insensitively, as a
// substring of the product name, any set string field, or the decimal
// rendering of any set numeric field. Unset fields are skipped. Pure
// function; it never fails.
func Matches(query, productName string, rec *product.Record) bool {
	q := strings.ToLower(query)
	if q == "" {
		return false
	}

	if strings.Contains(strings.ToLower(productName), q) {
		return true
	}

	for _, text := range rec.Texts() {
		if strings.Contains(strings.ToLower(text), q) {
			return true
		}
	}

	for _, n := range rec.Numbers() {
		if strings.Contains(strconv.FormatFloat(n, 'f', -1, 64), q) {
			return true
		}
	}

	return false
}
