package cart

import (
	"strings"

	"golang.org/x/text/cases"
)

// MatchName reports whether name contains term, ignoring case. An empty term
// matches everything.
func MatchName(name, term string) bool {
	if term == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(name), fold.String(term))
}

// Filter keeps the products whose name matches term.
func Filter(products []Product, term string) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if MatchName(p.Name, term) {
			out = append(out, p)
		}
	}
	return out
}
