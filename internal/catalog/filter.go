package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/connhub/console/internal/shared/types"
)

// productSource adapts a product slice for fuzzy matching. The searchable
// text is a fixed ordered field set: product, name, manufacturer, keywords.
type productSource []*types.Product

func (s productSource) String(i int) string {
	p := s[i]
	return strings.Join([]string{p.Product, p.Name, p.Manufacturer, p.Keywords}, " ")
}

func (s productSource) Len() int { return len(s) }

// Filter returns the products matching the query, best matches first.
//
// An empty (or whitespace) query is the identity: the input slice comes
// back unchanged, unranked. Otherwise matching is fuzzy and deliberately
// recall-first: every hit the matcher returns is accepted, however weak
// its score.
func Filter(query string, products []*types.Product) []*types.Product {
	if strings.TrimSpace(query) == "" {
		return products
	}

	matches := fuzzy.FindFrom(query, productSource(products))

	out := make([]*types.Product, 0, len(matches))
	for _, m := range matches {
		out = append(out, products[m.Index])
	}
	return out
}
