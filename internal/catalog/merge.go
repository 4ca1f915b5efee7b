// Package catalog builds the unified product list a console renders:
// installed modules and store catalog entries merged into one collection
// of products, plus fuzzy text filtering over it.
package catalog

import (
	"sort"
	"strings"

	"github.com/connhub/console/internal/shared/types"
)

// Merge combines installed modules and store catalog entries into one
// product map keyed by module id + product variant.
//
// Installed modules fold in first, each variant producing a product with
// no store info. Store entries fold in second: a variant already present
// gets its StoreInfo attached; an unknown one becomes a store-only
// product. Records with an empty module id are skipped and counted so
// the caller can degrade with a warning instead of failing.
func Merge(installed []types.InstalledModuleInfo, entries []types.StoreCatalogEntry) (map[types.ProductKey]*types.Product, int) {
	products := make(map[types.ProductKey]*types.Product)
	skipped := 0

	for i := range installed {
		mod := &installed[i]
		if mod.ID == "" {
			skipped++
			continue
		}
		for _, variant := range mod.Products {
			key := types.ProductKey{ModuleID: mod.ID, Product: variant}
			if _, exists := products[key]; exists {
				continue
			}
			products[key] = &types.Product{
				ID:            mod.ID,
				Product:       variant,
				Name:          mod.Name,
				Manufacturer:  mod.Manufacturer,
				Shortname:     mod.Shortname,
				InstalledInfo: mod,
			}
		}
	}

	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			skipped++
			continue
		}
		for _, variant := range entry.Products {
			key := types.ProductKey{ModuleID: entry.ID, Product: variant}
			if existing, exists := products[key]; exists {
				existing.StoreInfo = entry
				continue
			}
			products[key] = &types.Product{
				ID:           entry.ID,
				Product:      variant,
				Name:         entry.Name,
				Manufacturer: entry.Manufacturer,
				Shortname:    entry.Shortname,
				Keywords:     strings.Join(entry.Keywords, " "),
				StoreInfo:    entry,
			}
		}
	}

	return products, skipped
}

// Sorted flattens a merged product map into a slice ordered by module id
// then product name. Merge output is a map; every consumer that needs a
// stable order goes through here.
func Sorted(products map[types.ProductKey]*types.Product) []*types.Product {
	out := make([]*types.Product, 0, len(products))
	for _, p := range products {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Product < out[j].Product
	})
	return out
}
