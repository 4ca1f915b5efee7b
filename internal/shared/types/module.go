package types

// ModuleVersionInfo describes the versions known for an installed module.
type ModuleVersionInfo struct {
	StableVersion     string   `json:"stable_version"`
	PrereleaseVersion string   `json:"prerelease_version,omitempty"`
	InstalledVersions []string `json:"installed_versions"`
}

// InstalledModuleInfo is the locally present metadata for a module that has
// at least one version installed.
type InstalledModuleInfo struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Manufacturer string            `json:"manufacturer"`
	Shortname    string            `json:"shortname"`
	Products     []string          `json:"products"`
	Versions     ModuleVersionInfo `json:"versions"`
	IsLegacy     bool              `json:"is_legacy"`
	HasHelp      bool              `json:"has_help"`
}

// StoreCatalogEntry is one module as published in the remote store registry.
type StoreCatalogEntry struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Manufacturer      string   `json:"manufacturer"`
	Shortname         string   `json:"shortname"`
	Products          []string `json:"products"`
	Keywords          []string `json:"keywords"`
	StoreURL          string   `json:"store_url,omitempty"`
	GithubURL         string   `json:"github_url,omitempty"`
	HelpURL           string   `json:"help_url,omitempty"`
	DeprecationReason string   `json:"deprecation_reason,omitempty"`
}

// Catalog is the full store registry snapshot.
type Catalog struct {
	Entries     []StoreCatalogEntry `json:"entries"`
	LastUpdated int64               `json:"last_updated"` // unix ms
}

// ProductKey uniquely identifies a product variant across both sources.
type ProductKey struct {
	ModuleID string
	Product  string
}

// Product is one merged module/product record. At least one of InstalledInfo
// and StoreInfo is non-nil.
type Product struct {
	ID            string               `json:"id"`
	Product       string               `json:"product"`
	Name          string               `json:"name"`
	Manufacturer  string               `json:"manufacturer"`
	Shortname     string               `json:"shortname"`
	Keywords      string               `json:"keywords"`
	InstalledInfo *InstalledModuleInfo `json:"installed_info,omitempty"`
	StoreInfo     *StoreCatalogEntry   `json:"store_info,omitempty"`
}

// Key returns the uniqueness key for this product.
func (p *Product) Key() ProductKey {
	return ProductKey{ModuleID: p.ID, Product: p.Product}
}

// Installed reports whether the product has a locally installed module behind it.
func (p *Product) Installed() bool {
	return p.InstalledInfo != nil
}

// ModuleStoreInfo is the per-module snapshot pushed to subscribed consoles.
// It only lives while a subscription is active and is never persisted.
type ModuleStoreInfo struct {
	ModuleID      string `json:"module_id"`
	LastUpdated   int64  `json:"last_updated"` // unix ms
	UpdateWarning string `json:"update_warning,omitempty"`
}
