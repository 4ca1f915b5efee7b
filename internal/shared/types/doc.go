// Package types provides shared data structures for the console service.
//
// This package defines core types used across all components, ensuring
// type safety and consistent data structures.
//
// Core Types:
//   - InstalledModuleInfo: Locally installed module metadata
//   - StoreCatalogEntry: Module as published in the remote store
//   - Product: Merged module/product record served to consoles
//   - ModuleStoreInfo: Per-module snapshot pushed over subscriptions
//
// Request Types:
//   - WSMessage: WebSocket communication
//   - SetFlagRequest: Visibility flag writes
//
// Example Usage:
//
//	p := &types.Product{
//	    ID:            "eos",
//	    Product:       "Eos",
//	    Name:          "ETC Eos Family",
//	    InstalledInfo: &info,
//	}
package types
