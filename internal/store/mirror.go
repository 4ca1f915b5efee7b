package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/connhub/console/internal/logging"
	"github.com/connhub/console/internal/monitoring"
	"github.com/connhub/console/internal/shared/types"
)

// CatalogSource is the remote API surface the mirror depends on.
type CatalogSource interface {
	Catalog(ctx context.Context) (*types.Catalog, error)
	ModuleInfo(ctx context.Context, moduleID string) (*types.ModuleStoreInfo, error)
}

// Mirror holds the cached store catalog and fans out refresh notifications.
type Mirror struct {
	source  CatalogSource
	log     *logging.Logger
	metrics *monitoring.Metrics

	mu          sync.RWMutex
	entries     []types.StoreCatalogEntry
	lastUpdated int64

	listenerMu sync.Mutex
	listeners  map[int]func()
	nextID     int
}

// NewMirror creates a catalog mirror over the given source.
func NewMirror(source CatalogSource, log *logging.Logger) *Mirror {
	return &Mirror{
		source:    source,
		log:       log,
		listeners: make(map[int]func()),
	}
}

// WithMetrics attaches a metrics collector to the mirror.
func (m *Mirror) WithMetrics(metrics *monitoring.Metrics) *Mirror {
	m.metrics = metrics
	return m
}

// Refresh refetches the catalog and notifies listeners on success.
// On failure the previous snapshot is kept.
func (m *Mirror) Refresh(ctx context.Context) error {
	if m.metrics != nil {
		m.metrics.RefreshesTotal.Inc()
	}

	catalog, err := m.source.Catalog(ctx)
	if err != nil {
		m.log.Warn("Store catalog refresh failed", zap.Error(err))
		if m.metrics != nil {
			m.metrics.RefreshFailures.Inc()
		}
		return err
	}

	m.mu.Lock()
	m.entries = catalog.Entries
	m.lastUpdated = catalog.LastUpdated
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.CatalogEntries.Set(float64(len(catalog.Entries)))
	}

	m.log.Info("Store catalog refreshed",
		zap.Int("entries", len(catalog.Entries)),
		zap.Int64("last_updated", catalog.LastUpdated),
	)

	m.notify()
	return nil
}

// Run refreshes the catalog on the configured interval until ctx is done.
func (m *Mirror) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Errors already logged; the stale snapshot stays serveable.
			_ = m.Refresh(ctx)
		}
	}
}

// Entries returns the cached catalog entries.
func (m *Mirror) Entries() []types.StoreCatalogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.StoreCatalogEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// LastUpdated returns the catalog timestamp (unix ms), zero before the
// first successful refresh.
func (m *Mirror) LastUpdated() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUpdated
}

// Count returns the number of cached entries.
func (m *Mirror) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// ModuleInfo fetches a fresh per-module snapshot from the source.
func (m *Mirror) ModuleInfo(ctx context.Context, moduleID string) (*types.ModuleStoreInfo, error) {
	return m.source.ModuleInfo(ctx, moduleID)
}

// Subscribe registers a listener invoked after each successful refresh.
// The returned function cancels the registration.
func (m *Mirror) Subscribe(fn func()) func() {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.listenerMu.Lock()
		defer m.listenerMu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Mirror) notify() {
	m.listenerMu.Lock()
	fns := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.listenerMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
