// Package storeinfo manages per-connection store-info subscriptions.
//
// Each console connection may watch at most one module at a time. The
// hub fetches a snapshot when a subscription starts and re-pushes fresh
// snapshots after catalog refreshes. Snapshot fetches run async; a
// generation counter per connection guards against late responses
// overwriting a newer subscription (switch module A -> B before A's
// response lands, and A's response is dropped).
package storeinfo

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/connhub/console/internal/logging"
	"github.com/connhub/console/internal/shared/id"
	"github.com/connhub/console/internal/shared/types"
)

// InfoSource fetches per-module store-info snapshots.
type InfoSource interface {
	ModuleInfo(ctx context.Context, moduleID string) (*types.ModuleStoreInfo, error)
}

// DeliverFunc pushes a snapshot to one connection. It may be called from
// hub goroutines; implementations must be safe for concurrent use.
type DeliverFunc func(info *types.ModuleStoreInfo)

type subscriber struct {
	moduleID   string // empty while idle
	generation uint64
	deliver    DeliverFunc

	// deliverMu serializes the generation re-check with the delivery
	// itself. Without it a snapshot that passed the check could still
	// land after a newer subscription's snapshot.
	deliverMu sync.Mutex
}

// Hub tracks the active subscription of every registered connection.
type Hub struct {
	source InfoSource
	log    *logging.Logger

	mu    sync.Mutex
	conns map[id.ConnID]*subscriber
}

// NewHub creates a subscription hub over the given snapshot source.
func NewHub(source InfoSource, log *logging.Logger) *Hub {
	return &Hub{
		source: source,
		log:    log,
		conns:  make(map[id.ConnID]*subscriber),
	}
}

// Register adds a connection. Until Subscribe is called the connection
// is idle and receives nothing.
func (h *Hub) Register(connID id.ConnID, deliver DeliverFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[connID] = &subscriber{deliver: deliver}
}

// Unregister tears down a connection. Any in-flight snapshot for it is
// discarded when it lands.
func (h *Hub) Unregister(connID id.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connID)
}

// Subscribe switches the connection to moduleID. A previous subscription
// is reset first; its in-flight responses become stale. The current
// snapshot is fetched asynchronously and delivered unless superseded.
func (h *Hub) Subscribe(ctx context.Context, connID id.ConnID, moduleID string) {
	h.mu.Lock()
	sub, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	sub.moduleID = moduleID
	sub.generation++
	gen := sub.generation
	h.mu.Unlock()

	go h.fetch(ctx, connID, gen, moduleID)
}

// Unsubscribe resets the connection to idle. Best-effort: there is
// nothing to tell the remote side, dropping local state is enough.
func (h *Hub) Unsubscribe(connID id.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.conns[connID]
	if !ok {
		return
	}
	sub.moduleID = ""
	sub.generation++
}

// NotifyAll re-fetches and pushes snapshots for every active
// subscription. Called after a catalog refresh.
func (h *Hub) NotifyAll(ctx context.Context) {
	h.mu.Lock()
	type target struct {
		connID   id.ConnID
		gen      uint64
		moduleID string
	}
	var targets []target
	for connID, sub := range h.conns {
		if sub.moduleID != "" {
			targets = append(targets, target{connID, sub.generation, sub.moduleID})
		}
	}
	h.mu.Unlock()

	for _, tg := range targets {
		go h.fetch(ctx, tg.connID, tg.gen, tg.moduleID)
	}
}

// ActiveSubscriptions returns the number of non-idle connections.
func (h *Hub) ActiveSubscriptions() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, sub := range h.conns {
		if sub.moduleID != "" {
			n++
		}
	}
	return n
}

// fetch retrieves a snapshot and delivers it if the subscription is
// still the one that requested it.
func (h *Hub) fetch(ctx context.Context, connID id.ConnID, gen uint64, moduleID string) {
	info, err := h.source.ModuleInfo(ctx, moduleID)
	if err != nil {
		// Transient: the view simply shows no data for now.
		h.log.Warn("Store info fetch failed",
			zap.String("conn_id", connID.String()),
			zap.String("module_id", moduleID),
			zap.Error(err),
		)
		return
	}

	h.mu.Lock()
	sub, ok := h.conns[connID]
	h.mu.Unlock()
	if !ok {
		return
	}

	// Holding deliverMu across re-check and delivery means a snapshot
	// for an older generation can never land after a newer one: by the
	// time it gets the lock, the re-check sees the bumped generation.
	sub.deliverMu.Lock()
	defer sub.deliverMu.Unlock()

	h.mu.Lock()
	cur, ok := h.conns[connID]
	if !ok || cur != sub || sub.generation != gen || sub.moduleID != moduleID {
		// Stale response: connection gone, resubscribed, or switched module.
		h.mu.Unlock()
		return
	}
	deliver := sub.deliver
	h.mu.Unlock()

	deliver(info)
}
