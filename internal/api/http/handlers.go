// Package http contains the console REST handlers.
package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/connhub/console/internal/api/middleware"
	"github.com/connhub/console/internal/catalog"
	"github.com/connhub/console/internal/installed"
	"github.com/connhub/console/internal/logging"
	"github.com/connhub/console/internal/shared/types"
	"github.com/connhub/console/internal/store"
	"github.com/connhub/console/internal/viewstate"
)

// connectionsView is the view key the product list reads its visibility
// flags from when the request does not override them.
const connectionsView = "connections"

// Handlers holds the REST handler dependencies.
type Handlers struct {
	registry  *installed.Registry
	mirror    *store.Mirror
	viewState *viewstate.Store
	log       *logging.Logger
	startTime time.Time
}

// NewHandlers creates the REST handlers.
func NewHandlers(registry *installed.Registry, mirror *store.Mirror, viewState *viewstate.Store, log *logging.Logger) *Handlers {
	return &Handlers{
		registry:  registry,
		mirror:    mirror,
		viewState: viewState,
		log:       log,
		startTime: time.Now(),
	}
}

// Health handles health check requests.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"uptime_seconds":    int64(time.Since(h.startTime).Seconds()),
		"installed_modules": h.registry.Count(),
		"catalog_entries":   h.mirror.Count(),
		"timestamp":         time.Now().Unix(),
	})
}

// Products handles the merged, filtered product list.
//
// Visibility comes from show_installed / show_available query parameters;
// when a parameter is absent the persisted view flag applies. The text
// filter runs after visibility, so hidden products never match.
func (h *Handlers) Products(c *gin.Context) {
	showInstalled := h.boolParam(c, "show_installed", connectionsView)
	showAvailable := h.boolParam(c, "show_available", connectionsView)

	merged, skipped := catalog.Merge(h.registry.List(), h.mirror.Entries())
	products := catalog.Sorted(merged)

	visible := make([]*types.Product, 0, len(products))
	for _, p := range products {
		if p.Installed() {
			if showInstalled {
				visible = append(visible, p)
			}
		} else if showAvailable {
			visible = append(visible, p)
		}
	}

	visible = catalog.Filter(c.Query("query"), visible)

	resp := gin.H{
		"products":  visible,
		"total":     len(visible),
		"timestamp": time.Now().Unix(),
	}
	if skipped > 0 {
		h.log.Warn("Malformed catalog records skipped during merge",
			zap.Int("skipped", skipped),
			zap.String("request_id", middleware.GetRequestID(c)),
		)
		resp["warning"] = "some catalog records were malformed and skipped"
		resp["skipped"] = skipped
	}
	c.JSON(http.StatusOK, resp)
}

// ModuleProducts handles the product list of a single module.
func (h *Handlers) ModuleProducts(c *gin.Context) {
	moduleID := c.Param("moduleID")

	merged, _ := catalog.Merge(h.registry.List(), h.mirror.Entries())

	matched := make([]*types.Product, 0, 2)
	for _, p := range catalog.Sorted(merged) {
		if p.ID == moduleID {
			matched = append(matched, p)
		}
	}

	if len(matched) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "module not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"module_id": moduleID,
		"products":  matched,
		"timestamp": time.Now().Unix(),
	})
}

// StoreStatus handles catalog mirror status requests.
func (h *Handlers) StoreStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"entries":      h.mirror.Count(),
		"last_updated": h.mirror.LastUpdated(),
		"timestamp":    time.Now().Unix(),
	})
}

// RefreshStore forces a catalog refresh.
func (h *Handlers) RefreshStore(c *gin.Context) {
	if err := h.mirror.Refresh(c.Request.Context()); err != nil {
		h.log.Warn("Forced catalog refresh failed",
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(c)),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "store refresh failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"entries":      h.mirror.Count(),
		"last_updated": h.mirror.LastUpdated(),
		"timestamp":    time.Now().Unix(),
	})
}

// ViewState handles reading all flags of a view.
func (h *Handlers) ViewState(c *gin.Context) {
	viewKey := c.Param("key")

	flags := h.viewState.List(viewKey)
	if len(flags) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown view"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"view":  viewKey,
		"flags": flags,
	})
}

// SetViewFlag handles writing one view flag.
func (h *Handlers) SetViewFlag(c *gin.Context) {
	viewKey := c.Param("key")
	flag := c.Param("flag")

	if !h.viewState.Known(viewKey, flag) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown flag"})
		return
	}

	var req types.SetFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value required"})
		return
	}

	if err := h.viewState.Set(viewKey, flag, *req.Value); err != nil {
		h.log.Error("View flag persist failed",
			zap.String("view", viewKey),
			zap.String("flag", flag),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist flag"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"view":  viewKey,
		"flag":  flag,
		"value": *req.Value,
	})
}

// boolParam reads a bool query parameter, falling back to the persisted
// view flag when absent or unparseable.
func (h *Handlers) boolParam(c *gin.Context, name, viewKey string) bool {
	raw, ok := c.GetQuery(name)
	if !ok {
		return h.viewState.Get(viewKey, name)
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return h.viewState.Get(viewKey, name)
	}
	return v
}
