// Package ws serves the console push stream.
//
// A console opens one WebSocket and subscribes to at most one module's
// store info at a time. Snapshots arrive as store_info messages: once
// after subscribing, and again whenever the store catalog refreshes.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/connhub/console/internal/logging"
	"github.com/connhub/console/internal/monitoring"
	"github.com/connhub/console/internal/shared/id"
	"github.com/connhub/console/internal/shared/types"
	"github.com/connhub/console/internal/storeinfo"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Consoles connect from arbitrary origins
	},
}

// Handler manages WebSocket connections.
type Handler struct {
	hub     *storeinfo.Hub
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *storeinfo.Hub, log *logging.Logger) *Handler {
	return &Handler{
		hub: hub,
		log: log,
	}
}

// WithMetrics attaches a metrics collector to the handler.
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// HandleConnection handles WebSocket upgrade and messages.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := id.NewConnID()
	reqCtx := c.Request.Context()

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
		defer h.metrics.WSConnections.Dec()
	}

	// gorilla conns allow one concurrent writer; hub pushes arrive from
	// other goroutines.
	var writeMu sync.Mutex
	send := func(data interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(data)
	}

	h.hub.Register(connID, func(info *types.ModuleStoreInfo) {
		if err := send(map[string]interface{}{
			"type":           "store_info",
			"module_id":      info.ModuleID,
			"last_updated":   info.LastUpdated,
			"update_warning": info.UpdateWarning,
			"timestamp":      time.Now().Unix(),
		}); err != nil {
			h.log.Debug("Store info push failed",
				zap.String("conn_id", connID.String()),
				zap.Error(err),
			)
		}
	})
	defer func() {
		h.hub.Unregister(connID)
		h.syncSubscriptionGauge()
	}()

	send(map[string]interface{}{
		"type":    "system",
		"message": "Connected to ConnHub console service",
	})

	for {
		var msg types.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("WebSocket read error",
					zap.String("conn_id", connID.String()),
					zap.Error(err),
				)
			}
			break
		}

		switch msg.Type {
		case "subscribe":
			if msg.ModuleID == "" {
				h.sendError(send, "module_id required")
				continue
			}
			h.hub.Subscribe(reqCtx, connID, msg.ModuleID)
			h.syncSubscriptionGauge()
		case "unsubscribe":
			h.hub.Unsubscribe(connID)
			h.syncSubscriptionGauge()
		case "ping":
			send(map[string]interface{}{"type": "pong"})
		default:
			h.sendError(send, "unknown message type")
		}
	}
}

func (h *Handler) syncSubscriptionGauge() {
	if h.metrics != nil {
		h.metrics.ActiveSubscriptions.Set(float64(h.hub.ActiveSubscriptions()))
	}
}

func (h *Handler) sendError(send func(interface{}) error, msg string) {
	send(map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}
