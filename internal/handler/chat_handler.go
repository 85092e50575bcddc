package handler

import (
	"ai-support-agent-be/internal/pkg/logger"
	internalWS "ai-support-agent-be/internal/websocket"
	"ai-support-agent-be/pkg/knowledge"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type ChatHandler struct {
	router   *internalWS.Router
	store    *knowledge.Store
	registry *internalWS.Registry
	logger   logger.ILogger
}

func NewChatHandler(router *internalWS.Router, store *knowledge.Store, registry *internalWS.Registry, log logger.ILogger) *ChatHandler {
	return &ChatHandler{
		router:   router,
		store:    store,
		registry: registry,
		logger:   log,
	}
}

// ServeWs upgrades the request and hands the connection to the router.
func (h *ChatHandler) ServeWs(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ChatHandler", "Starting WebSocket session", nil)
			h.router.Serve(conn)
			h.logger.Info("ChatHandler", "WebSocket session ended", nil)
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// GetStats reports knowledge base statistics and the live connection count.
func (h *ChatHandler) GetStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"knowledge":          h.store.Statistics(),
		"active_connections": h.registry.Count(),
	})
}

// RegisterRoutes registers the chat routes.
func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/stats", h.GetStats)

	// WebSocket
	router.Get("/ws", h.ServeWs)
}
