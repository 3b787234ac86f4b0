package handler

import (
	"customer-service-be/internal/pkg/logger"
	"customer-service-be/internal/pkg/serverutils"
	internalWS "customer-service-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// AgentConsoleHandler upgrades authenticated human agents to a websocket
// that receives handoff notifications.
type AgentConsoleHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewAgentConsoleHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *AgentConsoleHandler {
	return &AgentConsoleHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

func (h *AgentConsoleHandler) ServeWs(c *fiber.Ctx) error {
	// browsers cannot set headers on a websocket handshake
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token (Query 'token' or Header 'Authorization')"))
	}

	agentID, err := serverutils.ParseAgentToken(tokenStr, h.jwtSecret)
	if err != nil {
		h.logger.Warn("AgentConsole", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("AgentConsole", "Session started", map[string]interface{}{"agent_id": agentID})
		internalWS.ServeWs(h.hub, conn, agentID)
		h.logger.Info("AgentConsole", "Session ended", map[string]interface{}{"agent_id": agentID})
	})(c)
}

func (h *AgentConsoleHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/agent/v1/ws", h.ServeWs)
}
