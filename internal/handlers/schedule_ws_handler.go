package handlers

import (
	"errors"
	"strconv"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/middleware"
	schedulews "github.com/liangzixuan/ai-assisted-coding-kahunas/internal/websocket"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/pkg/utils"
)

// ScheduleSocketHandler streams schedule events to coaches and clients.
type ScheduleSocketHandler struct {
	hub       *schedulews.Hub
	jwtSecret string
}

func NewScheduleSocketHandler(hub *schedulews.Hub, jwtSecret string) *ScheduleSocketHandler {
	return &ScheduleSocketHandler{hub: hub, jwtSecret: jwtSecret}
}

func (h *ScheduleSocketHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}
	userID, ok := middleware.ClaimsIdentity(claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	middleware.SetIdentity(c, userID, claims.Role)
	return c.Next()
}

func (h *ScheduleSocketHandler) HandleWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals(middleware.LocalUserID).(int64)
	h.hub.Serve(conn, strconv.FormatInt(userID, 10))
}

// Browsers cannot set headers on a websocket handshake, so the token may
// also arrive as ?token=.
func (h *ScheduleSocketHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		tokenString, _ = middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}
