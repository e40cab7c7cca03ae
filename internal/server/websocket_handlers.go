package server

import (
	"errors"
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler handles GET /api/ws. Each connection receives realtime social
// notifications for the authenticated user.
// @Summary Realtime notifications
// @Tags realtime
// @Param token query string true "Access token"
// @Success 101
// @Failure 401 {object} models.Envelope
// @Failure 426 {object} models.Envelope
// @Router /ws [get]
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(middleware.LocalUserID).(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			code := websocket.CloseTryAgainLater
			if errors.Is(err, notifications.ErrHubClosed) {
				code = websocket.CloseGoingAway
			}
			middleware.Logger.Warn("websocket rejected", slog.Any("user_id", userID), slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, err.Error()))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.Status(fiber.StatusUpgradeRequired).JSON(models.Envelope{
				Status:  fiber.StatusUpgradeRequired,
				Message: "WebSocket upgrade required.",
				Error:   models.ErrorDetail{Code: "UPGRADE_REQUIRED"},
			})
		}
		return upgrade(c)
	}
}
