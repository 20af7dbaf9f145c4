package server

import (
	"errors"

	"foodcrimes/internal/middleware"
	"foodcrimes/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const adminUserLocal = "adminUser"

// GetFeatureFlags returns configured feature flags and their state for the caller.
// @Summary Feature flags
// @Tags admin
// @Produce json
// @Security BasicAuth
// @Router /api/admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(localString(c.Locals(adminUserLocal))),
	})
}

// AdminFeedUpgrade rejects plain HTTP requests to the feed endpoint.
func (s *Server) AdminFeedUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// AdminFeedHandler streams moderation and daily image events to admin dashboards.
func (s *Server) AdminFeedHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		username := localString(conn.Locals(adminUserLocal))

		client, err := s.hub.Register(username, conn)
		if err != nil {
			msg := "admin feed unavailable"
			if errors.Is(err, notifications.ErrFeedFull) {
				msg = err.Error()
			}
			middleware.Logger.Warn("Admin feed: registration failed", "user", username, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+msg+`"}`))
			_ = conn.Close()
			return
		}

		middleware.Logger.Info("Admin feed connected", "user", username)
		go client.WritePump()
		client.ReadPump()
	})
}

func localString(v interface{}) string {
	s, _ := v.(string)
	return s
}
