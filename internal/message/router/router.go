package router

import (
	"context"

	"direct_message_service/internal/message/app"
	"direct_message_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes registers the live connection endpoint and the REST history
// endpoints. Everything behind the JWT middleware trusts the session
// identity.
func RegisterRoutes(r *fiber.App, wsHandler *app.MessageWebsocketHandler, historyHandler *app.HistoryHandler) {
	r.Get("/", historyHandler.Health)

	r.Use(middlewares.JWTMiddleware())

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHandler.HandleConnection(context.Background(), c)
	}))

	r.Get("/messages/:userID", historyHandler.GetMessages)
	r.Put("/messages/:userID/read", historyHandler.MarkRead)
	r.Get("/conversations/history", historyHandler.GetConversations)
}
