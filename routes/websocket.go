package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/sehee-xx/DO-DREAM-sub000/handlers"
)

func SetupWebSocketRoutes(app *fiber.App, wsHandler *handlers.WSHandler) {
	ws := app.Group("/ws")

	ws.Use("/files/:file_id/events", wsHandler.WebSocketUpgrade)
	ws.Get("/files/:file_id/events", websocket.New(wsHandler.HandleFileEvents))
}
