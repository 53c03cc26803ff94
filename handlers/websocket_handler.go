package handlers

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sehee-xx/DO-DREAM-sub000/pkg/logging"
	"github.com/sehee-xx/DO-DREAM-sub000/platform/events"
)

type WSHandler struct {
	eventPublisher *events.EventPublisher
}

func NewWSHandler(eventPublisher *events.EventPublisher) *WSHandler {
	return &WSHandler{eventPublisher: eventPublisher}
}

func (h *WSHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.Status(400).JSON(fiber.Map{"error": "Not a websocket request"})
}

// HandleFileEvents streams one file's pipeline status changes to the client
// until the socket closes.
func (h *WSHandler) HandleFileEvents(c *websocket.Conn) {
	fileIDParam := c.Params("file_id")
	fileID, err := strconv.ParseUint(fileIDParam, 10, 32)
	if err != nil {
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"error":"Invalid file id"}`))
		return
	}

	logging.Logger.Info("WebSocket connected", "fileID", fileID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventChan, err := h.eventPublisher.SubscribeOcrEvents(ctx)
	if err != nil {
		logging.Logger.Error("Failed to subscribe to events", "error", err)
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"error":"Failed to subscribe"}`))
		return
	}

	if err := c.WriteJSON(fiber.Map{
		"type":    "connected",
		"message": "WebSocket connected successfully",
		"file_id": fileID,
	}); err != nil {
		return
	}

	for {
		select {
		case event := <-eventChan:
			if event == nil {
				return
			}
			if event.FileID != uint(fileID) {
				continue
			}
			data, _ := json.Marshal(event)
			if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Logger.Error("Failed to send WebSocket message", "error", err)
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
