package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/productlens/backend/internal/extraction/resolver"
	"github.com/productlens/backend/internal/product"
	"github.com/productlens/backend/pkg/logger"
)

type WebSocketHandler struct {
	service *product.Service
}

func NewWebSocketHandler(service *product.Service) *WebSocketHandler {
	return &WebSocketHandler{
		service: service,
	}
}

// HandleConnection serves one extraction session per message: the client
// sends {"type":"extract","url":...} and receives a frame per resolved
// field, then the classification, then a completion frame.
func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "extract" || msg.URL == "" {
			h.sendError(c, "Expected an extract message with a url")
			continue
		}

		logger.Info("Processing WebSocket extraction", zap.String("url", msg.URL))

		if err := h.streamExtraction(c, msg.URL); err != nil {
			logger.Error("Failed to stream extraction", zap.String("url", msg.URL), zap.Error(err))
			h.sendError(c, "Failed to extract product")
		}
	}
}

func (h *WebSocketHandler) streamExtraction(c *websocket.Conn, url string) error {
	ctx := context.Background()

	if err := c.WriteJSON(map[string]interface{}{
		"type": "status",
		"url":  url,
	}); err != nil {
		return err
	}

	var writeErr error
	result, err := h.service.ExtractStream(ctx, url, func(res resolver.FieldResolution) {
		if writeErr != nil {
			return
		}
		writeErr = c.WriteJSON(map[string]interface{}{
			"type":       "field",
			"resolution": res,
		})
	})
	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}

	if err := c.WriteJSON(map[string]interface{}{
		"type":           "classification",
		"classification": result.Classification,
	}); err != nil {
		return err
	}

	return c.WriteJSON(map[string]interface{}{
		"type":          "complete",
		"extraction_id": result.ID,
		"latency_ms":    result.LatencyMS,
		"cached":        result.Cached,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
