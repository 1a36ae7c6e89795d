package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/productlens/backend/internal/product"
	"github.com/productlens/backend/pkg/logger"
)

type ExtractHandler struct {
	service *product.Service
}

func NewExtractHandler(service *product.Service) *ExtractHandler {
	return &ExtractHandler{
		service: service,
	}
}

func (h *ExtractHandler) HandleExtract(c *fiber.Ctx) error {
	var req struct {
		URL  string `json:"url"`
		HTML string `json:"html"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "URL is required",
		})
	}

	result, err := h.service.Extract(c.Context(), req.URL, req.HTML)
	if err != nil {
		logger.Error("Failed to extract product", zap.String("url", req.URL), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to extract product",
		})
	}

	return c.JSON(result)
}

func (h *ExtractHandler) GetExtractionHistory(c *fiber.Ctx) error {
	host := c.Query("host")
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	records, err := h.service.History(c.Context(), host, limit)
	if err != nil {
		logger.Error("Failed to load extraction history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load extraction history",
		})
	}

	return c.JSON(fiber.Map{
		"history": records,
		"count":   len(records),
	})
}
