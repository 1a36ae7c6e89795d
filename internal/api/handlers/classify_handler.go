package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/productlens/backend/internal/classify"
	"github.com/productlens/backend/internal/product"
	"github.com/productlens/backend/pkg/logger"
)

type ClassifyHandler struct {
	service *product.Service
}

func NewClassifyHandler(service *product.Service) *ClassifyHandler {
	return &ClassifyHandler{
		service: service,
	}
}

// HandleClassify classifies caller-supplied product data without fetching
// a page. Breadcrumbs accept either a JSON array or a single delimited
// string.
func (h *ClassifyHandler) HandleClassify(c *fiber.Ctx) error {
	var req classify.ProductData

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Title == "" && req.Description == "" && len(req.Breadcrumbs) == 0 && req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "At least one of title, description, breadcrumbs, or url is required",
		})
	}

	result := h.service.Classify(c.Context(), req)
	return c.JSON(result)
}
