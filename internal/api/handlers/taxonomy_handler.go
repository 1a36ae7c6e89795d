package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/productlens/backend/internal/metrics"
	"github.com/productlens/backend/internal/storage/sqlite"
	"github.com/productlens/backend/internal/taxonomy"
	"github.com/productlens/backend/pkg/logger"
)

type TaxonomyHandler struct {
	cache  *taxonomy.Cache
	client *sqlite.Client
}

func NewTaxonomyHandler(cache *taxonomy.Cache, client *sqlite.Client) *TaxonomyHandler {
	return &TaxonomyHandler{
		cache:  cache,
		client: client,
	}
}

// HandleRefresh rebuilds the taxonomy snapshot from storage. With
// force=false a warm cache is left untouched.
func (h *TaxonomyHandler) HandleRefresh(c *fiber.Ctx) error {
	force := c.QueryBool("force", true)

	if err := h.cache.Refresh(c.Context(), force); err != nil {
		logger.Error("Failed to refresh taxonomy", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to refresh taxonomy",
		})
	}

	metrics.TaxonomyRefreshes.Inc()
	return c.JSON(fiber.Map{
		"status": "refreshed",
		"forced": force,
	})
}

func (h *TaxonomyHandler) HandleStats(c *fiber.Ctx) error {
	categories, tags, err := h.client.CountTaxonomy(c.Context())
	if err != nil {
		logger.Error("Failed to count taxonomy", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load taxonomy stats",
		})
	}

	return c.JSON(fiber.Map{
		"categories": categories,
		"tags":       tags,
		"loaded":     h.cache.Loaded(),
	})
}
