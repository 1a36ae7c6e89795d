// Package validation screens request bodies before they reach the
// handlers. The extract endpoint triggers an outbound fetch, so its URL is
// checked against private address space to keep the service from being
// used as an internal-network probe.
package validation

import (
	"net"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxURLLength   int
	MaxFieldLength int
	Logger         *zap.Logger
}

func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxURLLength == 0 {
		cfg.MaxURLLength = 2048
	}
	if cfg.MaxFieldLength == 0 {
		cfg.MaxFieldLength = 50000
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		if contentType := c.Get("Content-Type"); contentType != "" && !strings.Contains(contentType, "application/json") {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Unsupported content type",
			})
		}

		path := c.Path()

		if strings.HasSuffix(path, "/extract") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			rawURL, ok := req["url"].(string)
			if !ok || rawURL == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "URL is required and must be a string",
				})
			}
			if len(rawURL) > cfg.MaxURLLength {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "URL exceeds maximum length",
				})
			}
			if reason, ok := checkProductURL(rawURL); !ok {
				cfg.Logger.Warn("Rejected extraction URL",
					zap.String("ip", c.IP()),
					zap.String("url", rawURL),
					zap.String("reason", reason),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid product URL",
				})
			}
		}

		if strings.HasSuffix(path, "/classify") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			for _, field := range []string{"title", "description", "specs"} {
				if value, ok := req[field].(string); ok && len(value) > cfg.MaxFieldLength {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Field " + field + " exceeds maximum length",
					})
				}
			}
		}

		return c.Next()
	}
}

// checkProductURL accepts public http(s) URLs only. Hostnames that are
// literal private, loopback, or link-local addresses are refused.
func checkProductURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unparseable", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "scheme", false
	}
	if u.Hostname() == "" {
		return "no host", false
	}
	if strings.EqualFold(u.Hostname(), "localhost") {
		return "loopback", false
	}

	if ip := net.ParseIP(u.Hostname()); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return "private address", false
		}
	}

	return "", true
}
