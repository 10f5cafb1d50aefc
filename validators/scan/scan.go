package scanValidator

import (
	"strings"

	"sefy/middleware"

	"github.com/gofiber/fiber/v2"
)

func BridgeCallback() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callback := strings.TrimSpace(c.Params("callback"))
		if callback == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Callback name is required!", nil)
		}
		if !strings.HasPrefix(callback, "on") || !strings.HasSuffix(callback, "Result") {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid callback name!", nil)
		}
		if len(c.Body()) == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Callback payload is required!", nil)
		}

		c.Locals("callbackName", callback)
		return c.Next()
	}
}
