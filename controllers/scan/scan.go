package scanController

import (
	"errors"

	"sefy/bridge"
	"sefy/middleware"
	"sefy/scan"

	"github.com/gofiber/fiber/v2"
)

var (
	session       *scan.Session
	messageBridge *bridge.MessageBridge
)

// SetupScanSession injects the shared scan session. The message bridge is
// nil unless the active host delivers results over the callback endpoint.
func SetupScanSession(s *scan.Session, mb *bridge.MessageBridge) {
	session = s
	messageBridge = mb
}

// TriggerScan runs one QR-scan attempt for the caller
func TriggerScan(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	outcome, err := session.ScanQR(c.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, scan.ErrScanInProgress):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "A scan is already in progress!", nil)
		case errors.Is(err, bridge.ErrPermissionDenied):
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Camera permission is required to scan!", nil)
		case errors.Is(err, bridge.ErrUnsupported):
			return middleware.JsonResponse(c, fiber.StatusNotImplemented, false, "Scanning is not available on this device!", nil)
		case errors.Is(err, bridge.ErrTimeout):
			return middleware.JsonResponse(c, fiber.StatusGatewayTimeout, false, "The scanner did not respond in time!", nil)
		default:
			var decodeErr *bridge.DecodeError
			if errors.As(err, &decodeErr) {
				return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "This QR code is not recognized!", nil)
			}
			return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Scan failed, please try again!", nil)
		}
	}

	if outcome == nil {
		// Scanner dismissed without a result.
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Scan cancelled.", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Scan dispatched successfully!", outcome)
}

// GetScanHistory returns the session's scan log, newest first
func GetScanHistory(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	entries := session.History().Entries()
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Scan history fetched successfully!", fiber.Map{
		"entries": entries,
		"total":   len(entries),
	})
}

// BridgeCallback receives a message-passing host's result delivery. The
// callback name in the path matches the one sent with the original request.
func BridgeCallback(c *fiber.Ctx) error {
	if messageBridge == nil {
		return middleware.JsonResponse(c, fiber.StatusNotImplemented, false, "No message-passing host is active!", nil)
	}

	callback := c.Locals("callbackName").(string)

	if delivered := messageBridge.Deliver(callback, c.Body()); !delivered {
		// Late or unknown delivery: dropped on purpose, never an error that
		// would make the host retry.
		return middleware.JsonResponse(c, fiber.StatusOK, true, "No pending request for callback.", fiber.Map{
			"delivered": false,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Result delivered.", fiber.Map{
		"delivered": true,
	})
}
