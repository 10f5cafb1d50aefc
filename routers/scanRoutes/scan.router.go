package scanRoutes

import (
	scanControllers "sefy/controllers/scan"
	"sefy/middleware"
	scanValidators "sefy/validators/scan"

	"github.com/gofiber/fiber/v2"
)

func SetupScanRoutes(app *fiber.App) {
	scanGroup := app.Group("/scan")

	scanGroup.Post("/", middleware.JWTMiddleware, scanControllers.TriggerScan)
	scanGroup.Get("/history", middleware.JWTMiddleware, scanControllers.GetScanHistory)

	// Message-passing hosts deliver capability results here
	bridgeGroup := app.Group("/bridge")
	bridgeGroup.Post("/callback/:callback", scanValidators.BridgeCallback(), scanControllers.BridgeCallback)
}
