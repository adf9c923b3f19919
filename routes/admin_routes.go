package routes

import (
	"github.com/apprenticeapex/backend/handlers"
	"github.com/apprenticeapex/backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	admin := app.Group("/api/v1/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/stats", handlers.GetPlatformStats)
	admin.Get("/employers", handlers.ListEmployers)
	admin.Put("/employers/:employerId/verify", handlers.VerifyEmployer)
	admin.Put("/users/:userId/deactivate", handlers.DeactivateUser)
}
