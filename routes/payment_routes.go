package routes

import (
	"github.com/apprenticeapex/backend/handlers"
	"github.com/apprenticeapex/backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	payments := api.Group("/payments", middleware.Protected(), middleware.EmployerRequired())
	payments.Post("/listing-fee/order", handlers.CreateListingFeeOrder)
	payments.Post("/listing-fee/capture", handlers.CaptureListingFeeOrder)
}
