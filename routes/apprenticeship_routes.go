package routes

import (
	"github.com/apprenticeapex/backend/handlers"
	"github.com/apprenticeapex/backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func ApprenticeshipRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Public discovery endpoints
	api.Get("/apprenticeships", handlers.SearchApprenticeships)
	api.Get("/apprenticeships/:apprenticeshipId", handlers.GetApprenticeship)

	employer := api.Group("/employer/apprenticeships", middleware.Protected(), middleware.EmployerRequired())
	employer.Post("", handlers.CreateApprenticeship)
	employer.Get("", handlers.GetMyApprenticeships)
	employer.Put("/:apprenticeshipId", handlers.UpdateApprenticeship)
	employer.Delete("/:apprenticeshipId", handlers.DeleteApprenticeship)
}
