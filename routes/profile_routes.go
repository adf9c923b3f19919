package routes

import (
	"github.com/apprenticeapex/backend/handlers"
	"github.com/apprenticeapex/backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	profile := api.Group("/profile/me", middleware.Protected())
	profile.Get("", handlers.GetProfile)
	profile.Put("/candidate", middleware.CandidateRequired(), handlers.UpdateCandidateProfile)
	profile.Put("/employer", middleware.EmployerRequired(), handlers.UpdateEmployerProfile)
}
