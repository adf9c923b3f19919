package routes

import (
	"github.com/apprenticeapex/backend/handlers"
	"github.com/apprenticeapex/backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func ApplicationRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	candidate := api.Group("/applications", middleware.Protected())
	candidate.Post("", middleware.CandidateRequired(), handlers.ApplyToApprenticeship)
	candidate.Get("/me", middleware.CandidateRequired(), handlers.GetMyApplications)
	candidate.Post("/:applicationId/withdraw", middleware.CandidateRequired(), handlers.WithdrawApplication)

	employer := api.Group("/employer", middleware.Protected(), middleware.EmployerRequired())
	employer.Get("/apprenticeships/:apprenticeshipId/applications", handlers.GetApplicationsForApprenticeship)
	employer.Put("/applications/:applicationId/status", handlers.UpdateApplicationStatus)
}
