package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/apprenticeapex/backend/database"
	"github.com/apprenticeapex/backend/models"
	"github.com/apprenticeapex/backend/notifications"
	"github.com/apprenticeapex/backend/services"
	"github.com/apprenticeapex/backend/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplyRequest struct {
	ApprenticeshipID string  `json:"apprenticeship_id" validate:"required,uuid"`
	CoverNote        *string `json:"cover_note,omitempty"`
}

type UpdateApplicationStatusRequest struct {
	Status      string     `json:"status" validate:"required,oneof=shortlisted interview offer rejected"`
	InterviewAt *time.Time `json:"interview_at,omitempty"`
}

func ApplyToApprenticeship(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	candidateID, _ := uuid.Parse(claims["user_id"].(string))

	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	apprenticeshipID, _ := uuid.Parse(req.ApprenticeshipID)

	var listing models.Apprenticeship
	if err := database.DB.Preload("Employer").Where("id = ?", apprenticeshipID).First(&listing).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Apprenticeship not found"})
	}
	if !listing.IsActive || listing.ClosingDate.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This apprenticeship is no longer accepting applications"})
	}

	var existing models.Application
	err := database.DB.Where("apprenticeship_id = ? AND candidate_id = ?", apprenticeshipID, candidateID).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You have already applied to this apprenticeship"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	var application models.Application
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		reference, err := utils.GenerateUniqueApplicationReference(tx)
		if err != nil {
			return err
		}
		application = models.Application{
			ApprenticeshipID: apprenticeshipID,
			CandidateID:      candidateID,
			Reference:        reference,
			Status:           "submitted",
			CoverNote:        req.CoverNote,
		}
		return tx.Create(&application).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit application"})
	}

	go notifications.SendEmail(
		listing.Employer.FullName,
		listing.Employer.Email,
		"New Application Received",
		"<h1>New Application</h1><p>A candidate has applied to your apprenticeship \""+listing.Title+"\". Log in to review it.</p>",
	)

	return c.Status(fiber.StatusCreated).JSON(application)
}

func GetMyApplications(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	candidateID, _ := uuid.Parse(claims["user_id"].(string))

	var applications []models.Application
	if err := database.DB.
		Preload("Apprenticeship").
		Where("candidate_id = ?", candidateID).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch applications"})
	}
	return c.JSON(applications)
}

func GetApplicationsForApprenticeship(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	employerID, _ := uuid.Parse(claims["user_id"].(string))

	var listing models.Apprenticeship
	if err := database.DB.Where("id = ?", c.Params("apprenticeshipId")).First(&listing).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Apprenticeship not found"})
	}
	if listing.EmployerID != employerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only view applications for your own apprenticeships"})
	}

	var applications []models.Application
	if err := database.DB.
		Preload("Candidate").
		Where("apprenticeship_id = ?", listing.ID).
		Order("created_at ASC").
		Find(&applications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch applications"})
	}
	return c.JSON(applications)
}

func UpdateApplicationStatus(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	employerID, _ := uuid.Parse(claims["user_id"].(string))

	var req UpdateApplicationStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Status == "interview" && req.InterviewAt == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "An interview time is required to move an application to interview"})
	}

	var application models.Application
	if err := database.DB.
		Preload("Apprenticeship").
		Preload("Candidate").
		Where("id = ?", c.Params("applicationId")).
		First(&application).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Application not found"})
	}
	if application.Apprenticeship.EmployerID != employerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only manage applications for your own apprenticeships"})
	}

	application.Status = req.Status
	if req.Status == "interview" {
		application.InterviewAt = req.InterviewAt
	}
	if err := database.DB.Save(&application).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update application"})
	}

	go notifyCandidateOfStatus(application)
	if req.Status == "offer" {
		go services.GenerateOfferLetter(application)
	}

	return c.JSON(application)
}

func WithdrawApplication(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	candidateID, _ := uuid.Parse(claims["user_id"].(string))

	var application models.Application
	if err := database.DB.Where("id = ?", c.Params("applicationId")).First(&application).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Application not found"})
	}
	if application.CandidateID != candidateID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only withdraw your own applications"})
	}
	if application.Status == "offer" || application.Status == "rejected" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This application can no longer be withdrawn"})
	}

	application.Status = "withdrawn"
	if err := database.DB.Save(&application).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to withdraw application"})
	}
	return c.JSON(application)
}

func notifyCandidateOfStatus(application models.Application) {
	subject := "Update on Your Application " + application.Reference
	var body string
	switch application.Status {
	case "shortlisted":
		body = "<h1>You've Been Shortlisted!</h1><p>Your application for \"" + application.Apprenticeship.Title + "\" has been shortlisted.</p>"
	case "interview":
		body = "<h1>Interview Invitation</h1><p>The employer would like to interview you for \"" + application.Apprenticeship.Title + "\". Check your dashboard for the scheduled time.</p>"
	case "offer":
		body = "<h1>Congratulations!</h1><p>You have received an offer for \"" + application.Apprenticeship.Title + "\". Your offer letter will be available shortly.</p>"
	case "rejected":
		body = "<h1>Application Update</h1><p>Unfortunately your application for \"" + application.Apprenticeship.Title + "\" was not successful this time.</p>"
	default:
		return
	}

	notifications.SendEmail(application.Candidate.FullName, application.Candidate.Email, subject, body)
	NotifyApplicationUpdate(application.CandidateID, subject, application.Status, &application)
	log.Printf("Notified candidate %s of application %s status: %s", application.CandidateID, application.Reference, application.Status)
}
