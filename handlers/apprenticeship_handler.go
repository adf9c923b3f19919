package handlers

import (
	"strconv"
	"time"

	"github.com/apprenticeapex/backend/database"
	"github.com/apprenticeapex/backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type CreateApprenticeshipRequest struct {
	Title        string    `json:"title" validate:"required,min=5,max=255"`
	Trade        string    `json:"trade" validate:"required,max=100"`
	Description  string    `json:"description" validate:"required,min=20"`
	Location     string    `json:"location" validate:"required,max=100"`
	WeeklyWage   float64   `json:"weekly_wage" validate:"required,gt=0"`
	HoursPerWeek int       `json:"hours_per_week" validate:"omitempty,min=16,max=48"`
	ClosingDate  time.Time `json:"closing_date" validate:"required"`
}

type UpdateApprenticeshipRequest struct {
	Title        *string    `json:"title"`
	Trade        *string    `json:"trade"`
	Description  *string    `json:"description"`
	Location     *string    `json:"location"`
	WeeklyWage   *float64   `json:"weekly_wage"`
	HoursPerWeek *int       `json:"hours_per_week"`
	ClosingDate  *time.Time `json:"closing_date"`
	IsActive     *bool      `json:"is_active"`
}

func CreateApprenticeship(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	employerID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateApprenticeshipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.ClosingDate.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Closing date must be in the future"})
	}

	hoursPerWeek := req.HoursPerWeek
	if hoursPerWeek == 0 {
		hoursPerWeek = 40
	}

	listing := models.Apprenticeship{
		EmployerID:   employerID,
		Title:        req.Title,
		Trade:        req.Trade,
		Description:  req.Description,
		Location:     req.Location,
		WeeklyWage:   req.WeeklyWage,
		HoursPerWeek: hoursPerWeek,
		ClosingDate:  req.ClosingDate,
		IsActive:     true,
	}
	if err := database.DB.Create(&listing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create apprenticeship"})
	}

	return c.Status(fiber.StatusCreated).JSON(listing)
}

// SearchApprenticeships is the public listing feed with trade/location
// filters and pagination.
func SearchApprenticeships(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := database.DB.Model(&models.Apprenticeship{}).
		Where("is_active = ? AND closing_date > ?", true, time.Now())

	if trade := c.Query("trade"); trade != "" {
		query = query.Where("trade ILIKE ?", "%"+trade+"%")
	}
	if location := c.Query("location"); location != "" {
		query = query.Where("location ILIKE ?", "%"+location+"%")
	}
	if minWage := c.Query("min_wage"); minWage != "" {
		if wage, err := strconv.ParseFloat(minWage, 64); err == nil {
			query = query.Where("weekly_wage >= ?", wage)
		}
	}

	var total int64
	query.Count(&total)

	var listings []models.Apprenticeship
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch apprenticeships"})
	}

	return c.JSON(fiber.Map{
		"apprenticeships": listings,
		"page":            page,
		"page_size":       pageSize,
		"total":           total,
	})
}

func GetApprenticeship(c *fiber.Ctx) error {
	listingID := c.Params("apprenticeshipId")

	var listing models.Apprenticeship
	if err := database.DB.Preload("Employer").Where("id = ?", listingID).First(&listing).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Apprenticeship not found"})
	}
	return c.JSON(listing)
}

func GetMyApprenticeships(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	employerID, _ := uuid.Parse(claims["user_id"].(string))

	var listings []models.Apprenticeship
	if err := database.DB.
		Where("employer_id = ?", employerID).
		Order("created_at DESC").
		Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch apprenticeships"})
	}
	return c.JSON(listings)
}

func UpdateApprenticeship(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	employerID, _ := uuid.Parse(claims["user_id"].(string))

	var listing models.Apprenticeship
	if err := database.DB.Where("id = ?", c.Params("apprenticeshipId")).First(&listing).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Apprenticeship not found"})
	}
	if listing.EmployerID != employerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only update your own apprenticeships"})
	}

	var req UpdateApprenticeshipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Trade != nil {
		listing.Trade = *req.Trade
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Location != nil {
		listing.Location = *req.Location
	}
	if req.WeeklyWage != nil {
		listing.WeeklyWage = *req.WeeklyWage
	}
	if req.HoursPerWeek != nil {
		listing.HoursPerWeek = *req.HoursPerWeek
	}
	if req.ClosingDate != nil {
		listing.ClosingDate = *req.ClosingDate
	}
	if req.IsActive != nil {
		listing.IsActive = *req.IsActive
	}

	if err := database.DB.Save(&listing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update apprenticeship"})
	}
	return c.JSON(listing)
}

func DeleteApprenticeship(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	employerID, _ := uuid.Parse(claims["user_id"].(string))

	var listing models.Apprenticeship
	if err := database.DB.Where("id = ?", c.Params("apprenticeshipId")).First(&listing).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Apprenticeship not found"})
	}
	if listing.EmployerID != employerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only delete your own apprenticeships"})
	}

	// Listings with applications are deactivated, not removed.
	var applicationCount int64
	database.DB.Model(&models.Application{}).Where("apprenticeship_id = ?", listing.ID).Count(&applicationCount)
	if applicationCount > 0 {
		listing.IsActive = false
		database.DB.Save(&listing)
		return c.JSON(fiber.Map{"message": "Apprenticeship deactivated because it has applications"})
	}

	if err := database.DB.Delete(&listing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete apprenticeship"})
	}
	return c.JSON(fiber.Map{"message": "Apprenticeship deleted"})
}
