package handlers

import (
	"time"

	"github.com/apprenticeapex/backend/database"
	"github.com/apprenticeapex/backend/models"
	"github.com/apprenticeapex/backend/notifications"
	"github.com/gofiber/fiber/v2"
)

// GetPlatformStats backs the admin dashboard overview.
func GetPlatformStats(c *fiber.Ctx) error {
	var candidateCount, employerCount, listingCount, activeListingCount int64
	var applicationCount, offerCount, conversationCount, messageCount int64

	database.DB.Model(&models.User{}).Where("role = ?", "candidate").Count(&candidateCount)
	database.DB.Model(&models.User{}).Where("role = ?", "employer").Count(&employerCount)
	database.DB.Model(&models.Apprenticeship{}).Count(&listingCount)
	database.DB.Model(&models.Apprenticeship{}).
		Where("is_active = ? AND closing_date > ?", true, time.Now()).
		Count(&activeListingCount)
	database.DB.Model(&models.Application{}).Count(&applicationCount)
	database.DB.Model(&models.Application{}).Where("status = ?", "offer").Count(&offerCount)
	database.DB.Model(&models.Conversation{}).Count(&conversationCount)
	database.DB.Model(&models.Message{}).Count(&messageCount)

	return c.JSON(fiber.Map{
		"candidates":       candidateCount,
		"employers":        employerCount,
		"listings":         listingCount,
		"active_listings":  activeListingCount,
		"applications":     applicationCount,
		"offers":           offerCount,
		"conversations":    conversationCount,
		"messages":         messageCount,
	})
}

func ListEmployers(c *fiber.Ctx) error {
	var employers []models.EmployerProfile
	if err := database.DB.Preload("User").Order("created_at DESC").Find(&employers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(employers)
}

// VerifyEmployer flips the verified flag on an employer profile. Only
// verified employers appear with a badge in the candidate app.
func VerifyEmployer(c *fiber.Ctx) error {
	type Request struct {
		Verified bool `json:"verified"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	var profile models.EmployerProfile
	if err := database.DB.Preload("User").Where("user_id = ?", c.Params("employerId")).First(&profile).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Employer not found"})
	}

	profile.Verified = req.Verified
	if err := database.DB.Save(&profile).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update employer"})
	}

	if req.Verified {
		go notifications.SendEmail(
			profile.User.FullName,
			profile.User.Email,
			"Your Company Has Been Verified",
			"<h1>Verified!</h1><p>"+profile.CompanyName+" is now a verified employer on ApprenticeApex.</p>",
		)
	}

	return c.JSON(profile)
}

// DeactivateUser soft-disables an account; their listings are deactivated too.
func DeactivateUser(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.Where("id = ?", c.Params("userId")).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	user.IsActive = false
	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate user"})
	}

	if user.Role == "employer" {
		database.DB.Model(&models.Apprenticeship{}).
			Where("employer_id = ?", user.ID).
			Update("is_active", false)
	}

	return c.JSON(fiber.Map{"message": "User deactivated"})
}
