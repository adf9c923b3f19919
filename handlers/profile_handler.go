package handlers

import (
	"github.com/apprenticeapex/backend/database"
	"github.com/apprenticeapex/backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type UpdateCandidateProfileRequest struct {
	FullName          *string `json:"full_name"`
	ProfilePictureURL *string `json:"profile_picture_url"`
	Headline          *string `json:"headline"`
	Bio               *string `json:"bio"`
	Skills            *string `json:"skills"`
	Location          *string `json:"location"`
	Postcode          *string `json:"postcode"`
	CVURL             *string `json:"cv_url"`
}

type UpdateEmployerProfileRequest struct {
	FullName    *string `json:"full_name"`
	CompanyName *string `json:"company_name"`
	Industry    *string `json:"industry"`
	Website     *string `json:"website"`
	Location    *string `json:"location"`
	LogoURL     *string `json:"logo_url"`
}

func GetProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	switch user.Role {
	case "candidate":
		var profile models.CandidateProfile
		database.DB.Where("user_id = ?", user.ID).First(&profile)
		return c.JSON(fiber.Map{"user": user, "profile": profile})
	case "employer":
		var profile models.EmployerProfile
		database.DB.Where("user_id = ?", user.ID).First(&profile)
		return c.JSON(fiber.Map{"user": user, "profile": profile})
	default:
		return c.JSON(fiber.Map{"user": user})
	}
}

func UpdateCandidateProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	var profile models.CandidateProfile
	if err := database.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Candidate profile not found"})
	}

	var req UpdateCandidateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.ProfilePictureURL != nil {
		user.ProfilePictureURL = req.ProfilePictureURL
	}
	if req.Headline != nil {
		profile.Headline = req.Headline
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	if req.Skills != nil {
		profile.Skills = req.Skills
	}
	if req.Location != nil {
		profile.Location = req.Location
	}
	if req.Postcode != nil {
		profile.Postcode = req.Postcode
	}
	if req.CVURL != nil {
		profile.CVURL = req.CVURL
	}

	database.DB.Save(&user)
	database.DB.Save(&profile)

	return c.JSON(fiber.Map{"user": user, "profile": profile})
}

func UpdateEmployerProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	var profile models.EmployerProfile
	if err := database.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Employer profile not found"})
	}

	var req UpdateEmployerProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.CompanyName != nil {
		profile.CompanyName = *req.CompanyName
	}
	if req.Industry != nil {
		profile.Industry = req.Industry
	}
	if req.Website != nil {
		profile.Website = req.Website
	}
	if req.Location != nil {
		profile.Location = req.Location
	}
	if req.LogoURL != nil {
		profile.LogoURL = req.LogoURL
	}

	database.DB.Save(&user)
	database.DB.Save(&profile)

	return c.JSON(fiber.Map{"user": user, "profile": profile})
}
