package handlers

import (
	"errors"
	"log"
	"strconv"

	config "github.com/apprenticeapex/backend/configs"
	"github.com/apprenticeapex/backend/database"
	"github.com/apprenticeapex/backend/models"
	"github.com/apprenticeapex/backend/notifications"
	"github.com/apprenticeapex/backend/payments"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultListingFee = 49.00

// CreateListingFeeOrder opens a PayPal order for publishing an
// apprenticeship listing.
func CreateListingFeeOrder(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	employerID, _ := uuid.Parse(claims["user_id"].(string))

	type Request struct {
		ApprenticeshipID string `json:"apprenticeship_id" validate:"required,uuid"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	apprenticeshipID, _ := uuid.Parse(req.ApprenticeshipID)

	var listing models.Apprenticeship
	if err := database.DB.Where("id = ?", apprenticeshipID).First(&listing).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Apprenticeship not found"})
	}
	if listing.EmployerID != employerID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only pay for your own apprenticeships"})
	}
	if listing.PaidListing {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This listing has already been paid for"})
	}

	fee := defaultListingFee
	if configured := config.Config("LISTING_FEE_GBP"); configured != "" {
		if parsed, err := strconv.ParseFloat(configured, 64); err == nil {
			fee = parsed
		}
	}

	order, err := payments.CreateOrder(fee, "GBP")
	if err != nil {
		log.Printf("🔥 PayPal CreateOrder API call failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create PayPal order"})
	}

	payment := models.Payment{
		EmployerID:       employerID,
		ApprenticeshipID: &apprenticeshipID,
		ProviderOrderID:  &order.ID,
		Amount:           fee,
		Currency:         "GBP",
		Provider:         "paypal",
		Status:           "created",
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		log.Printf("🔥 Failed to save payment record: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payment record"})
	}

	return c.JSON(fiber.Map{"orderID": order.ID})
}

// CaptureListingFeeOrder finalizes the PayPal order and marks the listing
// as paid.
func CaptureListingFeeOrder(c *fiber.Ctx) error {
	type CaptureRequest struct {
		OrderID string `json:"orderID" validate:"required"`
	}
	var req CaptureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var payment models.Payment
	if err := database.DB.Where("provider_order_id = ?", req.OrderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment record not found for this order"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if payment.Status == "succeeded" {
		return c.JSON(fiber.Map{"status": "success", "message": "Payment already captured"})
	}

	capturedOrder, err := payments.CaptureOrder(req.OrderID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if capturedOrder.Status != payments.OrderCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Order not completed on PayPal's end"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		payment.Status = "succeeded"
		payment.ProviderTxnID = &capturedOrder.ID
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		if payment.ApprenticeshipID != nil {
			var listing models.Apprenticeship
			if err := tx.Preload("Employer").First(&listing, "id = ?", payment.ApprenticeshipID).Error; err != nil {
				return err
			}
			listing.PaidListing = true
			if err := tx.Save(&listing).Error; err != nil {
				return err
			}

			go notifications.SendEmail(
				listing.Employer.FullName,
				listing.Employer.Email,
				"Listing Payment Confirmed",
				"<h1>Payment Received</h1><p>Your payment for \""+listing.Title+"\" was successful. The listing is now live.</p>",
			)
		}
		return nil
	})
	if err != nil {
		log.Printf("🔥 CRITICAL: Error finalizing payment for order %s: %v", req.OrderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to finalize payment"})
	}

	return c.JSON(fiber.Map{"status": "success", "message": "Payment captured and listing published"})
}
