package jobs

import (
	"log"
	"time"

	"github.com/apprenticeapex/backend/database"
	"github.com/apprenticeapex/backend/models"
)

// CloseExpiredListings deactivates apprenticeships whose closing date has
// passed so they drop out of search results.
func CloseExpiredListings() {
	log.Println("Running job: CloseExpiredListings...")

	result := database.DB.Model(&models.Apprenticeship{}).
		Where("is_active = ? AND closing_date < ?", true, time.Now()).
		Update("is_active", false)

	if result.Error != nil {
		log.Printf("Error closing expired listings: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("Closed %d expired listing(s).", result.RowsAffected)
	}
}
