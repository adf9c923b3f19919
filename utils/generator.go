package utils

import (
	"math/rand"
	"time"

	"github.com/apprenticeapex/backend/models"
	"gorm.io/gorm"
)

const referenceSuffixLength = 8
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateUniqueApplicationReference produces a candidate-facing reference
// like "APX-7F3K2M9Q", retrying until it doesn't collide.
func GenerateUniqueApplicationReference(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, referenceSuffixLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		reference := "APX-" + string(b)

		var application models.Application
		err := tx.Where("reference = ?", reference).First(&application).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return reference, nil
			}
			return "", err
		}
	}
}
