package services

import (
	"flashdeck/internal/db"
	"flashdeck/internal/models"

	"gorm.io/gorm"
)

// UpsertReview creates a review of a set, or when the user already reviewed
// it, updates the existing row instead of inserting a duplicate. The lookup
// and the write share one transaction; the review's set association never
// changes. Returns the stored review and whether a new row was created.
func UpsertReview(userID, setID uint, rating int, comment string) (*models.Review, bool, error) {
	var review models.Review
	created := false

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND set_id = ?", userID, setID).First(&review)
		if result.Error == nil {
			review.Rating = rating
			review.Comment = comment
			return tx.Save(&review).Error
		}
		if result.Error != gorm.ErrRecordNotFound {
			return result.Error
		}

		review = models.Review{
			Rating:  rating,
			Comment: comment,
			SetID:   setID,
			UserID:  userID,
		}
		created = true
		return tx.Create(&review).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &review, created, nil
}

// UpdateReview updates rating and comment of an existing review. The set
// association is deliberately not taken from the caller: it is immutable,
// whatever a payload claims.
func UpdateReview(review *models.Review, rating int, comment string) error {
	review.Rating = rating
	review.Comment = comment
	return db.DB.Save(review).Error
}
