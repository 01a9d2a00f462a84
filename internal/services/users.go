package services

import (
	"flashdeck/internal/db"
	"flashdeck/internal/models"
	"flashdeck/internal/utils"

	"gorm.io/gorm"
)

// CreateUser registers an account with a hashed password.
func CreateUser(username, password string, isStaff bool) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Password: hash,
		IsStaff:  isStaff,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser changes username and staff flag. An empty password keeps the
// stored hash; the superuser flag can never be set through here.
func UpdateUser(user *models.User, username, password string, isStaff bool) error {
	user.Username = username
	user.IsStaff = isStaff
	if password != "" {
		hash, err := utils.HashPassword(password)
		if err != nil {
			return err
		}
		user.Password = hash
	}
	return db.DB.Save(user).Error
}

// DeleteUser removes the account along with every collection it owns and all
// comments and reviews it authored elsewhere.
func DeleteUser(userID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var collectionIDs []uint
		if err := tx.Model(&models.Collection{}).
			Where("user_id = ?", userID).
			Pluck("id", &collectionIDs).Error; err != nil {
			return err
		}
		if err := deleteCollectionsCascade(tx, collectionIDs); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
}
