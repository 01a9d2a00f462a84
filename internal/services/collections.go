package services

import (
	"flashdeck/internal/db"
	"flashdeck/internal/models"

	"gorm.io/gorm"
)

// DeleteCollection removes a collection, its sets and transitively all cards,
// comments and reviews under those sets, in one transaction.
func DeleteCollection(collectionID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := deleteCollectionsCascade(tx, []uint{collectionID}); err != nil {
			return err
		}
		return nil
	})
}

func deleteCollectionsCascade(tx *gorm.DB, collectionIDs []uint) error {
	if len(collectionIDs) == 0 {
		return nil
	}

	var setIDs []uint
	if err := tx.Model(&models.Set{}).
		Where("collection_id IN ?", collectionIDs).
		Pluck("id", &setIDs).Error; err != nil {
		return err
	}
	if err := deleteSetsCascade(tx, setIDs); err != nil {
		return err
	}
	return tx.Where("id IN ?", collectionIDs).Delete(&models.Collection{}).Error
}
