package services

import (
	"errors"
	"sort"
	"time"

	"flashdeck/internal/db"
	"flashdeck/internal/models"

	"gorm.io/gorm"
)

// DailySetLimit caps set creation across the whole system: the 20th creation
// attempt on a calendar day is refused, whoever makes it.
const DailySetLimit = 20

var ErrSetQuotaExceeded = errors.New("the daily limit for flashcard sets has been reached")

// CreateSet inserts s. The quota count and the insert run inside one
// transaction so two concurrent creates cannot both slip under the limit.
func CreateSet(s *models.Set) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		count, err := countSetsCreatedToday(tx)
		if err != nil {
			return err
		}
		if count+1 >= DailySetLimit {
			return ErrSetQuotaExceeded
		}
		return tx.Create(s).Error
	})
}

func countSetsCreatedToday(tx *gorm.DB) (int64, error) {
	y, m, d := time.Now().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.Local)

	var count int64
	err := tx.Model(&models.Set{}).
		Where("created_at >= ? AND created_at < ?", start, start.AddDate(0, 0, 1)).
		Count(&count).Error
	return count, err
}

// DeleteSet removes a set and everything under it in one transaction.
func DeleteSet(setID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		return deleteSetsCascade(tx, []uint{setID})
	})
}

func deleteSetsCascade(tx *gorm.DB, setIDs []uint) error {
	if len(setIDs) == 0 {
		return nil
	}
	if err := tx.Where("set_id IN ?", setIDs).Delete(&models.Review{}).Error; err != nil {
		return err
	}
	if err := tx.Where("set_id IN ?", setIDs).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("set_id IN ?", setIDs).Delete(&models.Card{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", setIDs).Delete(&models.Set{}).Error
}

// FillAverageRatings computes mean review ratings for the given sets in one
// grouped query. Sets without reviews keep a nil average.
func FillAverageRatings(sets []models.Set) {
	if len(sets) == 0 {
		return
	}

	setIDs := make([]uint, len(sets))
	for i, s := range sets {
		setIDs[i] = s.ID
	}

	type avgResult struct {
		SetID  uint
		Rating float64
	}
	var results []avgResult
	db.DB.Model(&models.Review{}).
		Select("set_id, AVG(rating) as rating").
		Where("set_id IN ?", setIDs).
		Group("set_id").
		Scan(&results)

	avgMap := make(map[uint]float64)
	for _, r := range results {
		avgMap[r.SetID] = r.Rating
	}

	for i := range sets {
		if avg, ok := avgMap[sets[i].ID]; ok {
			v := avg
			sets[i].AverageRating = &v
		}
	}
}

// SortSetsByRating orders sets by mean rating descending, unrated sets last.
// Ratings must already be filled in.
func SortSetsByRating(sets []models.Set) {
	sort.SliceStable(sets, func(i, j int) bool {
		a, b := sets[i].AverageRating, sets[j].AverageRating
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a > *b
	})
}
