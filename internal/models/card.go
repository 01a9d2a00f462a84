package models

import (
	"time"

	"gorm.io/gorm"
)

// Difficulty levels a card can carry.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Card struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Question   string    `gorm:"type:text;not null" json:"question"`
	Answer     string    `gorm:"type:text;not null" json:"answer"`
	Difficulty string    `gorm:"size:10;not null" json:"difficulty"` // easy, medium, hard
	SetID      uint      `gorm:"not null;index" json:"flashcard_set"`
	Set        Set       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidDifficulty reports whether s is one of the known difficulty levels.
func ValidDifficulty(s string) bool {
	return s == DifficultyEasy || s == DifficultyMedium || s == DifficultyHard
}

// AfterSave bumps the parent set's updated_at inside the same transaction,
// so a set reflects when any of its cards last changed.
func (c *Card) AfterSave(tx *gorm.DB) error {
	return tx.Model(&Set{}).Where("id = ?", c.SetID).
		UpdateColumn("updated_at", time.Now()).Error
}
