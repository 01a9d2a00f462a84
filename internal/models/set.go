package models

import (
	"time"
)

type Set struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"size:100;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	CollectionID uint       `gorm:"not null;index" json:"flashcard_collection"` // immutable after creation
	Collection   Collection `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Cards        []Card     `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Comments     []Comment  `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Reviews      []Review   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"` // also touched whenever a child card is saved

	// Not a database column, filled in by queries
	AverageRating *float64 `gorm:"-" json:"average_rating,omitempty"`
}
