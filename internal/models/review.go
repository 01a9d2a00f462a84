package models

import (
	"time"
)

// Review is a 1-5 star rating of a set. A user gets at most one review per
// set; the pair is unique in the database and enforced again at write time.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Rating    int       `gorm:"not null" json:"rating"` // 1-5 inclusive
	Comment   string    `gorm:"type:text" json:"comment"`
	SetID     uint      `gorm:"not null;index;uniqueIndex:idx_review_user_set" json:"flashcard_set"` // immutable after creation
	Set       Set       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_user_set" json:"user"` // author, server-assigned
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
