package models

import (
	"time"
)

type Collection struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Public      bool      `gorm:"default:false" json:"public"`
	UserID      uint      `gorm:"not null;index" json:"user"` // Owner, immutable after creation
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Sets        []Set     `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
