package models

import "gorm.io/gorm"

// Feedback stores a free-form message collected by the feedback conversation.
type Feedback struct {
	gorm.Model
	UserID  uint   `gorm:"not null;index"`
	Message string `gorm:"type:text;not null"`
}
