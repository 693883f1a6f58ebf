package models

import (
	"time"
)

// ReviewRequest is a local mirror of a review request owned by the review application.
// Only the fields trophies need are kept.
type ReviewRequest struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	SubmitterID int64     `gorm:"index;not null" json:"submitter_id"`
	Submitter   User      `gorm:"foreignKey:SubmitterID;constraint:OnDelete:CASCADE" json:"submitter,omitempty"`
	Summary     string    `json:"summary"`
	Public      bool      `gorm:"default:false;index" json:"public"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
