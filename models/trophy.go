package models

import (
	"time"
)

// TrophyKind: static definition, built at startup and never persisted
type TrophyKind struct {
	ID          string // e.g., "milestone", "palindrome"
	Title       string
	Description string
	IconURL     string // static icon reference, resolved to a public URL by utils.IconStore
	Qualifies   func(reviewRequestID int64) bool
}

// IsQualified reports whether a review request id earns this trophy.
func (k TrophyKind) IsQualified(reviewRequestID int64) bool {
	if k.Qualifies == nil {
		return false
	}
	return k.Qualifies(reviewRequestID)
}

// Trophy: awarded instance linking a kind to a review request and its user
type Trophy struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	TrophyType      string        `gorm:"type:varchar(64);not null;uniqueIndex:idx_trophy_review_request_type,priority:2" json:"trophy_type"`
	ReviewRequestID int64         `gorm:"not null;uniqueIndex:idx_trophy_review_request_type,priority:1" json:"review_request_id"`
	ReviewRequest   ReviewRequest `gorm:"foreignKey:ReviewRequestID;constraint:OnDelete:CASCADE" json:"-"`
	UserID          int64         `gorm:"index;not null" json:"user_id"`
	User            User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
}
