package model

import (
	"time"

	"github.com/google/uuid"
)

type FeedbackRating string

const (
	FeedbackPositive FeedbackRating = "positive"
	FeedbackNegative FeedbackRating = "negative"
)

func (r FeedbackRating) Valid() bool {
	return r == FeedbackPositive || r == FeedbackNegative
}

type PartnerFeedback struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TouristCode string         `gorm:"type:varchar(64);not null;index" json:"touristIqCode"`
	PartnerCode string         `gorm:"type:varchar(64);not null;index" json:"partnerCode"`
	OTCCode     string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"otcCode"`
	Rating      FeedbackRating `gorm:"type:varchar(16);not null" json:"rating"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (PartnerFeedback) TableName() string { return "partner_feedbacks" }

type PartnerRating struct {
	PartnerCode  string    `gorm:"type:varchar(64);primaryKey" json:"partnerCode"`
	Positive     int       `gorm:"not null;default:0" json:"positive"`
	Total        int       `gorm:"not null;default:0" json:"total"`
	Percentage   float64   `gorm:"not null;default:0" json:"percentage"`
	WarningLevel int       `gorm:"not null;default:0" json:"warningLevel"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (PartnerRating) TableName() string { return "partner_ratings" }
