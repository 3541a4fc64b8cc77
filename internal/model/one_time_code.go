package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OneTimeCode struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code               string           `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`
	TouristCode        string           `gorm:"type:varchar(64);not null;index" json:"touristIqCode"`
	IsUsed             bool             `gorm:"not null;default:false" json:"isUsed"`
	PartnerCode        *string          `gorm:"type:varchar(64);index" json:"partnerCode,omitempty"`
	PartnerName        *string          `gorm:"type:varchar(255)" json:"partnerName,omitempty"`
	OriginalAmount     *decimal.Decimal `gorm:"type:numeric(10,2)" json:"originalAmount,omitempty"`
	DiscountPercentage *decimal.Decimal `gorm:"type:numeric(5,2)" json:"discountPercentage,omitempty"`
	DiscountAmount     *decimal.Decimal `gorm:"type:numeric(10,2)" json:"discountAmount,omitempty"`
	OfferDescription   *string          `gorm:"type:text" json:"offerDescription,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UsedAt             *time.Time       `json:"usedAt,omitempty"`
}

func (OneTimeCode) TableName() string { return "one_time_codes" }

// Redemption holds the fields written when a partner consumes a code.
type Redemption struct {
	PartnerCode        string
	PartnerName        string
	OriginalAmount     decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	OfferDescription   string
	UsedAt             time.Time
}

// Apply marks the code used. Callers must check IsUsed first.
func (o *OneTimeCode) Apply(r Redemption) {
	o.IsUsed = true
	o.PartnerCode = &r.PartnerCode
	o.PartnerName = &r.PartnerName
	o.OriginalAmount = &r.OriginalAmount
	o.DiscountPercentage = &r.DiscountPercentage
	o.DiscountAmount = &r.DiscountAmount
	o.OfferDescription = &r.OfferDescription
	usedAt := r.UsedAt
	o.UsedAt = &usedAt
}
