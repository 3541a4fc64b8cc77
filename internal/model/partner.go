package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringSlice is a helper type for storing []string as JSONB in PostgreSQL.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("StringSlice.Scan: type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, s)
}

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

func (d Weekday) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// DayHours is one day of a partner's opening schedule. Open and Close use HH:MM.
type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed"`
}

// OpeningHours is stored as a JSONB object keyed by weekday.
type OpeningHours map[Weekday]DayHours

func (h OpeningHours) Value() (driver.Value, error) {
	if h == nil {
		return nil, nil
	}
	return json.Marshal(h)
}

func (h *OpeningHours) Scan(value interface{}) error {
	if value == nil {
		*h = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("OpeningHours.Scan: type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, h)
}

// Validate checks weekday keys and HH:MM ranges.
func (h OpeningHours) Validate() error {
	for day, hours := range h {
		if !day.Valid() {
			return fmt.Errorf("unknown weekday %q", day)
		}
		if hours.Closed {
			continue
		}
		open, err := time.Parse("15:04", hours.Open)
		if err != nil {
			return fmt.Errorf("%s: invalid open time %q", day, hours.Open)
		}
		closing, err := time.Parse("15:04", hours.Close)
		if err != nil {
			return fmt.Errorf("%s: invalid close time %q", day, hours.Close)
		}
		if !closing.After(open) {
			return fmt.Errorf("%s: close must be after open", day)
		}
	}
	return nil
}

type PartnerProfile struct {
	PartnerCode    string       `gorm:"type:varchar(64);primaryKey" json:"partnerCode"`
	BusinessName   string       `gorm:"type:varchar(255);not null" json:"businessName"`
	Address        string       `gorm:"type:varchar(255)" json:"address"`
	Phone          string       `gorm:"type:varchar(32)" json:"phone"`
	OpeningHours   OpeningHours `gorm:"type:jsonb" json:"openingHours"`
	Specialties    StringSlice  `gorm:"type:jsonb" json:"specialties"`
	Certifications StringSlice  `gorm:"type:jsonb" json:"certifications"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

func (PartnerProfile) TableName() string { return "partner_profiles" }

type PartnerOffer struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PartnerCode        string         `gorm:"type:varchar(64);not null;index" json:"partnerCode"`
	Title              string         `gorm:"type:varchar(255);not null" json:"title"`
	Description        string         `gorm:"type:text" json:"description"`
	DiscountPercentage int            `gorm:"not null" json:"discountPercentage"`
	ValidUntil         *time.Time     `json:"validUntil,omitempty"`
	IsActive           bool           `gorm:"not null;default:true" json:"isActive"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PartnerOffer) TableName() string { return "partner_offers" }

// AvailableAt reports whether tourists can see the offer at t.
func (o *PartnerOffer) AvailableAt(t time.Time) bool {
	if !o.IsActive {
		return false
	}
	return o.ValidUntil == nil || o.ValidUntil.After(t)
}
