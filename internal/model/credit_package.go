package model

import (
	"time"

	"github.com/google/uuid"
)

// ValidPackageSizes lists the sizes an admin may assign.
var ValidPackageSizes = []int{25, 50, 75, 100}

func IsValidPackageSize(size int) bool {
	for _, s := range ValidPackageSizes {
		if s == size {
			return true
		}
	}
	return false
}

// CreditPackage is a ledger row; CreditsUsed + CreditsRemaining == PackageSize always holds.
type CreditPackage struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RecipientCode    string    `gorm:"type:varchar(64);not null;index" json:"recipientCode"`
	PackageSize      int       `gorm:"not null" json:"packageSize"`
	CreditsRemaining int       `gorm:"not null" json:"creditsRemaining"`
	CreditsUsed      int       `gorm:"not null;default:0" json:"creditsUsed"`
	AssignedBy       string    `gorm:"type:varchar(64);not null" json:"assignedBy"`
	AssignedAt       time.Time `gorm:"not null;index" json:"assignedAt"`
}

func (CreditPackage) TableName() string { return "credit_packages" }
