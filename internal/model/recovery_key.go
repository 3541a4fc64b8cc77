package model

import (
	"time"

	"github.com/google/uuid"
)

// RecoveryKey stores only digests; see RecoveryCodeIndex for the reverse lookup.
type RecoveryKey struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	IQCodeHash     string    `gorm:"type:char(64);uniqueIndex;not null" json:"-"`
	SecretWordHash string    `gorm:"type:char(64);not null;index:idx_recovery_pair" json:"-"`
	BirthDateHash  string    `gorm:"type:char(64);not null;index:idx_recovery_pair" json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (RecoveryKey) TableName() string { return "recovery_keys" }

// RecoveryCodeIndex maps an IQCode digest to the sealed plaintext code.
type RecoveryCodeIndex struct {
	IQCodeHash string    `gorm:"type:char(64);primaryKey" json:"-"`
	SealedCode string    `gorm:"type:text;not null" json:"-"`
	CreatedAt  time.Time `json:"-"`
}

func (RecoveryCodeIndex) TableName() string { return "recovery_code_index" }
