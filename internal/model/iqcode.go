package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleTourist   Role = "tourist"
	RoleStructure Role = "structure"
	RolePartner   Role = "partner"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTourist, RoleStructure, RolePartner:
		return true
	}
	return false
}

type CodeStatus string

const (
	CodeStatusPending  CodeStatus = "pending"
	CodeStatusApproved CodeStatus = "approved"
	CodeStatusBlocked  CodeStatus = "blocked"
	CodeStatusInactive CodeStatus = "inactive"
)

func (s CodeStatus) Valid() bool {
	switch s {
	case CodeStatusPending, CodeStatusApproved, CodeStatusBlocked, CodeStatusInactive:
		return true
	}
	return false
}

type CodeType string

const (
	CodeTypeEmotional    CodeType = "emotional"
	CodeTypeProfessional CodeType = "professional"
	CodeTypeTemporary    CodeType = "temporary"
)

// IQCode is an anonymous identity. The role never changes after creation.
type IQCode struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code                 string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Role                 Role           `gorm:"type:varchar(16);not null;index" json:"role"`
	IsActive             bool           `gorm:"not null;default:true" json:"isActive"`
	Status               CodeStatus     `gorm:"type:varchar(16);not null;default:'approved'" json:"status"`
	AssignedTo           string         `gorm:"type:varchar(255)" json:"assignedTo"`
	Location             string         `gorm:"type:varchar(16)" json:"location"`
	CodeType             CodeType       `gorm:"type:varchar(16);not null" json:"codeType"`
	CreatedBy            string         `gorm:"type:varchar(64)" json:"createdBy"`
	AvailableOneTimeUses int            `gorm:"not null;default:0" json:"availableOneTimeUses"`
	IsExcluded           bool           `gorm:"not null;default:false" json:"isExcluded"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

func (IQCode) TableName() string { return "iq_codes" }

// CanLogin reports whether the code may open a session.
func (c *IQCode) CanLogin() bool {
	if !c.IsActive || c.DeletedAt.Valid {
		return false
	}
	return c.Status != CodeStatusBlocked && c.Status != CodeStatusInactive
}

// MaskCode hides the part of an IQCode after its last hyphen, so the code can
// be shown to a third party without becoming usable as a login.
func MaskCode(code string) string {
	i := strings.LastIndexByte(code, '-')
	if i < 0 {
		return "****"
	}
	return code[:i+1] + "****"
}
