package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleDoctor        = "Doctor"
	RoleNurse         = "Nurse"
	RoleTechnician    = "Technician"
	RoleLabTechnician = "Lab Technician"
)

type Staff struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	StaffCode string    `gorm:"uniqueIndex;size:20;not null" json:"staffCode"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Role      string    `gorm:"size:50;not null" json:"role"`
	Shift     string    `gorm:"size:50" json:"shift"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:50" json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Staff) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// QuotaRole maps a stored role onto the canonical role used for staffing
// quotas. "Lab Technician" counts toward the Technician quota.
func QuotaRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "doctor":
		return RoleDoctor
	case "nurse":
		return RoleNurse
	case "technician", "lab technician":
		return RoleTechnician
	}
	return strings.TrimSpace(role)
}
