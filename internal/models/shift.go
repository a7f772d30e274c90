package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ShiftMorning = "Morning"
	ShiftEvening = "Evening"
	ShiftNight   = "Night"
)

func ValidShiftType(shiftType string) bool {
	switch shiftType {
	case ShiftMorning, ShiftEvening, ShiftNight:
		return true
	}
	return false
}

// ShiftAssignment binds a staff member to one dated work window; the
// composite unique index allows a single assignment per staff per day.
type ShiftAssignment struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	StaffID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_shift_staff_day" json:"staffId"`
	ShiftDate  time.Time `gorm:"not null;uniqueIndex:idx_shift_staff_day" json:"shiftDate"`
	ShiftType  string    `gorm:"size:20;not null" json:"shiftType"`
	StartTime  string    `gorm:"size:5;not null" json:"startTime"`
	EndTime    string    `gorm:"size:5;not null" json:"endTime"`
	Notes      string    `gorm:"size:500" json:"notes"`
	IsLeaveDay bool      `json:"isLeaveDay"`
	AssignedBy string    `gorm:"size:255" json:"assignedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (s *ShiftAssignment) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
