package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AttendancePresent   = "Present"
	AttendanceAbsent    = "Absent"
	AttendanceLeave     = "Leave"
	AttendanceHalfDay   = "Half-Day"
	AttendanceNotMarked = "Not Marked"
)

func ValidAttendanceStatus(status string) bool {
	switch status {
	case AttendancePresent, AttendanceAbsent, AttendanceLeave, AttendanceHalfDay:
		return true
	}
	return false
}

// Attendance holds at most one record per (staff, calendar day, shift);
// the composite unique index is the natural key.
type Attendance struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	StaffID   uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_attendance_key" json:"staffId"`
	Date      time.Time `gorm:"not null;uniqueIndex:idx_attendance_key" json:"date"`
	Shift     string    `gorm:"size:50;not null;uniqueIndex:idx_attendance_key" json:"shift"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	Remarks   string    `gorm:"size:200" json:"remarks"`
	MarkedBy  string    `gorm:"size:255" json:"markedBy"`
	MarkedAt  time.Time `json:"markedAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
