package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LeavePending   = "Pending"
	LeaveApproved  = "Approved"
	LeaveRejected  = "Rejected"
	LeaveCancelled = "Cancelled"
)

func ValidLeaveType(leaveType string) bool {
	switch leaveType {
	case "Sick", "Casual", "Annual", "Emergency", "Unpaid":
		return true
	}
	return false
}

type LeaveRequest struct {
	ID              uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	StaffID         uuid.UUID  `gorm:"type:char(36);index;not null" json:"staffId"`
	Type            string     `gorm:"size:30;not null" json:"type"`
	StartDate       time.Time  `gorm:"index;not null" json:"startDate"`
	EndDate         time.Time  `gorm:"index;not null" json:"endDate"`
	NumberOfDays    int        `gorm:"not null" json:"numberOfDays"`
	Reason          string     `gorm:"size:500" json:"reason"`
	Status          string     `gorm:"size:20;index;not null" json:"status"`
	ApprovedBy      string     `gorm:"size:255" json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	ApprovalRemarks string     `gorm:"size:200" json:"approvalRemarks,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (r *LeaveRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
