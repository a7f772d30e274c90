package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hsms-backend/internal/models"
)

type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db}
}

func (h *DashboardHandler) Get(c *gin.Context) {
	var staffCount int64
	_ = h.DB.Model(&models.Staff{}).Count(&staffCount).Error

	today := startOfDay(time.Now())

	var markedToday int64
	_ = h.DB.Model(&models.Attendance{}).Where("date = ?", today).Count(&markedToday).Error

	var pendingLeaves int64
	_ = h.DB.Model(&models.LeaveRequest{}).Where("status = ?", models.LeavePending).Count(&pendingLeaves).Error

	var todayShifts int64
	_ = h.DB.Model(&models.ShiftAssignment{}).Where("shift_date = ?", today).Count(&todayShifts).Error

	c.JSON(http.StatusOK, gin.H{
		"staff":           staffCount,
		"todayAttendance": markedToday,
		"pendingLeaves":   pendingLeaves,
		"todayShifts":     todayShifts,
	})
}
