package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"hsms-backend/internal/middleware"
	"hsms-backend/internal/models"
)

type LeaveHandler struct {
	DB *gorm.DB
}

type applyLeaveRequest struct {
	StaffID   string `json:"staffId" binding:"required"`
	Type      string `json:"type" binding:"required"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type reviewLeaveRequest struct {
	Remarks string `json:"remarks"`
}

func NewLeaveHandler(db *gorm.DB) *LeaveHandler {
	return &LeaveHandler{DB: db}
}

func (h *LeaveHandler) Apply(c *gin.Context) {
	var req applyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	if !models.ValidLeaveType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid leave type"})
		return
	}
	if len(req.Reason) > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason too long"})
		return
	}

	staffID, err := uuid.Parse(req.StaffID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid staffId"})
		return
	}
	var staff models.Staff
	if err := h.DB.First(&staff, "id = ?", staffID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "staff not found"})
		return
	}

	startDate, err := parseDay(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startDate"})
		return
	}
	endDate, err := parseDay(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endDate"})
		return
	}
	if endDate.Before(startDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate must not be after endDate"})
		return
	}
	if startDate.Before(startOfDay(time.Now())) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate cannot be in the past"})
		return
	}

	var overlap int64
	if err := h.DB.Model(&models.LeaveRequest{}).
		Where("staff_id = ? AND status IN ? AND start_date <= ? AND end_date >= ?",
			staffID, []string{models.LeavePending, models.LeaveApproved}, endDate, startDate).
		Count(&overlap).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "leave check failed"})
		return
	}
	if overlap > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "overlapping leave request exists"})
		return
	}

	request := models.LeaveRequest{
		StaffID:      staffID,
		Type:         req.Type,
		StartDate:    startDate,
		EndDate:      endDate,
		NumberOfDays: int(endDate.Sub(startDate).Hours()/24) + 1,
		Reason:       req.Reason,
		Status:       models.LeavePending,
	}

	if err := h.DB.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, request)
}

func (h *LeaveHandler) Approve(c *gin.Context) {
	h.review(c, models.LeaveApproved)
}

func (h *LeaveHandler) Reject(c *gin.Context) {
	h.review(c, models.LeaveRejected)
}

// review drives the Pending -> Approved/Rejected transition; anything not
// pending is refused with its current status in the message.
func (h *LeaveHandler) review(c *gin.Context, outcome string) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var request models.LeaveRequest
	if err := h.DB.First(&request, "id = ?", requestID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "leave request not found"})
		return
	}

	if request.Status != models.LeavePending {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "leave request is " + strings.ToLower(request.Status) + ", only pending requests can be reviewed",
		})
		return
	}

	var req reviewLeaveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
			return
		}
	}
	if len(req.Remarks) > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "remarks too long"})
		return
	}

	now := time.Now()
	request.Status = outcome
	request.ApprovedBy = middleware.ActorName(c)
	request.ApprovedAt = &now
	request.ApprovalRemarks = req.Remarks

	if err := h.DB.Save(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, request)
}

func (h *LeaveHandler) Cancel(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var request models.LeaveRequest
	if err := h.DB.First(&request, "id = ?", requestID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "leave request not found"})
		return
	}

	if request.Status == models.LeaveCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "leave request is already cancelled"})
		return
	}
	if request.StartDate.Before(startOfDay(time.Now())) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "leave has already started"})
		return
	}

	request.Status = models.LeaveCancelled
	if err := h.DB.Save(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, request)
}

func (h *LeaveHandler) List(c *gin.Context) {
	query := h.DB.Model(&models.LeaveRequest{})

	if staffID := c.Query("staffId"); staffID != "" {
		id, err := uuid.Parse(staffID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid staffId"})
			return
		}
		query = query.Where("staff_id = ?", id)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	query, err := applyMonthFilter(query, "start_date", c.Query("month"), c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var requests []models.LeaveRequest
	if err := query.Order("created_at desc").Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load leave requests"})
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *LeaveHandler) Stats(c *gin.Context) {
	base := h.DB.Model(&models.LeaveRequest{})

	if staffID := c.Query("staffId"); staffID != "" {
		id, err := uuid.Parse(staffID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid staffId"})
			return
		}
		base = base.Where("staff_id = ?", id)
	}

	base, err := applyMonthFilter(base, "start_date", c.Query("month"), c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	byStatus := gin.H{}
	for _, status := range []string{models.LeavePending, models.LeaveApproved, models.LeaveRejected, models.LeaveCancelled} {
		var count int64
		if err := base.Session(&gorm.Session{}).Where("status = ?", status).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
			return
		}
		byStatus[strings.ToLower(status)] = count
	}

	var approvedDays int64
	if err := base.Session(&gorm.Session{}).Where("status = ?", models.LeaveApproved).
		Select("COALESCE(SUM(number_of_days),0)").Scan(&approvedDays).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"byStatus":          byStatus,
		"totalApprovedDays": approvedDays,
	})
}
