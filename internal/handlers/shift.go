package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"hsms-backend/internal/middleware"
	"hsms-backend/internal/models"
)

type ShiftHandler struct {
	DB *gorm.DB
}

type addShiftRequest struct {
	StaffID   string `json:"staffId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	ShiftType string `json:"shiftType" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	Notes     string `json:"notes"`
}

type updateShiftRequest struct {
	ShiftType *string `json:"shiftType"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Notes     *string `json:"notes"`
}

var shiftTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func NewShiftHandler(db *gorm.DB) *ShiftHandler {
	return &ShiftHandler{DB: db}
}

func minutesOfDay(value string) int {
	hours, _ := strconv.Atoi(value[:2])
	minutes, _ := strconv.Atoi(value[3:])
	return hours*60 + minutes
}

func (h *ShiftHandler) Add(c *gin.Context) {
	var req addShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
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

	if !models.ValidShiftType(req.ShiftType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shift type"})
		return
	}
	if !shiftTimePattern.MatchString(req.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startTime must be HH:mm"})
		return
	}
	if !shiftTimePattern.MatchString(req.EndTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endTime must be HH:mm"})
		return
	}
	// Overnight windows are not supported; the shift must fit one day.
	if minutesOfDay(req.StartTime) >= minutesOfDay(req.EndTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startTime must precede endTime"})
		return
	}
	if len(req.Notes) > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "notes too long"})
		return
	}

	day, err := parseDay(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	var onLeave int64
	if err := h.DB.Model(&models.LeaveRequest{}).
		Where("staff_id = ? AND status = ? AND start_date <= ? AND end_date >= ?",
			staffID, models.LeaveApproved, day, day).
		Count(&onLeave).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "leave check failed"})
		return
	}

	var existing models.ShiftAssignment
	if err := h.DB.Where("staff_id = ? AND shift_date = ?", staffID, day).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "shift already assigned for this date"})
		return
	} else if err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	shift := models.ShiftAssignment{
		StaffID:    staffID,
		ShiftDate:  day,
		ShiftType:  req.ShiftType,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Notes:      req.Notes,
		IsLeaveDay: onLeave > 0,
		AssignedBy: middleware.ActorName(c),
	}

	if err := h.DB.Create(&shift).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "shift already assigned for this date"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, shift)
}

func (h *ShiftHandler) Update(c *gin.Context) {
	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	var shift models.ShiftAssignment
	if err := h.DB.First(&shift, "id = ?", shiftID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "shift not found"})
		return
	}

	if req.ShiftType != nil {
		if !models.ValidShiftType(*req.ShiftType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shift type"})
			return
		}
		shift.ShiftType = *req.ShiftType
	}
	timesChanged := false
	if req.StartTime != nil {
		if !shiftTimePattern.MatchString(*req.StartTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "startTime must be HH:mm"})
			return
		}
		shift.StartTime = *req.StartTime
		timesChanged = true
	}
	if req.EndTime != nil {
		if !shiftTimePattern.MatchString(*req.EndTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "endTime must be HH:mm"})
			return
		}
		shift.EndTime = *req.EndTime
		timesChanged = true
	}
	if timesChanged && minutesOfDay(shift.StartTime) >= minutesOfDay(shift.EndTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startTime must precede endTime"})
		return
	}
	if req.Notes != nil {
		if len(*req.Notes) > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "notes too long"})
			return
		}
		shift.Notes = *req.Notes
	}

	if err := h.DB.Save(&shift).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	c.JSON(http.StatusOK, shift)
}

func (h *ShiftHandler) Delete(c *gin.Context) {
	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var shift models.ShiftAssignment
	if err := h.DB.First(&shift, "id = ?", shiftID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "shift not found"})
		return
	}

	if shift.ShiftDate.Before(startOfDay(time.Now())) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "past shifts cannot be deleted"})
		return
	}

	if err := h.DB.Delete(&models.ShiftAssignment{}, "id = ?", shiftID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *ShiftHandler) List(c *gin.Context) {
	query := h.DB.Model(&models.ShiftAssignment{})

	if staffID := c.Query("staffId"); staffID != "" {
		id, err := uuid.Parse(staffID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid staffId"})
			return
		}
		query = query.Where("staff_id = ?", id)
	}
	if shiftType := c.Query("shiftType"); shiftType != "" {
		query = query.Where("shift_type = ?", shiftType)
	}

	query, err := applyMonthFilter(query, "shift_date", c.Query("month"), c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var shifts []models.ShiftAssignment
	if err := query.Order("shift_date asc").Find(&shifts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load shifts"})
		return
	}
	c.JSON(http.StatusOK, shifts)
}

type scheduleEntry struct {
	ShiftID    uuid.UUID `json:"shiftId"`
	StaffID    uuid.UUID `json:"staffId"`
	StaffCode  string    `json:"staffCode"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	StartTime  string    `json:"startTime"`
	EndTime    string    `json:"endTime"`
	IsLeaveDay bool      `json:"isLeaveDay"`
}

// Schedule returns one day's assignments grouped by shift type.
func (h *ShiftHandler) Schedule(c *gin.Context) {
	day, err := parseDay(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	var shifts []models.ShiftAssignment
	if err := h.DB.Where("shift_date = ?", day).Order("start_time asc").Find(&shifts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load shifts"})
		return
	}

	staffByID := map[uuid.UUID]models.Staff{}
	if len(shifts) > 0 {
		ids := make([]uuid.UUID, 0, len(shifts))
		for _, shift := range shifts {
			ids = append(ids, shift.StaffID)
		}
		var staff []models.Staff
		if err := h.DB.Where("id IN ?", ids).Find(&staff).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load staff"})
			return
		}
		for _, member := range staff {
			staffByID[member.ID] = member
		}
	}

	schedule := map[string][]scheduleEntry{
		models.ShiftMorning: {},
		models.ShiftEvening: {},
		models.ShiftNight:   {},
	}
	for _, shift := range shifts {
		member := staffByID[shift.StaffID]
		schedule[shift.ShiftType] = append(schedule[shift.ShiftType], scheduleEntry{
			ShiftID:    shift.ID,
			StaffID:    shift.StaffID,
			StaffCode:  member.StaffCode,
			Name:       member.Name,
			Role:       member.Role,
			StartTime:  shift.StartTime,
			EndTime:    shift.EndTime,
			IsLeaveDay: shift.IsLeaveDay,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"date":     day.Format("2006-01-02"),
		"schedule": schedule,
	})
}

func (h *ShiftHandler) Stats(c *gin.Context) {
	base := h.DB.Model(&models.ShiftAssignment{})

	if staffID := c.Query("staffId"); staffID != "" {
		id, err := uuid.Parse(staffID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid staffId"})
			return
		}
		base = base.Where("staff_id = ?", id)
	}
	if shiftType := c.Query("shiftType"); shiftType != "" {
		base = base.Where("shift_type = ?", shiftType)
	}

	base, err := applyMonthFilter(base, "shift_date", c.Query("month"), c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	byType := gin.H{}
	for _, shiftType := range []string{models.ShiftMorning, models.ShiftEvening, models.ShiftNight} {
		var count int64
		if err := base.Session(&gorm.Session{}).Where("shift_type = ?", shiftType).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
			return
		}
		byType[strings.ToLower(shiftType)] = count
	}

	var leaveDays int64
	if err := base.Session(&gorm.Session{}).Where("is_leave_day = ?", true).Count(&leaveDays).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"byType":    byType,
		"leaveDays": leaveDays,
	})
}
