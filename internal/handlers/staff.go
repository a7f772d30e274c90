package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"hsms-backend/internal/lock"
	"hsms-backend/internal/models"
)

type StaffHandler struct {
	DB     *gorm.DB
	Locker lock.Locker
}

type createStaffRequest struct {
	Name  string `json:"name" binding:"required"`
	Role  string `json:"role" binding:"required"`
	Shift string `json:"shift"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type updateStaffRequest struct {
	Name  *string `json:"name"`
	Role  *string `json:"role"`
	Shift *string `json:"shift"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

func NewStaffHandler(db *gorm.DB, locker lock.Locker) *StaffHandler {
	return &StaffHandler{DB: db, Locker: locker}
}

func staffCodePrefix(role string) string {
	switch models.QuotaRole(role) {
	case models.RoleDoctor:
		return "D"
	case models.RoleNurse:
		return "N"
	case models.RoleTechnician:
		return "T"
	}
	trimmed := strings.TrimSpace(role)
	if trimmed == "" {
		return "S"
	}
	return string(unicode.ToUpper([]rune(trimmed)[0]))
}

// nextStaffCode scans existing codes for the prefix and returns the next
// one, zero-padded to three digits. The counter simply keeps growing past
// 999.
func nextStaffCode(db *gorm.DB, prefix string) (string, error) {
	var codes []string
	if err := db.Model(&models.Staff{}).
		Where("staff_code LIKE ?", prefix+"%").
		Pluck("staff_code", &codes).Error; err != nil {
		return "", err
	}

	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `(\d+)$`)
	highest := 0
	for _, code := range codes {
		match := pattern.FindStringSubmatch(code)
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}

	return fmt.Sprintf("%s%03d", prefix, highest+1), nil
}

func (h *StaffHandler) List(c *gin.Context) {
	query := h.DB.Order("created_at asc")
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if shift := c.Query("shift"); shift != "" {
		query = query.Where("shift = ?", shift)
	}

	var staff []models.Staff
	if err := query.Find(&staff).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load staff"})
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (h *StaffHandler) Get(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var staff models.Staff
	if err := h.DB.First(&staff, "id = ?", staffID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "staff not found"})
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (h *StaffHandler) Create(c *gin.Context) {
	var req createStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	prefix := staffCodePrefix(req.Role)
	ctx := c.Request.Context()
	lockAcquired := false
	for attempt := 0; attempt < 20; attempt++ {
		ok, err := h.Locker.Lock(ctx, "staffcode:"+prefix, 5*time.Second)
		if err != nil {
			break
		}
		if ok {
			lockAcquired = true
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if lockAcquired {
		defer func() { _ = h.Locker.Unlock(ctx, "staffcode:"+prefix) }()
	}

	staff := models.Staff{
		Name:  strings.TrimSpace(req.Name),
		Role:  strings.TrimSpace(req.Role),
		Shift: strings.TrimSpace(req.Shift),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Phone: strings.TrimSpace(req.Phone),
	}

	// The unique index on staff_code is the backstop when two creates for
	// the same prefix race past the lock.
	for attempt := 0; attempt < 3; attempt++ {
		code, err := nextStaffCode(h.DB, prefix)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
			return
		}
		staff.ID = uuid.Nil
		staff.StaffCode = code

		err = h.DB.Create(&staff).Error
		if err == nil {
			c.JSON(http.StatusCreated, staff)
			return
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
			return
		}
	}

	c.JSON(http.StatusConflict, gin.H{"error": "staff code allocation conflict, retry"})
}

func (h *StaffHandler) Update(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	var staff models.Staff
	if err := h.DB.First(&staff, "id = ?", staffID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "staff not found"})
		return
	}

	previousShift := staff.Shift
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		staff.Name = name
	}
	if req.Role != nil {
		role := strings.TrimSpace(*req.Role)
		if role == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role cannot be empty"})
			return
		}
		staff.Role = role
	}
	if req.Shift != nil {
		staff.Shift = strings.TrimSpace(*req.Shift)
	}
	if req.Email != nil {
		staff.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		staff.Phone = strings.TrimSpace(*req.Phone)
	}

	// StaffCode is assigned once at creation and never regenerated.
	if err := h.DB.Save(&staff).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	if staff.Shift != previousShift {
		today := startOfDay(time.Now())
		if err := h.DB.Model(&models.Attendance{}).
			Where("staff_id = ? AND date >= ?", staff.ID, today).
			Update("shift", staff.Shift).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "shift cascade failed"})
			return
		}
	}

	c.JSON(http.StatusOK, staff)
}

func (h *StaffHandler) Delete(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var staff models.Staff
	if err := h.DB.First(&staff, "id = ?", staffID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "staff not found"})
		return
	}

	if err := h.DB.Delete(&models.Staff{}, "id = ?", staffID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
