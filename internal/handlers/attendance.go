package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"hsms-backend/internal/middleware"
	"hsms-backend/internal/models"
)

type AttendanceHandler struct {
	DB *gorm.DB
}

const defaultLeaveRemarks = "On approved leave"

type markAttendanceRequest struct {
	StaffID string `json:"staffId" binding:"required"`
	Date    string `json:"date" binding:"required"`
	Shift   string `json:"shift" binding:"required"`
	Status  string `json:"status" binding:"required"`
	Remarks string `json:"remarks"`
}

type quickMarkRequest struct {
	Staff   string `json:"staff" binding:"required"`
	Date    string `json:"date"`
	Remarks string `json:"remarks"`
}

type bulkMarkRequest struct {
	Records []markAttendanceRequest `json:"records" binding:"required"`
}

func NewAttendanceHandler(db *gorm.DB) *AttendanceHandler {
	return &AttendanceHandler{DB: db}
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDay accepts a plain date or a full timestamp; either way the result
// is normalized to the start of its calendar day, which is the natural-key
// date component.
func parseDay(value string) (time.Time, error) {
	formats := []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}
	for _, format := range formats {
		parsed, err := time.Parse(format, value)
		if err == nil {
			return startOfDay(parsed), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format")
}

// resolveStaff tries the value as a primary id first, then as a staff code.
func (h *AttendanceHandler) resolveStaff(idOrCode string) (models.Staff, error) {
	var staff models.Staff
	if id, err := uuid.Parse(idOrCode); err == nil {
		if err := h.DB.First(&staff, "id = ?", id).Error; err == nil {
			return staff, nil
		} else if err != gorm.ErrRecordNotFound {
			return staff, err
		}
	}
	return staff, h.DB.First(&staff, "staff_code = ?", idOrCode).Error
}

// saveMark is the create-or-update core: one record per (staff, day, shift),
// later marks overwrite in place and refresh the marker identity. A
// duplicate-key error from a racing create is retried as an update.
func (h *AttendanceHandler) saveMark(staffID uuid.UUID, day time.Time, shift, status, remarks, markedBy string) (models.Attendance, bool, error) {
	var record models.Attendance
	err := h.DB.Where("staff_id = ? AND date = ? AND shift = ?", staffID, day, shift).First(&record).Error
	if err == nil {
		record.Status = status
		record.Remarks = remarks
		record.MarkedBy = markedBy
		record.MarkedAt = time.Now()
		return record, false, h.DB.Save(&record).Error
	}
	if err != gorm.ErrRecordNotFound {
		return record, false, err
	}

	record = models.Attendance{
		StaffID:  staffID,
		Date:     day,
		Shift:    shift,
		Status:   status,
		Remarks:  remarks,
		MarkedBy: markedBy,
		MarkedAt: time.Now(),
	}
	err = h.DB.Create(&record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		var existing models.Attendance
		if findErr := h.DB.Where("staff_id = ? AND date = ? AND shift = ?", staffID, day, shift).First(&existing).Error; findErr != nil {
			return record, false, findErr
		}
		existing.Status = status
		existing.Remarks = remarks
		existing.MarkedBy = markedBy
		existing.MarkedAt = time.Now()
		return existing, false, h.DB.Save(&existing).Error
	}
	return record, true, err
}

func (h *AttendanceHandler) markOne(req markAttendanceRequest, markedBy string) (models.Attendance, bool, int, string) {
	if !models.ValidAttendanceStatus(req.Status) {
		return models.Attendance{}, false, http.StatusBadRequest, "invalid status"
	}
	if len(req.Remarks) > 200 {
		return models.Attendance{}, false, http.StatusBadRequest, "remarks too long"
	}

	staffID, err := uuid.Parse(req.StaffID)
	if err != nil {
		return models.Attendance{}, false, http.StatusBadRequest, "invalid staffId"
	}
	var staff models.Staff
	if err := h.DB.First(&staff, "id = ?", staffID).Error; err != nil {
		return models.Attendance{}, false, http.StatusNotFound, "staff not found"
	}

	day, err := parseDay(req.Date)
	if err != nil {
		return models.Attendance{}, false, http.StatusBadRequest, "invalid date"
	}

	record, created, err := h.saveMark(staffID, day, req.Shift, req.Status, req.Remarks, markedBy)
	if err != nil {
		return models.Attendance{}, false, http.StatusInternalServerError, "could not save attendance"
	}
	return record, created, 0, ""
}

func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	record, created, status, message := h.markOne(req, middleware.ActorName(c))
	if message != "" {
		c.JSON(status, gin.H{"error": message})
		return
	}
	if created {
		c.JSON(http.StatusCreated, record)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *AttendanceHandler) QuickMark(c *gin.Context) {
	var req quickMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	staff, err := h.resolveStaff(req.Staff)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "staff not found"})
		return
	}
	if staff.Shift == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "staff has no assigned shift"})
		return
	}
	if len(req.Remarks) > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "remarks too long"})
		return
	}

	day := startOfDay(time.Now())
	if req.Date != "" {
		day, err = parseDay(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
	}

	record, created, err := h.saveMark(staff.ID, day, staff.Shift, models.AttendancePresent, req.Remarks, middleware.ActorName(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save attendance"})
		return
	}
	if created {
		c.JSON(http.StatusCreated, record)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *AttendanceHandler) MarkLeave(c *gin.Context) {
	var req quickMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	staff, err := h.resolveStaff(req.Staff)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "staff not found"})
		return
	}
	if staff.Shift == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "staff has no assigned shift"})
		return
	}

	day := startOfDay(time.Now())
	if req.Date != "" {
		day, err = parseDay(req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
	}

	remarks := req.Remarks
	if remarks == "" {
		remarks = defaultLeaveRemarks
	}
	if len(remarks) > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "remarks too long"})
		return
	}

	record, created, err := h.saveMark(staff.ID, day, staff.Shift, models.AttendanceLeave, remarks, middleware.ActorName(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save attendance"})
		return
	}
	if created {
		c.JSON(http.StatusCreated, record)
		return
	}
	c.JSON(http.StatusOK, record)
}

// BulkMark is best effort: each record goes through the single-mark path,
// failures are collected per item and never abort the batch.
func (h *AttendanceHandler) BulkMark(c *gin.Context) {
	var req bulkMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	actor := middleware.ActorName(c)
	results := []models.Attendance{}
	failures := []gin.H{}
	for _, item := range req.Records {
		record, _, _, message := h.markOne(item, actor)
		if message != "" {
			failures = append(failures, gin.H{"staffId": item.StaffID, "error": message})
			continue
		}
		results = append(results, record)
	}

	c.JSON(http.StatusOK, gin.H{
		"results":      results,
		"errors":       failures,
		"successCount": len(results),
		"errorCount":   len(failures),
	})
}

func (h *AttendanceHandler) List(c *gin.Context) {
	query := h.DB.Model(&models.Attendance{})

	if staffID := c.Query("staffId"); staffID != "" {
		id, err := uuid.Parse(staffID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid staffId"})
			return
		}
		query = query.Where("staff_id = ?", id)
	}
	if date := c.Query("date"); date != "" {
		day, err := parseDay(date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		query = query.Where("date = ?", day)
	}
	if shift := c.Query("shift"); shift != "" {
		query = query.Where("shift = ?", shift)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var records []models.Attendance
	if err := query.Order("date desc").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load attendance"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// WeeklySummary reports the last seven calendar days ending at endDate
// (today by default). The rate counts marked days only.
func (h *AttendanceHandler) WeeklySummary(c *gin.Context) {
	staffID, err := uuid.Parse(c.Query("staffId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid staffId"})
		return
	}
	var staff models.Staff
	if err := h.DB.First(&staff, "id = ?", staffID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "staff not found"})
		return
	}

	end := startOfDay(time.Now())
	if value := c.Query("endDate"); value != "" {
		end, err = parseDay(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endDate"})
			return
		}
	}
	start := end.AddDate(0, 0, -6)

	var records []models.Attendance
	if err := h.DB.Where("staff_id = ? AND date >= ? AND date <= ?", staffID, start, end).
		Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load attendance"})
		return
	}

	counts := map[string]int{}
	for _, record := range records {
		counts[record.Status]++
	}
	present := counts[models.AttendancePresent]
	marked := present + counts[models.AttendanceAbsent] + counts[models.AttendanceLeave] + counts[models.AttendanceHalfDay]

	rate := "0.0%"
	if marked > 0 {
		rate = fmt.Sprintf("%.1f%%", float64(present)*100/float64(marked))
	}

	notMarked := 7 - marked
	if notMarked < 0 {
		notMarked = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"staffId":        staffID,
		"staffCode":      staff.StaffCode,
		"startDate":      start.Format("2006-01-02"),
		"endDate":        end.Format("2006-01-02"),
		"present":        present,
		"absent":         counts[models.AttendanceAbsent],
		"leave":          counts[models.AttendanceLeave],
		"halfDay":        counts[models.AttendanceHalfDay],
		"notMarked":      notMarked,
		"attendanceRate": rate,
	})
}

// MonthlyReport streams the month's attendance as a spreadsheet.
func (h *AttendanceHandler) MonthlyReport(c *gin.Context) {
	month, err := parseMonth(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	year, err := parseYear(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var records []models.Attendance
	if err := h.DB.Where("date >= ? AND date < ?", start, end).
		Order("date asc").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load attendance"})
		return
	}

	staffByID := map[uuid.UUID]models.Staff{}
	if len(records) > 0 {
		ids := make([]uuid.UUID, 0, len(records))
		for _, record := range records {
			ids = append(ids, record.StaffID)
		}
		var staff []models.Staff
		if err := h.DB.Where("id IN ?", ids).Find(&staff).Error; err == nil {
			for _, member := range staff {
				staffByID[member.ID] = member
			}
		}
	}

	file := excelize.NewFile()
	sheet := "Attendance"
	file.SetSheetName("Sheet1", sheet)

	headers := []string{"Staff Code", "Name", "Date", "Shift", "Status", "Remarks", "Marked By"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = file.SetCellValue(sheet, cell, header)
	}
	for row, record := range records {
		member := staffByID[record.StaffID]
		values := []interface{}{
			member.StaffCode,
			member.Name,
			record.Date.Format("2006-01-02"),
			record.Shift,
			record.Status,
			record.Remarks,
			record.MarkedBy,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = file.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report generation failed"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="attendance-%04d-%02d.xlsx"`, year, month))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func parseMonth(value string) (int, error) {
	month, err := strconv.Atoi(value)
	if err != nil || month < 1 || month > 12 {
		return 0, fmt.Errorf("invalid month")
	}
	return month, nil
}

func parseYear(value string) (int, error) {
	parsed, err := time.Parse("2006", value)
	if err != nil {
		return 0, err
	}
	return parsed.Year(), nil
}
