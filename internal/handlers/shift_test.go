package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hsms-backend/internal/models"
)

func newShiftRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	database := newTestDB(t)
	handler := NewShiftHandler(database)

	router := gin.New()
	router.Use(withActor("Roster Admin", "admin"))
	router.GET("/shifts", handler.List)
	router.POST("/shifts", handler.Add)
	router.PUT("/shifts/:id", handler.Update)
	router.DELETE("/shifts/:id", handler.Delete)
	router.GET("/shifts/schedule", handler.Schedule)
	router.GET("/shifts/stats", handler.Stats)
	return router, database
}

func addShift(t *testing.T, router *gin.Engine, staffID, date, shiftType, start, end string) *httptest.ResponseRecorder {
	t.Helper()
	return performJSON(t, router, http.MethodPost, "/shifts", gin.H{
		"staffId":   staffID,
		"date":      date,
		"shiftType": shiftType,
		"startTime": start,
		"endTime":   end,
	})
}

func TestAddShift(t *testing.T) {
	router, database := newShiftRouter(t)
	staff := createStaff(t, database, "D001", "Dr. Ada", models.RoleDoctor, "Morning")

	recorder := addShift(t, router, staff.ID.String(), futureDate(3), models.ShiftMorning, "08:00", "16:00")
	require.Equal(t, http.StatusCreated, recorder.Code)

	var shift models.ShiftAssignment
	decodeBody(t, recorder, &shift)
	assert.Equal(t, models.ShiftMorning, shift.ShiftType)
	assert.Equal(t, "Roster Admin", shift.AssignedBy)
	assert.False(t, shift.IsLeaveDay)
}

func TestAddShiftDuplicateDayRejected(t *testing.T) {
	router, database := newShiftRouter(t)
	staff := createStaff(t, database, "D001", "Dr. Ada", models.RoleDoctor, "Morning")

	recorder := addShift(t, router, staff.ID.String(), futureDate(3), models.ShiftMorning, "08:00", "16:00")
	require.Equal(t, http.StatusCreated, recorder.Code)

	// A different shift type on the same day is still a duplicate.
	recorder = addShift(t, router, staff.ID.String(), futureDate(3), models.ShiftNight, "20:00", "23:00")
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestAddShiftTimeValidation(t *testing.T) {
	router, database := newShiftRouter(t)
	staff := createStaff(t, database, "D001", "Dr. Ada", models.RoleDoctor, "Morning")

	cases := []struct {
		name       string
		start, end string
	}{
		{"overnight not supported", "14:00", "06:00"},
		{"equal times", "09:00", "09:00"},
		{"missing leading zero", "8:00", "16:00"},
		{"out of range", "24:00", "25:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := addShift(t, router, staff.ID.String(), futureDate(3), models.ShiftMorning, tc.start, tc.end)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}

func TestAddShiftInvalidType(t *testing.T) {
	router, database := newShiftRouter(t)
	staff := createStaff(t, database, "D001", "Dr. Ada", models.RoleDoctor, "Morning")

	recorder := addShift(t, router, staff.ID.String(), futureDate(3), "Graveyard", "08:00", "16:00")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAddShiftUnknownStaff(t *testing.T) {
	router, _ := newShiftRouter(t)

	recorder := addShift(t, router, "6a6e2b51-9a2f-4a87-bd3e-0a3f9a3a1e11", futureDate(3), models.ShiftMorning, "08:00", "16:00")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAddShiftFlagsApprovedLeave(t *testing.T) {
	router, database := newShiftRouter(t)
	staff := createStaff(t, database, "N001", "Nurse Joy", models.RoleNurse, "Morning")

	day, err := parseDay(futureDate(5))
	require.NoError(t, err)
	leave := models.LeaveRequest{
		StaffID:      staff.ID,
		Type:         "Casual",
		StartDate:    day.AddDate(0, 0, -1),
		EndDate:      day.AddDate(0, 0, 1),
		NumberOfDays: 3,
		Reason:       "trip",
		Status:       models.LeaveApproved,
	}
	require.NoError(t, database.Create(&leave).Error)

	recorder := addShift(t, router, staff.ID.String(), futureDate(5), models.ShiftMorning, "08:00", "16:00")
	require.Equal(t, http.StatusCreated, recorder.Code)

	var shift models.ShiftAssignment
	decodeBody(t, recorder, &shift)
	assert.True(t, shift.IsLeaveDay)
}

func TestUpdateShiftRechecksTimeOrdering(t *testing.T) {
	router, database := newShiftRouter(t)
	staff := createStaff(t, database, "D001", "Dr. Ada", models.RoleDoctor, "Morning")

	recorder := addShift(t, router, staff.ID.String(), futureDate(3), models.ShiftMorning, "08:00", "16:00")
	require.Equal(t, http.StatusCreated, recorder.Code)
	var shift models.ShiftAssignment
	decodeBody(t, recorder, &shift)

	recorder = performJSON(t, router, http.MethodPut, "/shifts/"+shift.ID.String(), gin.H{"startTime": "17:00"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = performJSON(t, router, http.MethodPut, "/shifts/"+shift.ID.String(), gin.H{"notes": "cover for Lee"})
	require.Equal(t, http.StatusOK, recorder.Code)
	decodeBody(t, recorder, &shift)
	assert.Equal(t, "cover for Lee", shift.Notes)
}

func TestDeletePastShiftRejected(t *testing.T) {
	router, database := newShiftRouter(t)
	staff := createStaff(t, database, "D001", "Dr. Ada", models.RoleDoctor, "Morning")

	past := models.ShiftAssignment{
		StaffID:    staff.ID,
		ShiftDate:  startOfDay(time.Now()).AddDate(0, 0, -2),
		ShiftType:  models.ShiftMorning,
		StartTime:  "08:00",
		EndTime:    "16:00",
		AssignedBy: "x",
	}
	require.NoError(t, database.Create(&past).Error)

	recorder := performJSON(t, router, http.MethodDelete, "/shifts/"+past.ID.String(), nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = addShift(t, router, staff.ID.String(), futureDate(2), models.ShiftEvening, "14:00", "22:00")
	require.Equal(t, http.StatusCreated, recorder.Code)
	var upcoming models.ShiftAssignment
	decodeBody(t, recorder, &upcoming)

	recorder = performJSON(t, router, http.MethodDelete, "/shifts/"+upcoming.ID.String(), nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestDailySchedule(t *testing.T) {
	router, database := newShiftRouter(t)
	doctor := createStaff(t, database, "D001", "Dr. Ada", models.RoleDoctor, "Morning")
	nurse := createStaff(t, database, "N001", "Nurse Joy", models.RoleNurse, "Evening")

	date := futureDate(4)
	require.Equal(t, http.StatusCreated, addShift(t, router, doctor.ID.String(), date, models.ShiftMorning, "08:00", "16:00").Code)
	require.Equal(t, http.StatusCreated, addShift(t, router, nurse.ID.String(), date, models.ShiftEvening, "14:00", "22:00").Code)

	recorder := performJSON(t, router, http.MethodGet, "/shifts/schedule?date="+date, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Date     string                     `json:"date"`
		Schedule map[string][]scheduleEntry `json:"schedule"`
	}
	decodeBody(t, recorder, &response)
	assert.Equal(t, date, response.Date)
	require.Len(t, response.Schedule[models.ShiftMorning], 1)
	assert.Equal(t, "D001", response.Schedule[models.ShiftMorning][0].StaffCode)
	require.Len(t, response.Schedule[models.ShiftEvening], 1)
	assert.Empty(t, response.Schedule[models.ShiftNight])
}

func TestShiftStats(t *testing.T) {
	router, database := newShiftRouter(t)
	staff := createStaff(t, database, "D001", "Dr. Ada", models.RoleDoctor, "Morning")

	require.Equal(t, http.StatusCreated, addShift(t, router, staff.ID.String(), futureDate(3), models.ShiftMorning, "08:00", "16:00").Code)
	require.Equal(t, http.StatusCreated, addShift(t, router, staff.ID.String(), futureDate(4), models.ShiftNight, "22:00", "23:59").Code)

	recorder := performJSON(t, router, http.MethodGet, "/shifts/stats?staffId="+staff.ID.String(), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		ByType    map[string]int64 `json:"byType"`
		LeaveDays int64            `json:"leaveDays"`
	}
	decodeBody(t, recorder, &response)
	assert.Equal(t, int64(1), response.ByType["morning"])
	assert.Equal(t, int64(1), response.ByType["night"])
	assert.Equal(t, int64(0), response.LeaveDays)
}
