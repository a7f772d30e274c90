package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hsms-backend/internal/models"
)

func newLeaveRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	database := newTestDB(t)
	handler := NewLeaveHandler(database)

	router := gin.New()
	router.Use(withActor("Dr. House", "manager"))
	router.GET("/leave/requests", handler.List)
	router.POST("/leave/requests", handler.Apply)
	router.PATCH("/leave/requests/:id/approve", handler.Approve)
	router.PATCH("/leave/requests/:id/reject", handler.Reject)
	router.PATCH("/leave/requests/:id/cancel", handler.Cancel)
	router.GET("/leave/stats", handler.Stats)
	return router, database
}

func applyLeave(t *testing.T, router *gin.Engine, staffID, start, end string) *models.LeaveRequest {
	t.Helper()

	recorder := performJSON(t, router, http.MethodPost, "/leave/requests", gin.H{
		"staffId":   staffID,
		"type":      "Casual",
		"startDate": start,
		"endDate":   end,
		"reason":    "family matters",
	})
	if recorder.Code != http.StatusCreated {
		return nil
	}
	var request models.LeaveRequest
	decodeBody(t, recorder, &request)
	return &request
}

func TestApplyLeaveInclusiveDayCount(t *testing.T) {
	router, database := newLeaveRouter(t)
	staff := createStaff(t, database, "N001", "Nurse Joy", models.RoleNurse, "Morning")

	request := applyLeave(t, router, staff.ID.String(), futureDate(10), futureDate(12))
	require.NotNil(t, request)
	assert.Equal(t, 3, request.NumberOfDays)
	assert.Equal(t, models.LeavePending, request.Status)
}

func TestApplyLeaveOverlapRejected(t *testing.T) {
	router, database := newLeaveRouter(t)
	staff := createStaff(t, database, "N001", "Nurse Joy", models.RoleNurse, "Morning")

	require.NotNil(t, applyLeave(t, router, staff.ID.String(), futureDate(30), futureDate(35)))

	recorder := performJSON(t, router, http.MethodPost, "/leave/requests", gin.H{
		"staffId":   staff.ID.String(),
		"type":      "Sick",
		"startDate": futureDate(34),
		"endDate":   futureDate(40),
		"reason":    "checkup",
	})
	assert.Equal(t, http.StatusConflict, recorder.Code)

	// A range starting right after the first one is fine.
	require.NotNil(t, applyLeave(t, router, staff.ID.String(), futureDate(36), futureDate(40)))
}

func TestApplyLeaveCancelledRequestsDoNotBlock(t *testing.T) {
	router, database := newLeaveRouter(t)
	staff := createStaff(t, database, "N001", "Nurse Joy", models.RoleNurse, "Morning")

	first := applyLeave(t, router, staff.ID.String(), futureDate(30), futureDate(35))
	require.NotNil(t, first)

	recorder := performJSON(t, router, http.MethodPatch, "/leave/requests/"+first.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	require.NotNil(t, applyLeave(t, router, staff.ID.String(), futureDate(32), futureDate(34)))
}

func TestApplyLeaveValidation(t *testing.T) {
	router, database := newLeaveRouter(t)
	staff := createStaff(t, database, "N001", "Nurse Joy", models.RoleNurse, "Morning")

	cases := []struct {
		name string
		body gin.H
		code int
	}{
		{"missing fields", gin.H{"staffId": staff.ID.String()}, http.StatusBadRequest},
		{"unknown staff", gin.H{
			"staffId": "6a6e2b51-9a2f-4a87-bd3e-0a3f9a3a1e11", "type": "Casual",
			"startDate": futureDate(5), "endDate": futureDate(6), "reason": "r",
		}, http.StatusNotFound},
		{"start after end", gin.H{
			"staffId": staff.ID.String(), "type": "Casual",
			"startDate": futureDate(6), "endDate": futureDate(5), "reason": "r",
		}, http.StatusBadRequest},
		{"past start", gin.H{
			"staffId": staff.ID.String(), "type": "Casual",
			"startDate": futureDate(-2), "endDate": futureDate(5), "reason": "r",
		}, http.StatusBadRequest},
		{"bad type", gin.H{
			"staffId": staff.ID.String(), "type": "Sabbatical",
			"startDate": futureDate(5), "endDate": futureDate(6), "reason": "r",
		}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := performJSON(t, router, http.MethodPost, "/leave/requests", tc.body)
			assert.Equal(t, tc.code, recorder.Code)
		})
	}
}

func TestApproveRecordsApprover(t *testing.T) {
	router, database := newLeaveRouter(t)
	staff := createStaff(t, database, "N001", "Nurse Joy", models.RoleNurse, "Morning")

	request := applyLeave(t, router, staff.ID.String(), futureDate(10), futureDate(12))
	require.NotNil(t, request)

	recorder := performJSON(t, router, http.MethodPatch, "/leave/requests/"+request.ID.String()+"/approve", gin.H{"remarks": "enjoy"})
	require.Equal(t, http.StatusOK, recorder.Code)

	var approved models.LeaveRequest
	decodeBody(t, recorder, &approved)
	assert.Equal(t, models.LeaveApproved, approved.Status)
	assert.Equal(t, "Dr. House", approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, "enjoy", approved.ApprovalRemarks)
}

func TestReviewRequiresPendingStatus(t *testing.T) {
	router, database := newLeaveRouter(t)
	staff := createStaff(t, database, "N001", "Nurse Joy", models.RoleNurse, "Morning")

	request := applyLeave(t, router, staff.ID.String(), futureDate(10), futureDate(12))
	require.NotNil(t, request)

	recorder := performJSON(t, router, http.MethodPatch, "/leave/requests/"+request.ID.String()+"/approve", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performJSON(t, router, http.MethodPatch, "/leave/requests/"+request.ID.String()+"/reject", nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "approved")
}

func TestCancelRules(t *testing.T) {
	router, database := newLeaveRouter(t)
	staff := createStaff(t, database, "N001", "Nurse Joy", models.RoleNurse, "Morning")

	request := applyLeave(t, router, staff.ID.String(), futureDate(10), futureDate(12))
	require.NotNil(t, request)

	recorder := performJSON(t, router, http.MethodPatch, "/leave/requests/"+request.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performJSON(t, router, http.MethodPatch, "/leave/requests/"+request.ID.String()+"/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	started := models.LeaveRequest{
		StaffID:      staff.ID,
		Type:         "Sick",
		StartDate:    startOfDay(time.Now()).AddDate(0, 0, -3),
		EndDate:      startOfDay(time.Now()).AddDate(0, 0, 3),
		NumberOfDays: 7,
		Reason:       "flu",
		Status:       models.LeaveApproved,
	}
	require.NoError(t, database.Create(&started).Error)

	recorder = performJSON(t, router, http.MethodPatch, "/leave/requests/"+started.ID.String()+"/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "already started")
}

func TestLeaveStats(t *testing.T) {
	router, database := newLeaveRouter(t)
	staff := createStaff(t, database, "N001", "Nurse Joy", models.RoleNurse, "Morning")

	first := applyLeave(t, router, staff.ID.String(), futureDate(10), futureDate(12))
	require.NotNil(t, first)
	second := applyLeave(t, router, staff.ID.String(), futureDate(20), futureDate(21))
	require.NotNil(t, second)

	recorder := performJSON(t, router, http.MethodPatch, "/leave/requests/"+first.ID.String()+"/approve", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performJSON(t, router, http.MethodGet, "/leave/stats?staffId="+staff.ID.String(), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		ByStatus          map[string]int64 `json:"byStatus"`
		TotalApprovedDays int64            `json:"totalApprovedDays"`
	}
	decodeBody(t, recorder, &response)
	assert.Equal(t, int64(1), response.ByStatus["approved"])
	assert.Equal(t, int64(1), response.ByStatus["pending"])
	assert.Equal(t, int64(3), response.TotalApprovedDays)
}
