package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hsms-backend/internal/models"
)

func staffWith(shift string, roles ...string) []models.Staff {
	staff := make([]models.Staff, 0, len(roles))
	for _, role := range roles {
		staff = append(staff, models.Staff{
			Name:  "Member",
			Role:  role,
			Shift: shift,
		})
	}
	return staff
}

func TestEvaluateStaffingFullyStaffed(t *testing.T) {
	result := EvaluateStaffing(staffWith("Morning",
		models.RoleDoctor, models.RoleNurse, models.RoleNurse, models.RoleTechnician))

	require.Contains(t, result, "Morning")
	status := result["Morning"]
	assert.True(t, status.IsFullyStaffed)
	assert.Equal(t, "Fully staffed", status.Message)
	assert.Nil(t, status.Shortages)
	assert.Nil(t, status.MissingStaff)
	assert.Equal(t, map[string]int{
		models.RoleDoctor:     1,
		models.RoleNurse:      2,
		models.RoleTechnician: 1,
	}, status.StaffCount)
}

func TestEvaluateStaffingShortStaffed(t *testing.T) {
	result := EvaluateStaffing(staffWith("Night",
		models.RoleNurse, models.RoleTechnician))

	status := result["Night"]
	assert.False(t, status.IsFullyStaffed)
	assert.Equal(t, "Short staffed", status.Message)
	require.Len(t, status.Shortages, 2)
	assert.Equal(t, ShiftShortage{Role: models.RoleDoctor, Required: 1, Current: 0, Needed: 1}, status.Shortages[0])
	assert.Equal(t, ShiftShortage{Role: models.RoleNurse, Required: 2, Current: 1, Needed: 1}, status.Shortages[1])
	assert.Equal(t, map[string]int{models.RoleDoctor: 1, models.RoleNurse: 1}, status.MissingStaff)
}

func TestEvaluateStaffingLabTechnicianCountsAsTechnician(t *testing.T) {
	result := EvaluateStaffing(staffWith("Evening",
		models.RoleDoctor, models.RoleNurse, models.RoleNurse, models.RoleLabTechnician))

	status := result["Evening"]
	assert.True(t, status.IsFullyStaffed)
	assert.Equal(t, 1, status.StaffCount[models.RoleTechnician])
}

func TestEvaluateStaffingUnrecognizedRolesDoNotFillQuotas(t *testing.T) {
	result := EvaluateStaffing(staffWith("Morning",
		"Receptionist", "Receptionist", "Receptionist", "Receptionist"))

	status := result["Morning"]
	assert.False(t, status.IsFullyStaffed)
	require.Len(t, status.Shortages, 3)
	assert.Equal(t, map[string]int{
		models.RoleDoctor:     1,
		models.RoleNurse:      2,
		models.RoleTechnician: 1,
	}, status.MissingStaff)
}

func TestEvaluateStaffingEmptyInput(t *testing.T) {
	result := EvaluateStaffing(nil)
	assert.Empty(t, result)
}

func TestEvaluateStaffingMultipleShifts(t *testing.T) {
	staff := append(
		staffWith("Morning", models.RoleDoctor, models.RoleNurse, models.RoleNurse, models.RoleTechnician),
		staffWith("Night", models.RoleDoctor)...,
	)

	result := EvaluateStaffing(staff)
	require.Len(t, result, 2)
	assert.True(t, result["Morning"].IsFullyStaffed)
	assert.False(t, result["Night"].IsFullyStaffed)
	assert.Equal(t, map[string]int{models.RoleNurse: 2, models.RoleTechnician: 1}, result["Night"].MissingStaff)
}
