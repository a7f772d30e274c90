package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hsms-backend/internal/models"
)

type StaffingHandler struct {
	DB *gorm.DB
}

func NewStaffingHandler(db *gorm.DB) *StaffingHandler {
	return &StaffingHandler{DB: db}
}

type ShiftShortage struct {
	Role     string `json:"role"`
	Required int    `json:"required"`
	Current  int    `json:"current"`
	Needed   int    `json:"needed"`
}

type ShiftStatus struct {
	IsFullyStaffed bool            `json:"isFullyStaffed"`
	StaffCount     map[string]int  `json:"staffCount"`
	Requirements   map[string]int  `json:"requirements"`
	Shortages      []ShiftShortage `json:"shortages"`
	MissingStaff   map[string]int  `json:"missingStaff"`
	Message        string          `json:"message"`
}

const (
	messageFullyStaffed = "Fully staffed"
	messageShortStaffed = "Short staffed"
)

// quotaRoles fixes the evaluation order of the requirement table.
var quotaRoles = []string{models.RoleDoctor, models.RoleNurse, models.RoleTechnician}

func shiftRequirements() map[string]int {
	return map[string]int{
		models.RoleDoctor:     1,
		models.RoleNurse:      2,
		models.RoleTechnician: 1,
	}
}

// EvaluateStaffing groups staff by shift label and checks each group against
// the fixed role quotas. Shortages and MissingStaff stay nil for a fully
// staffed shift so callers can tell "no shortage" from "shortage of zero".
func EvaluateStaffing(staff []models.Staff) map[string]ShiftStatus {
	grouped := make(map[string][]models.Staff)
	order := []string{}
	for _, member := range staff {
		if _, seen := grouped[member.Shift]; !seen {
			order = append(order, member.Shift)
		}
		grouped[member.Shift] = append(grouped[member.Shift], member)
	}

	requirements := shiftRequirements()
	result := make(map[string]ShiftStatus, len(order))
	for _, shift := range order {
		counts := map[string]int{
			models.RoleDoctor:     0,
			models.RoleNurse:      0,
			models.RoleTechnician: 0,
		}
		for _, member := range grouped[shift] {
			role := models.QuotaRole(member.Role)
			if _, tracked := counts[role]; tracked {
				counts[role]++
			}
		}

		var shortages []ShiftShortage
		var missing map[string]int
		for _, role := range quotaRoles {
			required := requirements[role]
			if counts[role] >= required {
				continue
			}
			if missing == nil {
				missing = make(map[string]int)
			}
			needed := required - counts[role]
			shortages = append(shortages, ShiftShortage{
				Role:     role,
				Required: required,
				Current:  counts[role],
				Needed:   needed,
			})
			missing[role] = needed
		}

		status := ShiftStatus{
			IsFullyStaffed: shortages == nil,
			StaffCount:     counts,
			Requirements:   shiftRequirements(),
			Shortages:      shortages,
			MissingStaff:   missing,
			Message:        messageShortStaffed,
		}
		if status.IsFullyStaffed {
			status.Message = messageFullyStaffed
		}
		result[shift] = status
	}

	return result
}

func (h *StaffingHandler) Status(c *gin.Context) {
	var staff []models.Staff
	if err := h.DB.Order("created_at asc").Find(&staff).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load staff"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shifts": EvaluateStaffing(staff)})
}
