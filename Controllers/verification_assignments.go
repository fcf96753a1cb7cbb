package Controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Culina/Authorization"
	"Culina/Models"
	"Culina/middleware"
)

// VerificationAssignmentController manages which staff member holds
// thermometer verification duty per department.
type VerificationAssignmentController struct {
	DB *gorm.DB
}

func NewVerificationAssignmentController(db *gorm.DB) *VerificationAssignmentController {
	return &VerificationAssignmentController{DB: db}
}

func (ctl *VerificationAssignmentController) GetAssignments(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var assignments []Models.ThermometerVerificationAssignment
	q := Authorization.ScopeByDepartmentColumn(ctl.DB.Model(&Models.ThermometerVerificationAssignment{}), user)
	if ctx.Query("active") == "true" {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Preload("StaffMember").Order("assigned_date DESC").Find(&assignments).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve assignments"})
	}
	return ctx.JSON(assignments)
}

type AssignmentRequest struct {
	StaffMemberID uint   `json:"staff_member_id" validate:"required"`
	DepartmentID  uint   `json:"department_id" validate:"required"`
	AssignedDate  string `json:"assigned_date"`
}

// CreateAssignment activates a new duty holder. Activation atomically
// deactivates every other assignment in the department.
func (ctl *VerificationAssignmentController) CreateAssignment(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var req AssignmentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	assignment := Models.ThermometerVerificationAssignment{
		StaffMemberID: req.StaffMemberID,
		DepartmentID:  req.DepartmentID,
	}
	if req.AssignedDate != "" {
		date, err := time.Parse("2006-01-02", req.AssignedDate)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "assigned_date must be YYYY-MM-DD"})
		}
		assignment.AssignedDate = date
	}

	if v := Authorization.Can(user, Authorization.ActionCreate, &assignment); !v.Allowed {
		status := fiber.StatusForbidden
		if v.Reason == Authorization.DenialNotFound {
			status = fiber.StatusNotFound
		}
		return ctx.Status(status).JSON(fiber.Map{"message": v.Reason})
	}

	// The assignee must belong to the same department.
	var staff Models.Profile
	if err := ctl.DB.First(&staff, req.StaffMemberID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}
	if staff.DepartmentID == nil || *staff.DepartmentID != req.DepartmentID {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "The staff member does not belong to this department",
		})
	}

	if err := Models.ActivateAssignment(ctl.DB, &assignment); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to activate assignment"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(assignment)
}
