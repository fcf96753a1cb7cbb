package Controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Culina/Authorization"
	"Culina/Models"
	"Culina/middleware"
)

// DepartmentController handles department endpoints. Departments themselves
// are administered by superusers; regular users only ever see their own.
type DepartmentController struct {
	DB *gorm.DB
}

func NewDepartmentController(db *gorm.DB) *DepartmentController {
	return &DepartmentController{DB: db}
}

func (ctl *DepartmentController) GetDepartments(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var departments []Models.Department
	q := ctl.DB.Model(&Models.Department{})
	if user == nil || !user.IsSuperuser {
		if user == nil || user.Profile == nil || user.Profile.DepartmentID == nil {
			return ctx.JSON([]Models.Department{})
		}
		q = q.Where("id = ?", *user.Profile.DepartmentID)
	}
	if err := q.Find(&departments).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve departments"})
	}
	return ctx.JSON(departments)
}

func (ctl *DepartmentController) GetDepartment(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid department ID"})
	}

	var department Models.Department
	if err := ctl.DB.First(&department, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}

	if v := Authorization.Can(user, Authorization.ActionRead, &department); !v.Allowed {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}
	return ctx.JSON(department)
}

type DepartmentRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

func (ctl *DepartmentController) CreateDepartment(ctx *fiber.Ctx) error {
	var req DepartmentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	department := Models.Department{Name: req.Name, Description: req.Description}
	if err := ctl.DB.Create(&department).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "unique constraint") {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "A department with this name already exists",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create department"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(department)
}

func (ctl *DepartmentController) UpdateDepartment(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid department ID"})
	}

	var department Models.Department
	if err := ctl.DB.First(&department, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}

	var req DepartmentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := ctl.DB.Model(&department).Updates(Models.Department{
		Name:        req.Name,
		Description: req.Description,
	}).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update department"})
	}
	return ctx.JSON(department)
}

// DeleteDepartment cascades to the department's cleaning items, recipes,
// thermometers and area units.
func (ctl *DepartmentController) DeleteDepartment(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid department ID"})
	}

	var department Models.Department
	if err := ctl.DB.First(&department, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}

	ctl.DB.Select("CleaningItems", "Recipes", "Thermometers", "AreaUnits").Delete(&department)
	return ctx.JSON(fiber.Map{"message": "Department deleted successfully"})
}

// Area units

type AreaUnitRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	DepartmentID uint   `json:"department_id" validate:"required"`
}

func (ctl *DepartmentController) GetAreaUnits(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var units []Models.AreaUnit
	q := Authorization.ScopeByDepartmentColumn(ctl.DB.Model(&Models.AreaUnit{}), user)
	if err := q.Find(&units).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve area units"})
	}
	return ctx.JSON(units)
}

func (ctl *DepartmentController) CreateAreaUnit(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var req AreaUnitRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	unit := Models.AreaUnit{Name: req.Name, DepartmentID: req.DepartmentID}
	if v := Authorization.Can(user, Authorization.ActionCreate, &unit); !v.Allowed {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": v.Reason})
	}
	if err := ctl.DB.Create(&unit).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create area unit"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(unit)
}
