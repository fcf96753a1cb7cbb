package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Culina/Authorization"
	"Culina/Models"
	"Culina/middleware"
)

// CleaningItemController handles the recurring cleaning duties of a
// department.
type CleaningItemController struct {
	DB *gorm.DB
}

func NewCleaningItemController(db *gorm.DB) *CleaningItemController {
	return &CleaningItemController{DB: db}
}

func (ctl *CleaningItemController) GetCleaningItems(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var items []Models.CleaningItem
	q := Authorization.ScopeByDepartmentColumn(ctl.DB.Model(&Models.CleaningItem{}), user)
	if err := q.Preload("AreaUnit").Find(&items).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve cleaning items"})
	}
	return ctx.JSON(items)
}

func (ctl *CleaningItemController) GetCleaningItem(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid cleaning item ID"})
	}

	var item Models.CleaningItem
	if err := ctl.DB.Preload("AreaUnit").First(&item, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}
	if v := Authorization.Can(user, Authorization.ActionRead, &item); !v.Allowed {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}
	return ctx.JSON(item)
}

type CleaningItemRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Description  string `json:"description"`
	DepartmentID uint   `json:"department_id" validate:"required"`
	AreaUnitID   *uint  `json:"area_unit_id"`
	Frequency    string `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	Active       *bool  `json:"active"`
}

func (ctl *CleaningItemController) CreateCleaningItem(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var req CleaningItemRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	item := Models.CleaningItem{
		Name:         req.Name,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
		AreaUnitID:   req.AreaUnitID,
		Frequency:    req.Frequency,
		Active:       true,
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	if v := Authorization.Can(user, Authorization.ActionCreate, &item); !v.Allowed {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": v.Reason})
	}
	if err := ctl.DB.Create(&item).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create cleaning item"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(item)
}

// CleaningItemUpdateRequest is the partial-update shape: every field optional,
// but anything present still has to pass the same constraints as on create.
type CleaningItemUpdateRequest struct {
	Name        string `json:"name" validate:"omitempty,max=255"`
	Description string `json:"description"`
	AreaUnitID  *uint  `json:"area_unit_id"`
	Frequency   string `json:"frequency" validate:"omitempty,oneof=daily weekly monthly"`
	Active      *bool  `json:"active"`
}

func (ctl *CleaningItemController) UpdateCleaningItem(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid cleaning item ID"})
	}

	var item Models.CleaningItem
	if err := ctl.DB.First(&item, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}

	if v := Authorization.Can(user, Authorization.ActionUpdate, &item); !v.Allowed {
		status := fiber.StatusForbidden
		if v.Reason == Authorization.DenialNotFound {
			status = fiber.StatusNotFound
		}
		return ctx.Status(status).JSON(fiber.Map{"message": v.Reason})
	}

	var req CleaningItemUpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Frequency != "" {
		updates["frequency"] = req.Frequency
	}
	if req.AreaUnitID != nil {
		updates["area_unit_id"] = *req.AreaUnitID
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := ctl.DB.Model(&item).Updates(updates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update cleaning item"})
	}
	return ctx.JSON(item)
}

func (ctl *CleaningItemController) DeleteCleaningItem(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid cleaning item ID"})
	}

	var item Models.CleaningItem
	if err := ctl.DB.First(&item, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}

	if v := Authorization.Can(user, Authorization.ActionDelete, &item); !v.Allowed {
		status := fiber.StatusForbidden
		if v.Reason == Authorization.DenialNotFound {
			status = fiber.StatusNotFound
		}
		return ctx.Status(status).JSON(fiber.Map{"message": v.Reason})
	}

	ctl.DB.Select("Instances").Delete(&item)
	return ctx.JSON(fiber.Map{"message": "Cleaning item deleted successfully"})
}
