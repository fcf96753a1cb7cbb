package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Culina/Authorization"
	"Culina/Models"
	"Culina/middleware"
)

type RecipeController struct {
	DB *gorm.DB
}

func NewRecipeController(db *gorm.DB) *RecipeController {
	return &RecipeController{DB: db}
}

func (ctl *RecipeController) GetRecipes(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var recipes []Models.Recipe
	q := Authorization.ScopeByDepartmentColumn(ctl.DB.Model(&Models.Recipe{}), user)
	if err := q.Find(&recipes).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve recipes"})
	}
	return ctx.JSON(recipes)
}

func (ctl *RecipeController) GetRecipe(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid recipe ID"})
	}

	var recipe Models.Recipe
	if err := ctl.DB.First(&recipe, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}
	if v := Authorization.Can(user, Authorization.ActionRead, &recipe); !v.Allowed {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}
	return ctx.JSON(recipe)
}

type RecipeRequest struct {
	Name         string  `json:"name" validate:"required,max=255"`
	DepartmentID uint    `json:"department_id" validate:"required"`
	YieldQty     float64 `json:"yield_qty"`
	YieldUnit    string  `json:"yield_unit" validate:"max=32"`
	Instructions string  `json:"instructions"`
}

func (ctl *RecipeController) CreateRecipe(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var req RecipeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	recipe := Models.Recipe{
		Name:         req.Name,
		DepartmentID: req.DepartmentID,
		YieldQty:     req.YieldQty,
		YieldUnit:    req.YieldUnit,
		Instructions: req.Instructions,
		Active:       true,
	}
	if v := Authorization.Can(user, Authorization.ActionCreate, &recipe); !v.Allowed {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": v.Reason})
	}
	if err := ctl.DB.Create(&recipe).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create recipe"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(recipe)
}

func (ctl *RecipeController) UpdateRecipe(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid recipe ID"})
	}

	var recipe Models.Recipe
	if err := ctl.DB.First(&recipe, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}

	if v := Authorization.Can(user, Authorization.ActionUpdate, &recipe); !v.Allowed {
		status := fiber.StatusForbidden
		if v.Reason == Authorization.DenialNotFound {
			status = fiber.StatusNotFound
		}
		return ctx.Status(status).JSON(fiber.Map{"message": v.Reason})
	}

	var req RecipeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.YieldQty != 0 {
		updates["yield_qty"] = req.YieldQty
	}
	if req.YieldUnit != "" {
		updates["yield_unit"] = req.YieldUnit
	}
	if req.Instructions != "" {
		updates["instructions"] = req.Instructions
	}
	if err := ctl.DB.Model(&recipe).Updates(updates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update recipe"})
	}
	return ctx.JSON(recipe)
}

func (ctl *RecipeController) DeleteRecipe(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid recipe ID"})
	}

	var recipe Models.Recipe
	if err := ctl.DB.First(&recipe, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}

	if v := Authorization.Can(user, Authorization.ActionDelete, &recipe); !v.Allowed {
		status := fiber.StatusForbidden
		if v.Reason == Authorization.DenialNotFound {
			status = fiber.StatusNotFound
		}
		return ctx.Status(status).JSON(fiber.Map{"message": v.Reason})
	}

	ctl.DB.Select("ProductionTasks").Delete(&recipe)
	return ctx.JSON(fiber.Map{"message": "Recipe deleted successfully"})
}
