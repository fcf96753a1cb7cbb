package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Culina/Authorization"
	"Culina/Models"
	"Culina/Workflow"
	"Culina/middleware"
)

// ProductionTaskController serves scheduled production runs and their status
// workflow.
type ProductionTaskController struct {
	DB *gorm.DB
}

func NewProductionTaskController(db *gorm.DB) *ProductionTaskController {
	return &ProductionTaskController{DB: db}
}

func (ctl *ProductionTaskController) GetProductionTasks(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var tasks []Models.RecipeProductionTask
	q := Authorization.ScopeByDepartmentColumn(ctl.DB.Model(&Models.RecipeProductionTask{}), user)
	if status := ctx.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Preload("Recipe").Preload("AssignedTo").Find(&tasks).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve production tasks"})
	}
	return ctx.JSON(tasks)
}

func (ctl *ProductionTaskController) GetProductionTask(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	task, errResp := ctl.loadVisible(ctx, user)
	if task == nil {
		return errResp
	}
	return ctx.JSON(task)
}

type ProductionTaskRequest struct {
	RecipeID     uint    `json:"recipe_id" validate:"required"`
	ScheduledFor string  `json:"scheduled_for" validate:"required"`
	Quantity     float64 `json:"quantity"`
	AssignedToID *uint   `json:"assigned_to_id"`
	Notes        string  `json:"notes"`
}

func (ctl *ProductionTaskController) CreateProductionTask(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var req ProductionTaskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	scheduledFor, err := time.Parse("2006-01-02", req.ScheduledFor)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "scheduled_for must be YYYY-MM-DD"})
	}

	var recipe Models.Recipe
	if err := ctl.DB.First(&recipe, req.RecipeID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}

	task := Models.RecipeProductionTask{
		RecipeID:     recipe.ID,
		DepartmentID: recipe.DepartmentID,
		ScheduledFor: scheduledFor,
		Quantity:     req.Quantity,
		Status:       Models.ProductionStatusScheduled,
		AssignedToID: req.AssignedToID,
		Notes:        req.Notes,
	}
	if v := Authorization.Can(user, Authorization.ActionCreate, &task); !v.Allowed {
		status := fiber.StatusForbidden
		if v.Reason == Authorization.DenialNotFound {
			status = fiber.StatusNotFound
		}
		return ctx.Status(status).JSON(fiber.Map{"message": v.Reason})
	}
	if err := ctl.DB.Create(&task).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create production task"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(task)
}

type ProductionTaskUpdateRequest struct {
	Status       string   `json:"status"`
	Quantity     *float64 `json:"quantity"`
	Notes        *string  `json:"notes"`
	AssignedToID *uint    `json:"assigned_to_id"`
}

func (ctl *ProductionTaskController) UpdateProductionTask(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	task, errResp := ctl.loadVisible(ctx, user)
	if task == nil {
		return errResp
	}

	var req ProductionTaskUpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	// Field edits are manager territory; staff only ever move status. Gated
	// before any write so a denied request changes nothing.
	updates := map[string]interface{}{}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.AssignedToID != nil {
		updates["assigned_to_id"] = *req.AssignedToID
	}
	if len(updates) > 0 {
		if v := Authorization.Can(user, Authorization.ActionUpdate, task); !v.Allowed {
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": v.Reason})
		}
	}

	if req.Status != "" {
		decision := Workflow.ValidateTransition(ctl.transitionRequest(user, task, req.Status))
		if !decision.Allowed {
			status := fiber.StatusForbidden
			if decision.Reason == "task not found" {
				status = fiber.StatusNotFound
				decision.Reason = Authorization.DenialNotFound
			}
			return ctx.Status(status).JSON(fiber.Map{"message": decision.Reason})
		}
		if req.Status != task.Status {
			statusUpdates := map[string]interface{}{"status": req.Status}
			if req.Status == Models.ProductionStatusCompleted {
				now := time.Now()
				statusUpdates["completed_at"] = &now
			}
			if err := ctl.DB.Model(task).Updates(statusUpdates).Error; err != nil {
				return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update production task"})
			}
		}
	}

	if len(updates) > 0 {
		if err := ctl.DB.Model(task).Updates(updates).Error; err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update production task"})
		}
	}

	ctl.DB.Preload("Recipe").Preload("AssignedTo").First(task, task.ID)
	return ctx.JSON(task)
}

func (ctl *ProductionTaskController) DeleteProductionTask(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	task, errResp := ctl.loadVisible(ctx, user)
	if task == nil {
		return errResp
	}

	if v := Authorization.Can(user, Authorization.ActionDelete, task); !v.Allowed {
		status := fiber.StatusForbidden
		if v.Reason == Authorization.DenialNotFound {
			status = fiber.StatusNotFound
		}
		return ctx.Status(status).JSON(fiber.Map{"message": v.Reason})
	}

	ctl.DB.Delete(task)
	return ctx.JSON(fiber.Map{"message": "Production task deleted successfully"})
}

func (ctl *ProductionTaskController) loadVisible(ctx *fiber.Ctx, user *Models.User) (*Models.RecipeProductionTask, error) {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return nil, ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	var task Models.RecipeProductionTask
	q := Authorization.ScopeByDepartmentColumn(ctl.DB.Model(&Models.RecipeProductionTask{}), user)
	if err := q.Preload("Recipe").Preload("AssignedTo").
		Where("id = ?", id).First(&task).Error; err != nil {
		return nil, ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}
	return &task, nil
}

func (ctl *ProductionTaskController) transitionRequest(user *Models.User, task *Models.RecipeProductionTask, target string) Workflow.TransitionRequest {
	req := Workflow.TransitionRequest{
		Kind:           Workflow.KindProductionTask,
		IsSuperuser:    user != nil && user.IsSuperuser,
		TaskDepartment: task.DepartmentID,
		AssignedToID:   task.AssignedToID,
		CurrentStatus:  task.Status,
		TargetStatus:   target,
	}
	if user != nil && user.Profile != nil {
		req.Role = user.Profile.Role
		req.ActorProfileID = user.Profile.ID
		if user.Profile.DepartmentID != nil {
			req.ActorDepartment = *user.Profile.DepartmentID
		}
	}
	return req
}
