package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Culina/Authorization"
	"Culina/Models"
	"Culina/Workflow"
	"Culina/middleware"
)

// TaskInstanceController serves the dated cleaning tasks and their status
// workflow.
type TaskInstanceController struct {
	DB *gorm.DB
}

func NewTaskInstanceController(db *gorm.DB) *TaskInstanceController {
	return &TaskInstanceController{DB: db}
}

func (ctl *TaskInstanceController) GetTaskInstances(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var tasks []Models.TaskInstance
	q := Authorization.ScopeTaskInstances(ctl.DB.Model(&Models.TaskInstance{}), user)
	if status := ctx.Query("status"); status != "" {
		q = q.Where("task_instances.status = ?", status)
	}
	if date := ctx.Query("due_date"); date != "" {
		q = q.Where("task_instances.due_date = ?", date)
	}
	if err := q.Preload("CleaningItem").Preload("AssignedTo").Find(&tasks).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve tasks"})
	}
	return ctx.JSON(tasks)
}

func (ctl *TaskInstanceController) GetTaskInstance(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	task, errResp := ctl.loadVisible(ctx, user)
	if task == nil {
		return errResp
	}
	return ctx.JSON(task)
}

type TaskInstanceUpdateRequest struct {
	Status       string  `json:"status"`
	Notes        *string `json:"notes"`
	AssignedToID *uint   `json:"assigned_to_id"`
}

// UpdateTaskInstance is the status-transition path. A request without a status
// field is a plain field update gated by the capability layer; a request with
// one additionally runs the workflow engine.
func (ctl *TaskInstanceController) UpdateTaskInstance(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	task, errResp := ctl.loadVisible(ctx, user)
	if task == nil {
		return errResp
	}

	var req TaskInstanceUpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	// Field edits are manager territory; staff only ever move status. Gated
	// before any write so a denied request changes nothing.
	updates := map[string]interface{}{}
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
			if err := Models.RecordStatusChange(ctl.DB, task, req.Status, profileID(user)); err != nil {
				return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update task"})
			}
		}
	}

	if len(updates) > 0 {
		if err := ctl.DB.Model(task).Updates(updates).Error; err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update task"})
		}
	}

	ctl.DB.Preload("CleaningItem").Preload("AssignedTo").First(task, task.ID)
	return ctx.JSON(task)
}

func (ctl *TaskInstanceController) GetTaskHistory(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	task, errResp := ctl.loadVisible(ctx, user)
	if task == nil {
		return errResp
	}

	var history []Models.TaskStatusHistory
	if err := ctl.DB.Where("task_instance_id = ?", task.ID).
		Order("created_at").Find(&history).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve history"})
	}
	return ctx.JSON(history)
}

// loadVisible fetches the task through the caller's scope so an out-of-scope
// id is indistinguishable from a missing one. On failure the second return
// value carries the already-written response.
func (ctl *TaskInstanceController) loadVisible(ctx *fiber.Ctx, user *Models.User) (*Models.TaskInstance, error) {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return nil, ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid task ID"})
	}

	var task Models.TaskInstance
	q := Authorization.ScopeTaskInstances(ctl.DB.Model(&Models.TaskInstance{}), user)
	if err := q.Preload("CleaningItem").Preload("AssignedTo").
		Where("task_instances.id = ?", id).First(&task).Error; err != nil {
		return nil, ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}
	return &task, nil
}

func (ctl *TaskInstanceController) transitionRequest(user *Models.User, task *Models.TaskInstance, target string) Workflow.TransitionRequest {
	req := Workflow.TransitionRequest{
		Kind:           Workflow.KindCleaningTask,
		IsSuperuser:    user != nil && user.IsSuperuser,
		TaskDepartment: task.CleaningItem.DepartmentID,
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

func profileID(user *Models.User) *uint {
	if user == nil || user.Profile == nil {
		return nil
	}
	id := user.Profile.ID
	return &id
}
