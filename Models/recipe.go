package Models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Production task statuses.
const (
	ProductionStatusScheduled     = "scheduled"
	ProductionStatusInProgress    = "in_progress"
	ProductionStatusCompleted     = "completed"
	ProductionStatusCancelled     = "cancelled"
	ProductionStatusPendingReview = "pending_review"
	ProductionStatusOnHold        = "on_hold"
	ProductionStatusArchived      = "archived"
)

type Recipe struct {
	gorm.Model
	Name         string  `json:"name" gorm:"size:255;not null"`
	DepartmentID uint    `json:"department_id" gorm:"index;not null"`
	YieldQty     float64 `json:"yield_qty"`
	YieldUnit    string  `json:"yield_unit" gorm:"size:32"`
	Instructions string  `json:"instructions" gorm:"type:text"`
	Active       bool    `json:"active"`

	Department      Department             `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	ProductionTasks []RecipeProductionTask `json:"production_tasks,omitempty" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// RecipeProductionTask is a scheduled production run of a recipe. DepartmentID
// is denormalized from the recipe and must always match it.
type RecipeProductionTask struct {
	gorm.Model
	RecipeID     uint       `json:"recipe_id" gorm:"index;not null"`
	DepartmentID uint       `json:"department_id" gorm:"index;not null"`
	ScheduledFor time.Time  `json:"scheduled_for" gorm:"type:date;not null"`
	Quantity     float64    `json:"quantity"`
	Status       string     `json:"status" gorm:"size:20;not null;default:'scheduled'"`
	AssignedToID *uint      `json:"assigned_to_id" gorm:"index"`
	CompletedAt  *time.Time `json:"completed_at"`
	Notes        string     `json:"notes" gorm:"type:text"`

	Recipe     Recipe   `json:"recipe,omitempty" gorm:"foreignKey:RecipeID"`
	AssignedTo *Profile `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`
}

func (RecipeProductionTask) TableName() string {
	return "recipe_production_tasks"
}

// BeforeSave keeps the denormalized department in sync with the parent recipe.
func (t *RecipeProductionTask) BeforeSave(tx *gorm.DB) error {
	if t.RecipeID == 0 {
		return nil
	}
	var recipe Recipe
	if err := tx.Select("department_id").First(&recipe, t.RecipeID).Error; err != nil {
		return err
	}
	if t.DepartmentID == 0 {
		t.DepartmentID = recipe.DepartmentID
		return nil
	}
	if t.DepartmentID != recipe.DepartmentID {
		return fmt.Errorf("production task department %d does not match recipe department %d",
			t.DepartmentID, recipe.DepartmentID)
	}
	return nil
}
