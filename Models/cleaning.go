package Models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses for cleaning task instances.
const (
	TaskStatusPending           = "pending"
	TaskStatusInProgress        = "in_progress"
	TaskStatusPendingReview     = "pending_review"
	TaskStatusCompleted         = "completed"
	TaskStatusMissed            = "missed"
	TaskStatusRequiresAttention = "requires_attention"
	TaskStatusArchived          = "archived"
)

// Cleaning frequencies for recurring task generation.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// CleaningItem is a recurring cleaning duty belonging to a department, e.g.
// "sanitize bakery proofer". Task instances are generated from it per due date.
type CleaningItem struct {
	gorm.Model
	Name         string `json:"name" gorm:"size:255;not null"`
	Description  string `json:"description" gorm:"type:text"`
	DepartmentID uint   `json:"department_id" gorm:"index;not null"`
	AreaUnitID   *uint  `json:"area_unit_id" gorm:"index"`
	Frequency    string `json:"frequency" gorm:"size:20;not null;default:'daily'"`
	// No default tag: gorm would skip Active=false on insert and let the column
	// default win. Callers set the value explicitly.
	Active bool `json:"active"`

	Department Department     `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	AreaUnit   *AreaUnit      `json:"area_unit,omitempty" gorm:"foreignKey:AreaUnitID"`
	Instances  []TaskInstance `json:"instances,omitempty" gorm:"foreignKey:CleaningItemID;constraint:OnDelete:CASCADE"`
}

func (CleaningItem) TableName() string {
	return "cleaning_items"
}

// TaskInstance is one dated occurrence of a cleaning item. Its department is
// always resolved through the parent cleaning item.
type TaskInstance struct {
	gorm.Model
	CleaningItemID uint       `json:"cleaning_item_id" gorm:"index;not null;uniqueIndex:idx_item_due"`
	DueDate        time.Time  `json:"due_date" gorm:"type:date;not null;uniqueIndex:idx_item_due"`
	Status         string     `json:"status" gorm:"size:20;not null;default:'pending'"`
	AssignedToID   *uint      `json:"assigned_to_id" gorm:"index"`
	CompletedAt    *time.Time `json:"completed_at"`
	Notes          string     `json:"notes" gorm:"type:text"`

	CleaningItem CleaningItem        `json:"cleaning_item,omitempty" gorm:"foreignKey:CleaningItemID"`
	AssignedTo   *Profile            `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`
	History      []TaskStatusHistory `json:"history,omitempty" gorm:"foreignKey:TaskInstanceID;constraint:OnDelete:CASCADE"`
}

func (TaskInstance) TableName() string {
	return "task_instances"
}

// TaskStatusHistory is an append-only trail of status changes on a task
// instance, written alongside every persisted transition.
type TaskStatusHistory struct {
	gorm.Model
	TaskInstanceID uint   `json:"task_instance_id" gorm:"index;not null"`
	FromStatus     string `json:"from_status" gorm:"size:20;not null"`
	ToStatus       string `json:"to_status" gorm:"size:20;not null"`
	ChangedByID    *uint  `json:"changed_by_id" gorm:"index"`
}

func (TaskStatusHistory) TableName() string {
	return "task_status_history"
}

// RecordStatusChange persists the new status together with its history row in
// one transaction.
func RecordStatusChange(db *gorm.DB, task *TaskInstance, newStatus string, changedBy *uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		old := task.Status
		updates := map[string]interface{}{"status": newStatus}
		if newStatus == TaskStatusCompleted {
			now := time.Now()
			updates["completed_at"] = &now
		}
		if err := tx.Model(task).Updates(updates).Error; err != nil {
			return err
		}
		history := TaskStatusHistory{
			TaskInstanceID: task.ID,
			FromStatus:     old,
			ToStatus:       newStatus,
			ChangedByID:    changedBy,
		}
		return tx.Create(&history).Error
	})
}
