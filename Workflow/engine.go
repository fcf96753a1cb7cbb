package Workflow

import (
	"fmt"

	"Culina/Models"
)

// TaskKind selects which transition tables apply.
type TaskKind int

const (
	KindCleaningTask TaskKind = iota
	KindProductionTask
)

// Decision is the outcome of a transition check. Reason is only set on deny
// and names the exact transition that was refused.
type Decision struct {
	Allowed bool
	Reason  string
}

func permit() Decision {
	return Decision{Allowed: true}
}

func refuse(format string, args ...interface{}) Decision {
	return Decision{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// completedStatus is the completed status per kind; managers may always
// reach it from any non-completed state.
func completedStatus(kind TaskKind) string {
	if kind == KindProductionTask {
		return Models.ProductionStatusCompleted
	}
	return Models.TaskStatusCompleted
}

func archivedStatus(kind TaskKind) string {
	if kind == KindProductionTask {
		return Models.ProductionStatusArchived
	}
	return Models.TaskStatusArchived
}

func tables(kind TaskKind, role string) (transitionTable, bool) {
	switch kind {
	case KindCleaningTask:
		switch role {
		case Models.RoleManager:
			return cleaningManager, true
		case Models.RoleStaff:
			return cleaningStaff, true
		}
	case KindProductionTask:
		switch role {
		case Models.RoleManager:
			return productionManager, true
		case Models.RoleStaff:
			return productionStaff, true
		}
	}
	return nil, false
}

// TransitionRequest carries everything the engine needs to decide one status
// change. The engine is a pure decision function; persistence happens in the
// controllers after an allow.
type TransitionRequest struct {
	Kind TaskKind
	// Actor's role; superusers skip the table entirely.
	Role        string
	IsSuperuser bool
	// Actor's department id (0 when unset) and profile id.
	ActorDepartment uint
	ActorProfileID  uint
	// Task facts.
	TaskDepartment uint
	AssignedToID   *uint
	CurrentStatus  string
	// Requested status. Empty means the update carries no status change and
	// this check does not apply.
	TargetStatus string
}

// ValidateTransition applies the guard conditions and then the role's
// transition table. Denials carry a message naming the refused transition for
// the actor's role.
func ValidateTransition(req TransitionRequest) Decision {
	// No status in the request: nothing for this engine to decide.
	if req.TargetStatus == "" || req.TargetStatus == req.CurrentStatus {
		return permit()
	}

	if req.IsSuperuser {
		return permit()
	}

	// Archived is terminal and unreachable through role transitions.
	if req.CurrentStatus == archivedStatus(req.Kind) {
		return refuse("archived tasks can no longer change status")
	}
	if req.TargetStatus == archivedStatus(req.Kind) {
		return refuse("tasks are archived by the retention sweep, not by hand")
	}

	switch req.Role {
	case Models.RoleManager:
		// Managers act only within their own department.
		if req.ActorDepartment == 0 || req.ActorDepartment != req.TaskDepartment {
			return refuse("task not found")
		}
	case Models.RoleStaff:
		// Staff must be assigned to the task or share its department.
		assigned := req.AssignedToID != nil && *req.AssignedToID == req.ActorProfileID
		if !assigned && (req.ActorDepartment == 0 || req.ActorDepartment != req.TaskDepartment) {
			return refuse("task not found")
		}
	default:
		return refuse("your account has no role that can change task status")
	}

	// Managers may always complete a task that is not already completed.
	if req.Role == Models.RoleManager &&
		req.TargetStatus == completedStatus(req.Kind) &&
		req.CurrentStatus != completedStatus(req.Kind) {
		return permit()
	}

	table, ok := tables(req.Kind, req.Role)
	if !ok {
		return refuse("your account has no role that can change task status")
	}
	if targets, ok := table[req.CurrentStatus]; ok && targets[req.TargetStatus] {
		return permit()
	}
	return refuse("a %s cannot move this task from %q to %q",
		req.Role, req.CurrentStatus, req.TargetStatus)
}
