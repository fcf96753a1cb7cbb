package Workflow

import (
	"Culina/Models"
)

// transitionTable maps current status -> set of statuses a role may move to.
type transitionTable map[string]map[string]bool

func set(statuses ...string) map[string]bool {
	m := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		m[s] = true
	}
	return m
}

// Cleaning task transitions. Staff can only start work or submit it for
// review; managers drive the full lifecycle. "archived" is terminal and only
// ever reached by the archival sweep, never through these tables.
var cleaningStaff = transitionTable{
	Models.TaskStatusPending:    set(Models.TaskStatusPendingReview, Models.TaskStatusInProgress),
	Models.TaskStatusInProgress: set(Models.TaskStatusPendingReview),
}

var cleaningManager = transitionTable{
	Models.TaskStatusPending: set(
		Models.TaskStatusInProgress,
		Models.TaskStatusPendingReview,
		Models.TaskStatusCompleted,
		Models.TaskStatusMissed,
		Models.TaskStatusRequiresAttention,
	),
	Models.TaskStatusInProgress: set(
		Models.TaskStatusPendingReview,
		Models.TaskStatusCompleted,
		Models.TaskStatusMissed,
		Models.TaskStatusRequiresAttention,
	),
	// pending_review -> in_progress lets a manager send a task back for rework.
	Models.TaskStatusPendingReview: set(
		Models.TaskStatusCompleted,
		Models.TaskStatusInProgress,
		Models.TaskStatusRequiresAttention,
	),
	Models.TaskStatusRequiresAttention: set(
		Models.TaskStatusPending,
		Models.TaskStatusInProgress,
	),
	Models.TaskStatusMissed: set(Models.TaskStatusPending),
}

// Production task transitions follow the same shape with the production
// status set.
var productionStaff = transitionTable{
	Models.ProductionStatusScheduled:  set(Models.ProductionStatusInProgress, Models.ProductionStatusPendingReview),
	Models.ProductionStatusInProgress: set(Models.ProductionStatusPendingReview),
}

var productionManager = transitionTable{
	Models.ProductionStatusScheduled: set(
		Models.ProductionStatusInProgress,
		Models.ProductionStatusPendingReview,
		Models.ProductionStatusCompleted,
		Models.ProductionStatusCancelled,
		Models.ProductionStatusOnHold,
	),
	Models.ProductionStatusInProgress: set(
		Models.ProductionStatusPendingReview,
		Models.ProductionStatusCompleted,
		Models.ProductionStatusCancelled,
		Models.ProductionStatusOnHold,
	),
	Models.ProductionStatusPendingReview: set(
		Models.ProductionStatusCompleted,
		Models.ProductionStatusInProgress,
		Models.ProductionStatusOnHold,
	),
	Models.ProductionStatusOnHold: set(
		Models.ProductionStatusScheduled,
		Models.ProductionStatusInProgress,
		Models.ProductionStatusCancelled,
	),
	Models.ProductionStatusCancelled: set(Models.ProductionStatusScheduled),
}
