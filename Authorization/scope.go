package Authorization

import (
	"gorm.io/gorm"

	"Culina/Models"
)

// Scoping restricts every list/retrieve query to what the user's department
// allows. The rules, in order: superusers see everything; a user without a
// profile or without a department sees nothing; everyone else sees only their
// own department. Any uncertainty resolves to the empty set, never to all rows.

// none is the fail-closed predicate.
func none(q *gorm.DB) *gorm.DB {
	return q.Where("1 = 0")
}

// departmentOf returns the user's department id, or false when the user has no
// scoped visibility at all.
func departmentOf(user *Models.User) (uint, bool) {
	if user == nil || user.Profile == nil || user.Profile.DepartmentID == nil {
		return 0, false
	}
	return *user.Profile.DepartmentID, true
}

// ScopeByDepartmentColumn filters entities carrying their own department_id
// column (cleaning items, recipes, thermometers, area units, production tasks,
// verification assignments).
func ScopeByDepartmentColumn(q *gorm.DB, user *Models.User) *gorm.DB {
	if user != nil && user.IsSuperuser {
		return q
	}
	dept, ok := departmentOf(user)
	if !ok {
		return none(q)
	}
	return q.Where("department_id = ?", dept)
}

// ScopeTaskInstances filters cleaning task instances, whose department is one
// hop away through the cleaning item. Staff see only tasks assigned to them
// and in their department; managers see the whole department.
func ScopeTaskInstances(q *gorm.DB, user *Models.User) *gorm.DB {
	if user != nil && user.IsSuperuser {
		return q
	}
	dept, ok := departmentOf(user)
	if !ok {
		return none(q)
	}
	joined := q.Joins("JOIN cleaning_items ON cleaning_items.id = task_instances.cleaning_item_id")
	if user.Profile.Role == Models.RoleStaff {
		return joined.Where(
			"cleaning_items.department_id = ? AND task_instances.assigned_to_id = ?",
			dept, user.Profile.ID,
		)
	}
	return joined.Where("cleaning_items.department_id = ?", dept)
}

// ScopeTemperatureLogs filters temperature logs through their area unit.
func ScopeTemperatureLogs(q *gorm.DB, user *Models.User) *gorm.DB {
	if user != nil && user.IsSuperuser {
		return q
	}
	dept, ok := departmentOf(user)
	if !ok {
		return none(q)
	}
	return q.Joins("JOIN area_units ON area_units.id = temperature_logs.area_unit_id").
		Where("area_units.department_id = ?", dept)
}

// ScopeVerificationRecords filters verification records through their
// thermometer.
func ScopeVerificationRecords(q *gorm.DB, user *Models.User) *gorm.DB {
	if user != nil && user.IsSuperuser {
		return q
	}
	dept, ok := departmentOf(user)
	if !ok {
		return none(q)
	}
	return q.Joins("JOIN thermometers ON thermometers.id = thermometer_verification_records.thermometer_id").
		Where("thermometers.department_id = ?", dept)
}

// ScopeUsers filters user listings: superusers see all, managers see users in
// their department, staff see only themselves.
func ScopeUsers(q *gorm.DB, user *Models.User) *gorm.DB {
	if user != nil && user.IsSuperuser {
		return q
	}
	dept, ok := departmentOf(user)
	if !ok {
		return none(q)
	}
	if user.Profile.Role == Models.RoleManager {
		return q.Joins("JOIN profiles ON profiles.user_id = users.id").
			Where("profiles.department_id = ?", dept)
	}
	return q.Where("users.id = ?", user.ID)
}
