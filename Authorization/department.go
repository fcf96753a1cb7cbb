package Authorization

import (
	"fmt"

	"Culina/Models"
)

// OwningDepartment resolves the department that owns an entity. Every entity
// type the evaluator can be asked about has an explicit case here; the FK hops
// (task instance -> cleaning item -> department, log -> area unit -> department)
// must already be preloaded or denormalized on the value passed in. An entity
// type without a case resolves to 0, which every caller treats as deny.
func OwningDepartment(entity interface{}) (uint, error) {
	switch e := entity.(type) {
	case *Models.Department:
		return e.ID, nil
	case *Models.AreaUnit:
		return e.DepartmentID, nil
	case *Models.CleaningItem:
		return e.DepartmentID, nil
	case *Models.TaskInstance:
		if e.CleaningItem.ID == 0 {
			return 0, fmt.Errorf("task instance %d has no cleaning item loaded", e.ID)
		}
		return e.CleaningItem.DepartmentID, nil
	case *Models.Recipe:
		return e.DepartmentID, nil
	case *Models.RecipeProductionTask:
		return e.DepartmentID, nil
	case *Models.Thermometer:
		return e.DepartmentID, nil
	case *Models.ThermometerVerificationAssignment:
		return e.DepartmentID, nil
	case *Models.ThermometerVerificationRecord:
		if e.Thermometer.ID == 0 {
			return 0, fmt.Errorf("verification record %d has no thermometer loaded", e.ID)
		}
		return e.Thermometer.DepartmentID, nil
	case *Models.TemperatureLog:
		if e.AreaUnit.ID == 0 {
			return 0, fmt.Errorf("temperature log %d has no area unit loaded", e.ID)
		}
		return e.AreaUnit.DepartmentID, nil
	case *Models.Profile:
		if e.DepartmentID == nil {
			return 0, nil
		}
		return *e.DepartmentID, nil
	default:
		return 0, fmt.Errorf("no department resolution for %T", entity)
	}
}
