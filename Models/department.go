package Models

import (
	"gorm.io/gorm"
)

// Department is the tenancy boundary. Nearly every other entity hangs off a
// department and is only visible to users whose profile belongs to it.
type Department struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`

	// Relationships
	CleaningItems []CleaningItem `json:"cleaning_items,omitempty" gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE"`
	Recipes       []Recipe       `json:"recipes,omitempty" gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE"`
	Thermometers  []Thermometer  `json:"thermometers,omitempty" gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE"`
	AreaUnits     []AreaUnit     `json:"area_units,omitempty" gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE"`
}

func (Department) TableName() string {
	return "departments"
}

// AreaUnit is a physical location inside a department (prep room, counter,
// walk-in fridge) that cleaning items and temperature logs reference.
type AreaUnit struct {
	gorm.Model
	Name         string `json:"name" gorm:"size:100;not null"`
	DepartmentID uint   `json:"department_id" gorm:"index;not null"`
}

func (AreaUnit) TableName() string {
	return "area_units"
}
