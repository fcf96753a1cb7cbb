package Models

import (
	"gorm.io/gorm"
)

// Role values are a closed set. Anything else in the column is treated as no
// role at all by the authorization layer.
const (
	RoleManager = "manager"
	RoleStaff   = "staff"
)

type User struct {
	gorm.Model
	Username    string `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Password    []byte `json:"-"`
	Name        string `json:"name" gorm:"size:255"`
	PhoneNumber string `json:"phone_number" gorm:"size:32"`
	IsSuperuser bool   `json:"is_superuser" gorm:"default:false"`

	// Profile carries the role and department. A user without a profile (or a
	// profile without a department) has no scoped visibility anywhere.
	Profile *Profile `json:"profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

type Profile struct {
	gorm.Model
	UserID       uint        `json:"user_id" gorm:"uniqueIndex;not null"`
	Role         string      `json:"role" gorm:"size:20;not null;default:'staff'"`
	DepartmentID *uint       `json:"department_id" gorm:"index"`
	Department   *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

func (Profile) TableName() string {
	return "profiles"
}
