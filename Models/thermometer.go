package Models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Thermometer statuses.
const (
	ThermometerStatusUnverified = "unverified"
	ThermometerStatusVerified   = "verified"
	ThermometerStatusExpired    = "expired"
)

// Verification is considered stale after this window and the thermometer drops
// back to expired on the next sweep.
const VerificationValidityDays = 7

type Thermometer struct {
	gorm.Model
	SerialNo       string     `json:"serial_no" gorm:"size:100;uniqueIndex;not null"`
	DepartmentID   uint       `json:"department_id" gorm:"index;not null"`
	Status         string     `json:"status" gorm:"size:20;not null;default:'unverified'"`
	LastVerifiedAt *time.Time `json:"last_verified_at"`
	VerifiedUntil  *time.Time `json:"verified_until"`

	Department Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

func (Thermometer) TableName() string {
	return "thermometers"
}

// IsVerified reports whether the thermometer currently holds a valid
// verification.
func (t *Thermometer) IsVerified(now time.Time) bool {
	return t.Status == ThermometerStatusVerified &&
		t.VerifiedUntil != nil && now.Before(*t.VerifiedUntil)
}

// ThermometerVerificationAssignment designates the staff member on thermometer
// verification duty for a department. At most one row per department may be
// active at any time; ActivateAssignment enforces that.
type ThermometerVerificationAssignment struct {
	gorm.Model
	StaffMemberID uint      `json:"staff_member_id" gorm:"index;not null"`
	DepartmentID  uint      `json:"department_id" gorm:"index;not null"`
	IsActive      bool      `json:"is_active" gorm:"index;default:false"`
	AssignedDate  time.Time `json:"assigned_date" gorm:"type:date;not null"`

	StaffMember Profile    `json:"staff_member,omitempty" gorm:"foreignKey:StaffMemberID"`
	Department  Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

func (ThermometerVerificationAssignment) TableName() string {
	return "thermometer_verification_assignments"
}

// ActivateAssignment creates (or re-activates) an assignment as the single
// active one for its department. The department row is locked for the duration
// of the transaction so concurrent activations serialize; the deactivation of
// every other row and the activation of this one commit or roll back together.
func ActivateAssignment(db *gorm.DB, assignment *ThermometerVerificationAssignment) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// Lock the department row so concurrent activations serialize. SQLite
		// has no FOR UPDATE; its single-writer model covers the same ground.
		deptQuery := tx
		if tx.Dialector.Name() != "sqlite" {
			deptQuery = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var dept Department
		if err := deptQuery.First(&dept, assignment.DepartmentID).Error; err != nil {
			return err
		}

		assignment.IsActive = true
		if assignment.AssignedDate.IsZero() {
			assignment.AssignedDate = time.Now()
		}
		if assignment.ID == 0 {
			if err := tx.Create(assignment).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(assignment).Update("is_active", true).Error; err != nil {
				return err
			}
		}

		return tx.Model(&ThermometerVerificationAssignment{}).
			Where("department_id = ? AND is_active = ? AND id <> ?",
				assignment.DepartmentID, true, assignment.ID).
			Update("is_active", false).Error
	})
}

// ActiveAssignment returns the current holder of verification duty for a
// department, or gorm.ErrRecordNotFound.
func ActiveAssignment(db *gorm.DB, departmentID uint) (*ThermometerVerificationAssignment, error) {
	var assignment ThermometerVerificationAssignment
	err := db.Where("department_id = ? AND is_active = ?", departmentID, true).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ThermometerVerificationRecord is an append-mostly log of a verification
// check. Creating one updates the parent thermometer's derived status.
type ThermometerVerificationRecord struct {
	gorm.Model
	ThermometerID uint      `json:"thermometer_id" gorm:"index;not null"`
	VerifiedByID  uint      `json:"verified_by_id" gorm:"index;not null"`
	VerifiedAt    time.Time `json:"verified_at" gorm:"not null"`
	ReadingC      float64   `json:"reading_c"`
	Passed        bool      `json:"passed"`
	Notes         string    `json:"notes" gorm:"type:text"`

	Thermometer Thermometer `json:"thermometer,omitempty" gorm:"foreignKey:ThermometerID"`
	VerifiedBy  Profile     `json:"verified_by,omitempty" gorm:"foreignKey:VerifiedByID"`
}

func (ThermometerVerificationRecord) TableName() string {
	return "thermometer_verification_records"
}

// CreateVerificationRecord inserts the record and rolls the thermometer's
// derived verification state forward in the same transaction.
func CreateVerificationRecord(db *gorm.DB, record *ThermometerVerificationRecord) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if record.VerifiedAt.IsZero() {
			record.VerifiedAt = time.Now()
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if record.Passed {
			until := record.VerifiedAt.AddDate(0, 0, VerificationValidityDays)
			updates["status"] = ThermometerStatusVerified
			updates["last_verified_at"] = record.VerifiedAt
			updates["verified_until"] = until
		} else {
			updates["status"] = ThermometerStatusExpired
		}
		return tx.Model(&Thermometer{}).
			Where("id = ?", record.ThermometerID).
			Updates(updates).Error
	})
}

// TemperatureLog records a temperature reading taken with a verified
// thermometer at an area unit.
type TemperatureLog struct {
	gorm.Model
	ThermometerID uint      `json:"thermometer_id" gorm:"index;not null"`
	AreaUnitID    uint      `json:"area_unit_id" gorm:"index;not null"`
	LoggedByID    uint      `json:"logged_by_id" gorm:"index;not null"`
	LoggedAt      time.Time `json:"logged_at" gorm:"not null"`
	ReadingC      float64   `json:"reading_c"`
	Notes         string    `json:"notes" gorm:"type:text"`
	// Free-form reading context from the client (device model, ambient
	// conditions), stored as-is.
	Metadata datatypes.JSON `json:"metadata,omitempty"`

	Thermometer Thermometer `json:"thermometer,omitempty" gorm:"foreignKey:ThermometerID"`
	AreaUnit    AreaUnit    `json:"area_unit,omitempty" gorm:"foreignKey:AreaUnitID"`
	LoggedBy    Profile     `json:"logged_by,omitempty" gorm:"foreignKey:LoggedByID"`
}

func (TemperatureLog) TableName() string {
	return "temperature_logs"
}
