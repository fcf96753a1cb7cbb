package Controllers

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"Culina/Authorization"
	"Culina/Models"
	"Culina/middleware"
)

// ThermometerController serves thermometers, their verification records, and
// temperature logs.
type ThermometerController struct {
	DB *gorm.DB
}

func NewThermometerController(db *gorm.DB) *ThermometerController {
	return &ThermometerController{DB: db}
}

func (ctl *ThermometerController) GetThermometers(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var thermometers []Models.Thermometer
	q := Authorization.ScopeByDepartmentColumn(ctl.DB.Model(&Models.Thermometer{}), user)
	if err := q.Find(&thermometers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve thermometers"})
	}
	return ctx.JSON(thermometers)
}

type ThermometerRequest struct {
	SerialNo     string `json:"serial_no" validate:"required,max=100"`
	DepartmentID uint   `json:"department_id" validate:"required"`
}

func (ctl *ThermometerController) CreateThermometer(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var req ThermometerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	thermometer := Models.Thermometer{
		SerialNo:     req.SerialNo,
		DepartmentID: req.DepartmentID,
		Status:       Models.ThermometerStatusUnverified,
	}
	if v := Authorization.Can(user, Authorization.ActionCreate, &thermometer); !v.Allowed {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": v.Reason})
	}
	if err := ctl.DB.Create(&thermometer).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "unique constraint") {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "A thermometer with this serial number already exists",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create thermometer"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(thermometer)
}

func (ctl *ThermometerController) DeleteThermometer(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid thermometer ID"})
	}

	var thermometer Models.Thermometer
	if err := ctl.DB.First(&thermometer, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}

	if v := Authorization.Can(user, Authorization.ActionDelete, &thermometer); !v.Allowed {
		status := fiber.StatusForbidden
		if v.Reason == Authorization.DenialNotFound {
			status = fiber.StatusNotFound
		}
		return ctx.Status(status).JSON(fiber.Map{"message": v.Reason})
	}

	ctl.DB.Delete(&thermometer)
	return ctx.JSON(fiber.Map{"message": "Thermometer deleted successfully"})
}

// Verification records

type VerificationRecordRequest struct {
	ThermometerID uint    `json:"thermometer_id" validate:"required"`
	ReadingC      float64 `json:"reading_c"`
	Passed        *bool   `json:"passed" validate:"required"`
	Notes         string  `json:"notes"`
}

// CreateVerificationRecord logs a verification check; the thermometer's
// derived status rolls forward in the same transaction. Staff may verify, but
// only the department's active duty holder or a manager.
func (ctl *ThermometerController) CreateVerificationRecord(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var req VerificationRecordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var thermometer Models.Thermometer
	if err := ctl.DB.First(&thermometer, req.ThermometerID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}

	if v := Authorization.Can(user, Authorization.ActionRead, &thermometer); !v.Allowed {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}

	if !user.IsSuperuser && user.Profile.Role == Models.RoleStaff {
		assignment, err := Models.ActiveAssignment(ctl.DB, thermometer.DepartmentID)
		if err != nil || assignment.StaffMemberID != user.Profile.ID {
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Thermometer verification is assigned to another staff member",
			})
		}
	}

	// The record's verified_by FK needs a real profile even for superusers.
	verifiedBy := profileIDValue(user)
	if verifiedBy == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Your account has no profile to record the verification against",
		})
	}

	record := Models.ThermometerVerificationRecord{
		ThermometerID: thermometer.ID,
		VerifiedByID:  verifiedBy,
		ReadingC:      req.ReadingC,
		Passed:        *req.Passed,
		Notes:         req.Notes,
	}
	if err := Models.CreateVerificationRecord(ctl.DB, &record); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to record verification"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(record)
}

func (ctl *ThermometerController) GetVerificationRecords(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var records []Models.ThermometerVerificationRecord
	q := Authorization.ScopeVerificationRecords(ctl.DB.Model(&Models.ThermometerVerificationRecord{}), user)
	if err := q.Preload("Thermometer").Order("verified_at DESC").Find(&records).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve records"})
	}
	return ctx.JSON(records)
}

// Temperature logs

type TemperatureLogRequest struct {
	ThermometerID uint            `json:"thermometer_id" validate:"required"`
	AreaUnitID    uint            `json:"area_unit_id" validate:"required"`
	ReadingC      float64         `json:"reading_c"`
	Notes         string          `json:"notes"`
	Metadata      json.RawMessage `json:"metadata"`
}

func (ctl *ThermometerController) CreateTemperatureLog(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var req TemperatureLogRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var thermometer Models.Thermometer
	if err := ctl.DB.First(&thermometer, req.ThermometerID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}

	if v := Authorization.CanLogTemperature(user, &thermometer, time.Now()); !v.Allowed {
		status := fiber.StatusForbidden
		if v.Reason == Authorization.DenialNotFound {
			status = fiber.StatusNotFound
		}
		return ctx.Status(status).JSON(fiber.Map{"message": v.Reason})
	}

	var unit Models.AreaUnit
	if err := ctl.DB.First(&unit, req.AreaUnitID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": Authorization.DenialNotFound})
	}
	if unit.DepartmentID != thermometer.DepartmentID {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Thermometer and area unit belong to different departments",
		})
	}

	loggedBy := profileIDValue(user)
	if loggedBy == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Your account has no profile to record the reading against",
		})
	}

	logEntry := Models.TemperatureLog{
		ThermometerID: thermometer.ID,
		AreaUnitID:    unit.ID,
		LoggedByID:    loggedBy,
		LoggedAt:      time.Now(),
		ReadingC:      req.ReadingC,
		Notes:         req.Notes,
	}
	if len(req.Metadata) > 0 {
		logEntry.Metadata = datatypes.JSON(req.Metadata)
	}
	if err := ctl.DB.Create(&logEntry).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to record temperature"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(logEntry)
}

func (ctl *ThermometerController) GetTemperatureLogs(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var logs []Models.TemperatureLog
	q := Authorization.ScopeTemperatureLogs(ctl.DB.Model(&Models.TemperatureLog{}), user)
	if from := ctx.Query("from"); from != "" {
		q = q.Where("logged_at >= ?", from)
	}
	if to := ctx.Query("to"); to != "" {
		q = q.Where("logged_at < ?", to)
	}
	if err := q.Preload("Thermometer").Preload("AreaUnit").
		Order("logged_at DESC").Find(&logs).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve temperature logs"})
	}
	return ctx.JSON(logs)
}

func profileIDValue(user *Models.User) uint {
	if user == nil || user.Profile == nil {
		return 0
	}
	return user.Profile.ID
}
