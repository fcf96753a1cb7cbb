package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"Culina/Models"
)

func TestSuperuserWithoutProfileCannotRecord(t *testing.T) {
	app, db := setupApp(t)

	dept := Models.Department{Name: "Bakery"}
	require.NoError(t, db.Create(&dept).Error)
	unit := Models.AreaUnit{Name: "Walk-in fridge", DepartmentID: dept.ID}
	require.NoError(t, db.Create(&unit).Error)

	until := time.Now().Add(48 * time.Hour)
	thermometer := Models.Thermometer{
		SerialNo:      "TH-001",
		DepartmentID:  dept.ID,
		Status:        Models.ThermometerStatusVerified,
		VerifiedUntil: &until,
	}
	require.NoError(t, db.Create(&thermometer).Error)

	admin := Models.User{Username: "admin", IsSuperuser: true}
	require.NoError(t, db.Create(&admin).Error)

	// Records carry a not-null profile FK; an account without a profile gets a
	// clear 400, not a constraint violation.
	payload, err := json.Marshal(map[string]interface{}{
		"thermometer_id": thermometer.ID,
		"area_unit_id":   unit.ID,
		"reading_c":      3.5,
	})
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPost, "/api/temperature-logs", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(sessionCookie(t, admin.ID))

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var logs int64
	require.NoError(t, db.Model(&Models.TemperatureLog{}).Count(&logs).Error)
	require.Zero(t, logs)

	// Same guard on verification records.
	payload, err = json.Marshal(map[string]interface{}{
		"thermometer_id": thermometer.ID,
		"reading_c":      0.1,
		"passed":         true,
	})
	require.NoError(t, err)
	req = httptest.NewRequest(fiber.MethodPost, "/api/verification-records", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(sessionCookie(t, admin.ID))

	resp, err = app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var records int64
	require.NoError(t, db.Model(&Models.ThermometerVerificationRecord{}).Count(&records).Error)
	require.Zero(t, records)
}

func TestTemperatureLogKeepsMetadata(t *testing.T) {
	app, db := setupApp(t)

	dept := Models.Department{Name: "Bakery"}
	require.NoError(t, db.Create(&dept).Error)
	staff := createUser(t, db, "bakery.staff", Models.RoleStaff, &dept.ID)
	unit := Models.AreaUnit{Name: "Walk-in fridge", DepartmentID: dept.ID}
	require.NoError(t, db.Create(&unit).Error)

	until := time.Now().Add(48 * time.Hour)
	thermometer := Models.Thermometer{
		SerialNo:      "TH-001",
		DepartmentID:  dept.ID,
		Status:        Models.ThermometerStatusVerified,
		VerifiedUntil: &until,
	}
	require.NoError(t, db.Create(&thermometer).Error)

	payload, err := json.Marshal(map[string]interface{}{
		"thermometer_id": thermometer.ID,
		"area_unit_id":   unit.ID,
		"reading_c":      2.8,
		"metadata":       map[string]interface{}{"device": "handheld", "door_open": false},
	})
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPost, "/api/temperature-logs", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(sessionCookie(t, staff.ID))

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var stored Models.TemperatureLog
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, staff.Profile.ID, stored.LoggedByID)

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(stored.Metadata, &meta))
	require.Equal(t, "handheld", meta["device"])
	require.Equal(t, false, meta["door_open"])
}
