package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"Culina/Models"
)

func TestStaffCannotEditProductionFields(t *testing.T) {
	app, db := setupApp(t)

	dept := Models.Department{Name: "Bakery"}
	require.NoError(t, db.Create(&dept).Error)
	staff := createUser(t, db, "bakery.staff", Models.RoleStaff, &dept.ID)

	recipe := Models.Recipe{Name: "Sourdough", DepartmentID: dept.ID, Active: true}
	require.NoError(t, db.Create(&recipe).Error)
	task := Models.RecipeProductionTask{
		RecipeID:     recipe.ID,
		DepartmentID: dept.ID,
		ScheduledFor: time.Now(),
		Quantity:     12,
		Status:       Models.ProductionStatusScheduled,
	}
	require.NoError(t, db.Create(&task).Error)

	payload, err := json.Marshal(map[string]interface{}{
		"quantity": 999,
		"notes":    "changed the batch size",
	})
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPatch,
		"/api/production-tasks/"+strconv.Itoa(int(task.ID)), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(sessionCookie(t, staff.ID))

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var unchanged Models.RecipeProductionTask
	require.NoError(t, db.First(&unchanged, task.ID).Error)
	require.EqualValues(t, 12, unchanged.Quantity)
	require.Empty(t, unchanged.Notes)

	// The status path stays open to in-department staff.
	payload, err = json.Marshal(map[string]interface{}{"status": Models.ProductionStatusInProgress})
	require.NoError(t, err)
	req = httptest.NewRequest(fiber.MethodPatch,
		"/api/production-tasks/"+strconv.Itoa(int(task.ID)), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(sessionCookie(t, staff.ID))

	resp, err = app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var moved Models.RecipeProductionTask
	require.NoError(t, db.First(&moved, task.ID).Error)
	require.Equal(t, Models.ProductionStatusInProgress, moved.Status)
}
