package Controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"Culina/Authorization"
	"Culina/Models"
	"Culina/middleware"
)

// ReportController exports compliance data as spreadsheets.
type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

// ExportTemperatureLogs writes the caller's visible temperature logs for a
// date range into an xlsx workbook.
func (ctl *ReportController) ExportTemperatureLogs(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	q := Authorization.ScopeTemperatureLogs(ctl.DB.Model(&Models.TemperatureLog{}), user)
	if from := ctx.Query("from"); from != "" {
		q = q.Where("logged_at >= ?", from)
	}
	if to := ctx.Query("to"); to != "" {
		q = q.Where("logged_at < ?", to)
	}

	var logs []Models.TemperatureLog
	if err := q.Preload("Thermometer").Preload("AreaUnit").Preload("LoggedBy").
		Order("logged_at").Find(&logs).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve temperature logs"})
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Temperature Logs"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Logged At", "Area Unit", "Thermometer", "Reading (°C)", "Logged By", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, entry := range logs {
		values := []interface{}{
			entry.LoggedAt.Format("2006-01-02 15:04"),
			entry.AreaUnit.Name,
			entry.Thermometer.SerialNo,
			entry.ReadingC,
			entry.LoggedBy.UserID,
			entry.Notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to generate report"})
	}

	filename := fmt.Sprintf("temperature_logs_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Send(buf.Bytes())
}

// ExportTaskCompliance summarizes cleaning task outcomes per cleaning item
// over a date range.
func (ctl *ReportController) ExportTaskCompliance(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	q := Authorization.ScopeTaskInstances(ctl.DB.Model(&Models.TaskInstance{}), user)
	if from := ctx.Query("from"); from != "" {
		q = q.Where("task_instances.due_date >= ?", from)
	}
	if to := ctx.Query("to"); to != "" {
		q = q.Where("task_instances.due_date < ?", to)
	}

	var tasks []Models.TaskInstance
	if err := q.Preload("CleaningItem").Order("task_instances.due_date").Find(&tasks).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve tasks"})
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Cleaning Compliance"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Due Date", "Cleaning Item", "Status", "Completed At", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, task := range tasks {
		completed := ""
		if task.CompletedAt != nil {
			completed = task.CompletedAt.Format("2006-01-02 15:04")
		}
		values := []interface{}{
			task.DueDate.Format("2006-01-02"),
			task.CleaningItem.Name,
			task.Status,
			completed,
			task.Notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to generate report"})
	}

	filename := fmt.Sprintf("cleaning_compliance_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Send(buf.Bytes())
}
