package CronJobs

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Culina/Models"
)

func sweeperWithDB(t *testing.T) (*ComplianceSweeper, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	return NewComplianceSweeper(db, false), db
}

func seedItem(t *testing.T, db *gorm.DB, name, frequency string, active bool) Models.CleaningItem {
	t.Helper()
	dept := Models.Department{Name: name + " dept"}
	require.NoError(t, db.Create(&dept).Error)
	item := Models.CleaningItem{
		Name:         name,
		DepartmentID: dept.ID,
		Frequency:    frequency,
		Active:       active,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func taskCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&Models.TaskInstance{}).Count(&n).Error)
	return n
}

func TestGenerateTaskInstancesIsIdempotent(t *testing.T) {
	sweeper, db := sweeperWithDB(t)
	seedItem(t, db, "Sanitize proofer", Models.FrequencyDaily, true)
	inactive := seedItem(t, db, "Inactive item", Models.FrequencyDaily, false)

	// Deactivated-at-creation items must persist inactive and generate nothing.
	var stored Models.CleaningItem
	require.NoError(t, db.First(&stored, inactive.ID).Error)
	require.False(t, stored.Active)

	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC) // a Friday

	require.NoError(t, sweeper.GenerateTaskInstances(now))
	require.EqualValues(t, 1, taskCount(t, db))

	// Re-running the same day creates nothing new.
	require.NoError(t, sweeper.GenerateTaskInstances(now))
	require.NoError(t, sweeper.GenerateTaskInstances(now.Add(4*time.Hour)))
	require.EqualValues(t, 1, taskCount(t, db))

	// The next day gets its own instance.
	require.NoError(t, sweeper.GenerateTaskInstances(now.AddDate(0, 0, 1)))
	require.EqualValues(t, 2, taskCount(t, db))
}

func TestGenerateTaskInstancesHonorsFrequency(t *testing.T) {
	sweeper, db := sweeperWithDB(t)
	seedItem(t, db, "Daily wipe", Models.FrequencyDaily, true)
	seedItem(t, db, "Weekly scrub", Models.FrequencyWeekly, true)
	seedItem(t, db, "Monthly deep clean", Models.FrequencyMonthly, true)

	friday := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	require.NoError(t, sweeper.GenerateTaskInstances(friday))
	require.EqualValues(t, 1, taskCount(t, db)) // daily only

	monday := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)
	require.NoError(t, sweeper.GenerateTaskInstances(monday))
	require.EqualValues(t, 3, taskCount(t, db)) // daily again, weekly joins

	firstOfMonth := time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)
	require.NoError(t, sweeper.GenerateTaskInstances(firstOfMonth))
	require.EqualValues(t, 5, taskCount(t, db)) // daily again, monthly joins
}

func TestMarkOverdueTasks(t *testing.T) {
	sweeper, db := sweeperWithDB(t)
	item := seedItem(t, db, "Sanitize proofer", Models.FrequencyDaily, true)

	now := time.Date(2026, 8, 28, 2, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	stale := Models.TaskInstance{CleaningItemID: item.ID, DueDate: yesterday, Status: Models.TaskStatusPending}
	started := Models.TaskInstance{CleaningItemID: item.ID, DueDate: today, Status: Models.TaskStatusInProgress}
	done := Models.TaskInstance{CleaningItemID: item.ID, DueDate: today.AddDate(0, 0, 1), Status: Models.TaskStatusCompleted}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Create(&started).Error)
	require.NoError(t, db.Create(&done).Error)

	require.NoError(t, sweeper.MarkOverdueTasks(now))

	// Fresh destination per lookup: a reused struct would carry the previous
	// row's primary key into the next query.
	var gotStale Models.TaskInstance
	require.NoError(t, db.First(&gotStale, stale.ID).Error)
	require.Equal(t, Models.TaskStatusMissed, gotStale.Status)

	// Tasks due today and completed tasks are untouched.
	var gotStarted Models.TaskInstance
	require.NoError(t, db.First(&gotStarted, started.ID).Error)
	require.Equal(t, Models.TaskStatusInProgress, gotStarted.Status)
	var gotDone Models.TaskInstance
	require.NoError(t, db.First(&gotDone, done.ID).Error)
	require.Equal(t, Models.TaskStatusCompleted, gotDone.Status)

	// The sweep is stable under re-runs.
	require.NoError(t, sweeper.MarkOverdueTasks(now))
	var missed int64
	require.NoError(t, db.Model(&Models.TaskInstance{}).
		Where("status = ?", Models.TaskStatusMissed).Count(&missed).Error)
	require.EqualValues(t, 1, missed)
}

func TestExpireThermometerVerifications(t *testing.T) {
	sweeper, db := sweeperWithDB(t)

	dept := Models.Department{Name: "Bakery"}
	require.NoError(t, db.Create(&dept).Error)

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(48 * time.Hour)

	lapsed := Models.Thermometer{
		SerialNo: "TH-001", DepartmentID: dept.ID,
		Status: Models.ThermometerStatusVerified, VerifiedUntil: &past,
	}
	current := Models.Thermometer{
		SerialNo: "TH-002", DepartmentID: dept.ID,
		Status: Models.ThermometerStatusVerified, VerifiedUntil: &future,
	}
	require.NoError(t, db.Create(&lapsed).Error)
	require.NoError(t, db.Create(&current).Error)

	require.NoError(t, sweeper.ExpireThermometerVerifications(now))

	var gotLapsed Models.Thermometer
	require.NoError(t, db.First(&gotLapsed, lapsed.ID).Error)
	require.Equal(t, Models.ThermometerStatusExpired, gotLapsed.Status)
	var gotCurrent Models.Thermometer
	require.NoError(t, db.First(&gotCurrent, current.ID).Error)
	require.Equal(t, Models.ThermometerStatusVerified, gotCurrent.Status)
}

func TestArchiveOldTasks(t *testing.T) {
	sweeper, db := sweeperWithDB(t)
	item := seedItem(t, db, "Sanitize proofer", Models.FrequencyDaily, true)

	now := time.Date(2026, 8, 28, 2, 0, 0, 0, time.UTC)
	ancient := now.AddDate(0, 0, -(archiveAfterDays + 1))
	recent := now.AddDate(0, 0, -7)

	// The cutoff is exclusive: a task due exactly archiveAfterDays ago stays.
	old := Models.TaskInstance{CleaningItemID: item.ID, DueDate: ancient, Status: Models.TaskStatusCompleted}
	oldMissed := Models.TaskInstance{CleaningItemID: item.ID, DueDate: ancient.AddDate(0, 0, -1), Status: Models.TaskStatusMissed}
	atCutoff := Models.TaskInstance{CleaningItemID: item.ID, DueDate: truncateToDay(now).AddDate(0, 0, -archiveAfterDays), Status: Models.TaskStatusCompleted}
	fresh := Models.TaskInstance{CleaningItemID: item.ID, DueDate: recent, Status: Models.TaskStatusCompleted}
	oldPending := Models.TaskInstance{CleaningItemID: item.ID, DueDate: ancient.AddDate(0, 0, -2), Status: Models.TaskStatusPending}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&oldMissed).Error)
	require.NoError(t, db.Create(&atCutoff).Error)
	require.NoError(t, db.Create(&fresh).Error)
	require.NoError(t, db.Create(&oldPending).Error)

	require.NoError(t, sweeper.ArchiveOldTasks(now))

	var archived int64
	require.NoError(t, db.Model(&Models.TaskInstance{}).
		Where("status = ?", Models.TaskStatusArchived).Count(&archived).Error)
	require.EqualValues(t, 2, archived)

	// Only terminal statuses strictly older than the cutoff are archived.
	var gotAtCutoff Models.TaskInstance
	require.NoError(t, db.First(&gotAtCutoff, atCutoff.ID).Error)
	require.Equal(t, Models.TaskStatusCompleted, gotAtCutoff.Status)
	var gotFresh Models.TaskInstance
	require.NoError(t, db.First(&gotFresh, fresh.ID).Error)
	require.Equal(t, Models.TaskStatusCompleted, gotFresh.Status)
	var gotPending Models.TaskInstance
	require.NoError(t, db.First(&gotPending, oldPending.ID).Error)
	require.Equal(t, Models.TaskStatusPending, gotPending.Status)
}

func TestDueToday(t *testing.T) {
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	friday := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	firstOfMonth := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	require.True(t, dueToday(Models.FrequencyDaily, friday))
	require.True(t, dueToday(Models.FrequencyWeekly, monday))
	require.False(t, dueToday(Models.FrequencyWeekly, friday))
	require.True(t, dueToday(Models.FrequencyMonthly, firstOfMonth))
	require.False(t, dueToday(Models.FrequencyMonthly, friday))
	require.False(t, dueToday("quarterly", friday))
}
