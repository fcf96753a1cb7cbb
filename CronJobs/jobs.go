package CronJobs

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"Culina/Models"
)

// Tasks completed or missed stay queryable for this many days before the
// archival sweep moves them to archived.
const archiveAfterDays = 90

// ComplianceSweeper runs the daily maintenance jobs: generating today's task
// instances, marking overdue tasks missed, expiring stale thermometer
// verifications, and archiving old tasks. Every job is idempotent and safe to
// re-run within the same day.
type ComplianceSweeper struct {
	db             *gorm.DB
	cronScheduler  *cron.Cron
	runImmediately bool
	jobID          cron.EntryID
}

// NewComplianceSweeper creates a sweeper with the given configuration
func NewComplianceSweeper(db *gorm.DB, runImmediately bool) *ComplianceSweeper {
	return &ComplianceSweeper{
		db:             db,
		cronScheduler:  cron.New(),
		runImmediately: runImmediately,
	}
}

// Start schedules the daily sweep
func (s *ComplianceSweeper) Start() error {
	var err error
	s.jobID, err = s.cronScheduler.AddFunc("0 1 * * *", func() {
		log.Println("Running scheduled daily compliance sweep")
		s.RunSweep(time.Now())
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	s.cronScheduler.Start()
	log.Println("Compliance sweeper started - will run daily at 1:00 AM")

	if s.runImmediately {
		log.Println("Running initial compliance sweep")
		s.RunSweep(time.Now())
	}
	return nil
}

// Stop terminates the sweeper
func (s *ComplianceSweeper) Stop() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
		log.Println("Compliance sweeper stopped")
	}
}

// RunSweep executes all sweep steps for the given day.
func (s *ComplianceSweeper) RunSweep(now time.Time) {
	if err := s.GenerateTaskInstances(now); err != nil {
		log.Printf("Error generating task instances: %v", err)
	}
	if err := s.MarkOverdueTasks(now); err != nil {
		log.Printf("Error marking overdue tasks: %v", err)
	}
	if err := s.ExpireThermometerVerifications(now); err != nil {
		log.Printf("Error expiring thermometer verifications: %v", err)
	}
	if err := s.ArchiveOldTasks(now); err != nil {
		log.Printf("Error archiving old tasks: %v", err)
	}
}

// GenerateTaskInstances creates today's task instance for every active
// cleaning item that is due. The unique (item, due_date) index makes re-runs
// no-ops.
func (s *ComplianceSweeper) GenerateTaskInstances(now time.Time) error {
	today := truncateToDay(now)

	var items []Models.CleaningItem
	if err := s.db.Where("active = ?", true).Find(&items).Error; err != nil {
		return err
	}

	created := 0
	for _, item := range items {
		if !dueToday(item.Frequency, today) {
			continue
		}
		var count int64
		if err := s.db.Model(&Models.TaskInstance{}).
			Where("cleaning_item_id = ? AND due_date = ?", item.ID, today).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		task := Models.TaskInstance{
			CleaningItemID: item.ID,
			DueDate:        today,
			Status:         Models.TaskStatusPending,
		}
		if err := s.db.Create(&task).Error; err != nil {
			return err
		}
		created++
	}
	if created > 0 {
		log.Printf("Generated %d task instances for %s", created, today.Format("2006-01-02"))
	}
	return nil
}

// MarkOverdueTasks moves pending and in-progress tasks whose due date has
// passed to missed. Tasks already missed are untouched, so re-running within
// the same day changes nothing.
func (s *ComplianceSweeper) MarkOverdueTasks(now time.Time) error {
	today := truncateToDay(now)

	result := s.db.Model(&Models.TaskInstance{}).
		Where("status IN ? AND due_date < ?",
			[]string{Models.TaskStatusPending, Models.TaskStatusInProgress}, today).
		Update("status", Models.TaskStatusMissed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Marked %d overdue tasks as missed", result.RowsAffected)
	}
	return nil
}

// ExpireThermometerVerifications drops thermometers whose verification window
// has lapsed back to expired.
func (s *ComplianceSweeper) ExpireThermometerVerifications(now time.Time) error {
	result := s.db.Model(&Models.Thermometer{}).
		Where("status = ? AND verified_until < ?", Models.ThermometerStatusVerified, now).
		Update("status", Models.ThermometerStatusExpired)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Expired %d thermometer verifications", result.RowsAffected)
	}
	return nil
}

// ArchiveOldTasks is the only path into the terminal archived status.
func (s *ComplianceSweeper) ArchiveOldTasks(now time.Time) error {
	cutoff := truncateToDay(now).AddDate(0, 0, -archiveAfterDays)

	result := s.db.Model(&Models.TaskInstance{}).
		Where("status IN ? AND due_date < ?",
			[]string{Models.TaskStatusCompleted, Models.TaskStatusMissed}, cutoff).
		Update("status", Models.TaskStatusArchived)
	if result.Error != nil {
		return result.Error
	}

	prodResult := s.db.Model(&Models.RecipeProductionTask{}).
		Where("status IN ? AND scheduled_for < ?",
			[]string{Models.ProductionStatusCompleted, Models.ProductionStatusCancelled}, cutoff).
		Update("status", Models.ProductionStatusArchived)
	if prodResult.Error != nil {
		return prodResult.Error
	}

	if n := result.RowsAffected + prodResult.RowsAffected; n > 0 {
		log.Printf("Archived %d old tasks", n)
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dueToday decides whether a cleaning item generates an instance on the given
// day: daily items always, weekly items on Mondays, monthly items on the 1st.
func dueToday(frequency string, day time.Time) bool {
	switch frequency {
	case Models.FrequencyDaily:
		return true
	case Models.FrequencyWeekly:
		return day.Weekday() == time.Monday
	case Models.FrequencyMonthly:
		return day.Day() == 1
	default:
		return false
	}
}
