package Authorization

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

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	return db
}

type scopeFixture struct {
	bakery   Models.Department
	butchery Models.Department

	bakeryManager Models.User
	bakeryStaff   Models.User
	admin         Models.User
	noProfile     Models.User
	noDepartment  Models.User

	bakeryItem   Models.CleaningItem
	butcheryItem Models.CleaningItem
}

func seedScope(t *testing.T, db *gorm.DB) scopeFixture {
	t.Helper()
	fx := scopeFixture{
		bakery:   Models.Department{Name: "Bakery"},
		butchery: Models.Department{Name: "Butchery"},
	}
	require.NoError(t, db.Create(&fx.bakery).Error)
	require.NoError(t, db.Create(&fx.butchery).Error)

	fx.bakeryManager = Models.User{Username: "bakery.manager"}
	require.NoError(t, db.Create(&fx.bakeryManager).Error)
	fx.bakeryManager.Profile = &Models.Profile{
		UserID: fx.bakeryManager.ID, Role: Models.RoleManager, DepartmentID: &fx.bakery.ID,
	}
	require.NoError(t, db.Create(fx.bakeryManager.Profile).Error)

	fx.bakeryStaff = Models.User{Username: "bakery.staff"}
	require.NoError(t, db.Create(&fx.bakeryStaff).Error)
	fx.bakeryStaff.Profile = &Models.Profile{
		UserID: fx.bakeryStaff.ID, Role: Models.RoleStaff, DepartmentID: &fx.bakery.ID,
	}
	require.NoError(t, db.Create(fx.bakeryStaff.Profile).Error)

	fx.admin = Models.User{Username: "admin", IsSuperuser: true}
	require.NoError(t, db.Create(&fx.admin).Error)

	fx.noProfile = Models.User{Username: "ghost"}
	require.NoError(t, db.Create(&fx.noProfile).Error)

	fx.noDepartment = Models.User{Username: "floater"}
	require.NoError(t, db.Create(&fx.noDepartment).Error)
	fx.noDepartment.Profile = &Models.Profile{UserID: fx.noDepartment.ID, Role: Models.RoleStaff}
	require.NoError(t, db.Create(fx.noDepartment.Profile).Error)

	fx.bakeryItem = Models.CleaningItem{
		Name: "Sanitize proofer", DepartmentID: fx.bakery.ID, Frequency: Models.FrequencyDaily, Active: true,
	}
	require.NoError(t, db.Create(&fx.bakeryItem).Error)

	fx.butcheryItem = Models.CleaningItem{
		Name: "Degrease saw", DepartmentID: fx.butchery.ID, Frequency: Models.FrequencyDaily, Active: true,
	}
	require.NoError(t, db.Create(&fx.butcheryItem).Error)

	return fx
}

func countItems(t *testing.T, q *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, q.Count(&n).Error)
	return n
}

func TestScopeSuperuserSeesAll(t *testing.T) {
	db := testDB(t)
	fx := seedScope(t, db)

	q := ScopeByDepartmentColumn(db.Model(&Models.CleaningItem{}), &fx.admin)
	require.EqualValues(t, 2, countItems(t, q))
}

func TestScopeManagerSeesOwnDepartment(t *testing.T) {
	db := testDB(t)
	fx := seedScope(t, db)

	var items []Models.CleaningItem
	q := ScopeByDepartmentColumn(db.Model(&Models.CleaningItem{}), &fx.bakeryManager)
	require.NoError(t, q.Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, fx.bakeryItem.ID, items[0].ID)
}

func TestScopeNoProfileYieldsEmptySet(t *testing.T) {
	db := testDB(t)
	fx := seedScope(t, db)

	q := ScopeByDepartmentColumn(db.Model(&Models.CleaningItem{}), &fx.noProfile)
	require.EqualValues(t, 0, countItems(t, q))
}

func TestScopeNoDepartmentYieldsEmptySet(t *testing.T) {
	db := testDB(t)
	fx := seedScope(t, db)

	q := ScopeByDepartmentColumn(db.Model(&Models.CleaningItem{}), &fx.noDepartment)
	require.EqualValues(t, 0, countItems(t, q))
}

func TestScopeNilUserYieldsEmptySet(t *testing.T) {
	db := testDB(t)
	seedScope(t, db)

	q := ScopeByDepartmentColumn(db.Model(&Models.CleaningItem{}), nil)
	require.EqualValues(t, 0, countItems(t, q))
}

func TestScopeTaskInstancesForStaffAndManager(t *testing.T) {
	db := testDB(t)
	fx := seedScope(t, db)

	today := time.Now()
	assigned := Models.TaskInstance{
		CleaningItemID: fx.bakeryItem.ID,
		DueDate:        today,
		Status:         Models.TaskStatusPending,
		AssignedToID:   &fx.bakeryStaff.Profile.ID,
	}
	require.NoError(t, db.Create(&assigned).Error)

	unassigned := Models.TaskInstance{
		CleaningItemID: fx.bakeryItem.ID,
		DueDate:        today.AddDate(0, 0, 1),
		Status:         Models.TaskStatusPending,
	}
	require.NoError(t, db.Create(&unassigned).Error)

	otherDept := Models.TaskInstance{
		CleaningItemID: fx.butcheryItem.ID,
		DueDate:        today,
		Status:         Models.TaskStatusPending,
	}
	require.NoError(t, db.Create(&otherDept).Error)

	// Staff see only their assigned, in-department tasks.
	var tasks []Models.TaskInstance
	q := ScopeTaskInstances(db.Model(&Models.TaskInstance{}), &fx.bakeryStaff)
	require.NoError(t, q.Find(&tasks).Error)
	require.Len(t, tasks, 1)
	require.Equal(t, assigned.ID, tasks[0].ID)

	// Managers see the whole department but nothing beyond it.
	q = ScopeTaskInstances(db.Model(&Models.TaskInstance{}), &fx.bakeryManager)
	require.NoError(t, q.Find(&tasks).Error)
	require.Len(t, tasks, 2)

	// Superusers see everything.
	q = ScopeTaskInstances(db.Model(&Models.TaskInstance{}), &fx.admin)
	require.NoError(t, q.Find(&tasks).Error)
	require.Len(t, tasks, 3)
}

func TestScopeUsers(t *testing.T) {
	db := testDB(t)
	fx := seedScope(t, db)

	// Managers list the users of their department.
	var users []Models.User
	q := ScopeUsers(db.Model(&Models.User{}), &fx.bakeryManager)
	require.NoError(t, q.Find(&users).Error)
	require.Len(t, users, 2)

	// Staff list only themselves.
	q = ScopeUsers(db.Model(&Models.User{}), &fx.bakeryStaff)
	require.NoError(t, q.Find(&users).Error)
	require.Len(t, users, 1)
	require.Equal(t, fx.bakeryStaff.ID, users[0].ID)
}
