package Models

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	var err error
	if host := os.Getenv("DB_HOST"); host != "" {
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			host,
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			os.Getenv("DB_PORT"),
		)
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	} else {
		DB, err = gorm.Open(sqlite.Open("database.db"), &gorm.Config{})
	}
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Migration failed:", err)
	}

	if err := seedSuperuser(DB); err != nil {
		log.Println("Superuser seed skipped:", err)
	}
}

// Migrate runs AutoMigrate in FK dependency order.
func Migrate(db *gorm.DB) error {
	// 1. Base entities with no dependencies
	if err := db.AutoMigrate(
		&Department{},
		&User{},
	); err != nil {
		return err
	}

	// 2. Entities with a single foreign key
	if err := db.AutoMigrate(
		&Profile{},
		&AreaUnit{},
		&CleaningItem{},
		&Recipe{},
		&Thermometer{},
	); err != nil {
		return err
	}

	// 3. Entities depending on multiple parents
	return db.AutoMigrate(
		&TaskInstance{},
		&TaskStatusHistory{},
		&RecipeProductionTask{},
		&ThermometerVerificationAssignment{},
		&ThermometerVerificationRecord{},
		&TemperatureLog{},
	)
}

// seedSuperuser makes sure a login exists on a fresh database. Credentials come
// from ADMIN_USERNAME / ADMIN_PASSWORD; nothing is seeded when they are unset.
func seedSuperuser(db *gorm.DB) error {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return fmt.Errorf("ADMIN_USERNAME/ADMIN_PASSWORD not set")
	}

	var count int64
	if err := db.Model(&User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := User{
		Username:    username,
		Password:    hash,
		Name:        "Administrator",
		IsSuperuser: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("Seeded superuser %q", username)
	return nil
}
