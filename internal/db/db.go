package db

import (
	"log"
	"os"

	"flashdeck/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=flashdeck port=5432 sslmode=disable"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")
}

// Migrate creates the schema. Split out so tests can run it against their
// own database handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Collection{},
		&models.Set{},
		&models.Card{},
		&models.Comment{},
		&models.Review{},
	)
}

// SeedSuperuser creates the admin account from ADMIN_USERNAME/ADMIN_PASSWORD
// if it does not exist yet. The hash function is passed in to keep this
// package from importing utils.
func SeedSuperuser(hashFn func(string) (string, error)) {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return
	}

	var count int64
	DB.Model(&models.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		return
	}

	hash, err := hashFn(password)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}

	admin := models.User{
		Username:    username,
		Password:    hash,
		IsStaff:     true,
		IsSuperuser: true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("Failed to create admin user %s: %v", username, err)
		return
	}
	log.Printf("Superuser %s created", username)
}
