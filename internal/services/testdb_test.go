package services

import (
	"fmt"
	"strings"
	"testing"

	"flashdeck/internal/db"
	"flashdeck/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB swaps the package database handle for an in-memory sqlite
// instance scoped to the test.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	prev := db.DB
	db.DB = gdb
	t.Cleanup(func() { db.DB = prev })
}

func createUser(t *testing.T, username string, superuser bool) *models.User {
	t.Helper()
	u := &models.User{Username: username, Password: "x", IsSuperuser: superuser}
	if err := db.DB.Create(u).Error; err != nil {
		t.Fatalf("creating user %s: %v", username, err)
	}
	return u
}

func createCollection(t *testing.T, owner *models.User, public bool) *models.Collection {
	t.Helper()
	c := &models.Collection{Title: "test collection", Public: public, UserID: owner.ID}
	if err := db.DB.Create(c).Error; err != nil {
		t.Fatalf("creating collection: %v", err)
	}
	return c
}

func createSet(t *testing.T, col *models.Collection, title string) *models.Set {
	t.Helper()
	s := &models.Set{Title: title, CollectionID: col.ID}
	if err := db.DB.Create(s).Error; err != nil {
		t.Fatalf("creating set: %v", err)
	}
	return s
}
