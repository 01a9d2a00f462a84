package policy

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

type fixture struct {
	owner, other, super   *models.User
	publicSet, privateSet *models.Set
}

func setupVisibilityDB(t *testing.T) fixture {
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

	f := fixture{
		owner: &models.User{Username: "owner"},
		other: &models.User{Username: "other"},
		super: &models.User{Username: "super", IsSuperuser: true},
	}
	for _, u := range []*models.User{f.owner, f.other, f.super} {
		if err := gdb.Create(u).Error; err != nil {
			t.Fatal(err)
		}
	}

	pub := &models.Collection{Title: "public", Public: true, UserID: f.owner.ID}
	priv := &models.Collection{Title: "private", Public: false, UserID: f.owner.ID}
	gdb.Create(pub)
	gdb.Create(priv)

	f.publicSet = &models.Set{Title: "public set", CollectionID: pub.ID}
	f.privateSet = &models.Set{Title: "private set", CollectionID: priv.ID}
	gdb.Create(f.publicSet)
	gdb.Create(f.privateSet)

	gdb.Create(&models.Card{Question: "q", Answer: "a", Difficulty: models.DifficultyEasy, SetID: f.publicSet.ID})
	gdb.Create(&models.Card{Question: "q", Answer: "a", Difficulty: models.DifficultyEasy, SetID: f.privateSet.ID})

	gdb.Create(&models.Comment{Comment: "on public", SetID: f.publicSet.ID, UserID: f.other.ID})
	gdb.Create(&models.Comment{Comment: "on private by owner", SetID: f.privateSet.ID, UserID: f.owner.ID})

	gdb.Create(&models.Review{Rating: 5, SetID: f.publicSet.ID, UserID: f.other.ID})
	gdb.Create(&models.Review{Rating: 1, SetID: f.privateSet.ID, UserID: f.owner.ID})

	return f
}

func countScoped(t *testing.T, model interface{}, scope func(*gorm.DB) *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.DB.Model(model).Scopes(scope).Count(&n).Error; err != nil {
		t.Fatalf("counting: %v", err)
	}
	return n
}

func TestCollectionScope(t *testing.T) {
	f := setupVisibilityDB(t)

	if n := countScoped(t, &models.Collection{}, CollectionScope(nil)); n != 1 {
		t.Fatalf("anonymous sees %d collections, want 1", n)
	}
	if n := countScoped(t, &models.Collection{}, CollectionScope(f.other)); n != 1 {
		t.Fatalf("non-owner sees %d collections, want 1", n)
	}
	if n := countScoped(t, &models.Collection{}, CollectionScope(f.owner)); n != 2 {
		t.Fatalf("owner sees %d collections, want 2", n)
	}
	if n := countScoped(t, &models.Collection{}, CollectionScope(f.super)); n != 2 {
		t.Fatalf("superuser sees %d collections, want 2", n)
	}
}

func TestSetScope(t *testing.T) {
	f := setupVisibilityDB(t)

	if n := countScoped(t, &models.Set{}, SetScope(nil)); n != 1 {
		t.Fatalf("anonymous sees %d sets, want 1", n)
	}
	if n := countScoped(t, &models.Set{}, SetScope(f.owner)); n != 2 {
		t.Fatalf("owner sees %d sets, want 2", n)
	}
	if n := countScoped(t, &models.Set{}, SetScope(f.super)); n != 2 {
		t.Fatalf("superuser sees %d sets, want 2", n)
	}

	var private models.Set
	err := db.DB.Scopes(SetScope(f.other)).First(&private, "sets.id = ?", f.privateSet.ID).Error
	if err != gorm.ErrRecordNotFound {
		t.Fatalf("fetching private set as non-owner: err = %v, want not found", err)
	}
}

func TestCardScope(t *testing.T) {
	f := setupVisibilityDB(t)

	if n := countScoped(t, &models.Card{}, CardScope(nil)); n != 1 {
		t.Fatalf("anonymous sees %d cards, want 1", n)
	}
	if n := countScoped(t, &models.Card{}, CardScope(f.owner)); n != 2 {
		t.Fatalf("owner sees %d cards, want 2", n)
	}
}

func TestCommentScope(t *testing.T) {
	f := setupVisibilityDB(t)

	if n := countScoped(t, &models.Comment{}, CommentScope(nil)); n != 1 {
		t.Fatalf("anonymous sees %d comments, want 1", n)
	}
	// The owner authored the comment on the private set and sees both.
	if n := countScoped(t, &models.Comment{}, CommentScope(f.owner)); n != 2 {
		t.Fatalf("author sees %d comments, want 2", n)
	}
	if n := countScoped(t, &models.Comment{}, CommentScope(f.other)); n != 1 {
		t.Fatalf("non-author sees %d comments, want 1", n)
	}
}

func TestReviewScopeIsUnrestricted(t *testing.T) {
	setupVisibilityDB(t)

	if n := countScoped(t, &models.Review{}, ReviewScope(nil)); n != 2 {
		t.Fatalf("anonymous sees %d reviews, want 2", n)
	}
}

func TestVisibilityPredicates(t *testing.T) {
	f := setupVisibilityDB(t)

	var private models.Set
	if err := db.DB.Preload("Collection").First(&private, f.privateSet.ID).Error; err != nil {
		t.Fatal(err)
	}

	if IsSetVisible(nil, &private) {
		t.Fatal("anonymous should not see a private set")
	}
	if IsSetVisible(f.other, &private) {
		t.Fatal("non-owner should not see a private set")
	}
	if !IsSetVisible(f.owner, &private) {
		t.Fatal("owner should see their private set")
	}
	if !IsSetVisible(f.super, &private) {
		t.Fatal("superuser should see everything")
	}
}
