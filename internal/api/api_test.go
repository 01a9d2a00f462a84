package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flashdeck/internal/db"
	"flashdeck/internal/models"
	"flashdeck/internal/router"
	"flashdeck/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test"))))
	router.RegisterRoutes(r)
	return r
}

func newUser(t *testing.T, username string, superuser bool) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatal(err)
	}
	u := &models.User{Username: username, Password: hash, IsSuperuser: superuser}
	if err := db.DB.Create(u).Error; err != nil {
		t.Fatal(err)
	}
	return u
}

func token(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := utils.GenerateToken(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func doJSON(r *gin.Engine, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return out
}

func seedSet(t *testing.T, owner *models.User, public bool) (*models.Collection, *models.Set) {
	t.Helper()
	col := &models.Collection{Title: "col", Public: public, UserID: owner.ID}
	if err := db.DB.Create(col).Error; err != nil {
		t.Fatal(err)
	}
	s := &models.Set{Title: "set", CollectionID: col.ID}
	if err := db.DB.Create(s).Error; err != nil {
		t.Fatal(err)
	}
	return col, s
}

func TestVersionEndpoint(t *testing.T) {
	r := setupServer(t)

	w := doJSON(r, http.MethodGet, "/api/version", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decode(t, w)["version"]; got != "1.0.0" {
		t.Fatalf("version = %v", got)
	}
}

func TestAnonymousGets403(t *testing.T) {
	r := setupServer(t)

	for _, path := range []string{"/api/collections", "/api/sets", "/api/cards", "/api/comments"} {
		w := doJSON(r, http.MethodGet, path, "", nil)
		if w.Code != http.StatusForbidden {
			t.Fatalf("GET %s = %d, want 403", path, w.Code)
		}
		if detail := decode(t, w)["detail"]; detail != "Authentication credentials were not provided." {
			t.Fatalf("detail = %v", detail)
		}
	}
}

func TestReviewsReadableAnonymously(t *testing.T) {
	r := setupServer(t)
	owner := newUser(t, "owner", false)
	_, s := seedSet(t, owner, false)
	db.DB.Create(&models.Review{Rating: 3, SetID: s.ID, UserID: owner.ID})

	w := doJSON(r, http.MethodGet, "/api/reviews", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var reviews []models.Review
	if err := json.Unmarshal(w.Body.Bytes(), &reviews); err != nil {
		t.Fatal(err)
	}
	if len(reviews) != 1 {
		t.Fatalf("got %d reviews, want 1", len(reviews))
	}
}

func TestTokenEndpoint(t *testing.T) {
	r := setupServer(t)
	newUser(t, "alice", false)

	w := doJSON(r, http.MethodPost, "/api/auth/token", "", gin.H{"username": "alice", "password": "password123"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	tok, _ := decode(t, w)["token"].(string)
	if tok == "" {
		t.Fatal("no token in response")
	}

	w = doJSON(r, http.MethodGet, "/api/collections", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("authenticated list = %d, want 200", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/api/auth/token", "", gin.H{"username": "alice", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password = %d, want 401", w.Code)
	}
}

func TestPrivateSetHiddenAsNotFound(t *testing.T) {
	r := setupServer(t)
	owner := newUser(t, "owner", false)
	other := newUser(t, "other", false)
	super := newUser(t, "super", true)
	_, s := seedSet(t, owner, false)
	path := fmt.Sprintf("/api/sets/%d", s.ID)

	if w := doJSON(r, http.MethodGet, path, token(t, other), nil); w.Code != http.StatusNotFound {
		t.Fatalf("non-owner = %d, want 404", w.Code)
	}
	if w := doJSON(r, http.MethodGet, path, token(t, owner), nil); w.Code != http.StatusOK {
		t.Fatalf("owner = %d, want 200", w.Code)
	}
	if w := doJSON(r, http.MethodGet, path, token(t, super), nil); w.Code != http.StatusOK {
		t.Fatalf("superuser = %d, want 200", w.Code)
	}
}

func TestCollectionUpdateIsOwnerOnly(t *testing.T) {
	r := setupServer(t)
	owner := newUser(t, "owner", false)
	super := newUser(t, "super", true)
	col, _ := seedSet(t, owner, true)
	path := fmt.Sprintf("/api/collections/%d", col.ID)
	payload := gin.H{"title": "renamed", "public": true}

	w := doJSON(r, http.MethodPut, path, token(t, super), payload)
	if w.Code != http.StatusForbidden {
		t.Fatalf("superuser update = %d, want 403", w.Code)
	}
	if reason := decode(t, w)["reason"]; reason != "not-owner" {
		t.Fatalf("reason = %v", reason)
	}

	w = doJSON(r, http.MethodPut, path, token(t, owner), payload)
	if w.Code != http.StatusOK {
		t.Fatalf("owner update = %d: %s", w.Code, w.Body.String())
	}

	// Deletion is different: superusers may clean up any collection.
	w = doJSON(r, http.MethodDelete, path, token(t, super), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("superuser delete = %d, want 204", w.Code)
	}
}

func TestSetCreationQuota(t *testing.T) {
	r := setupServer(t)
	owner := newUser(t, "owner", false)
	col, _ := seedSet(t, owner, true)

	// One set exists from the fixture; fill the day up to 19 total.
	for i := 0; i < 18; i++ {
		db.DB.Create(&models.Set{Title: "filler", CollectionID: col.ID})
	}

	w := doJSON(r, http.MethodPost, "/api/sets", token(t, owner),
		gin.H{"title": "one too many", "flashcard_collection": col.ID})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", w.Code, w.Body.String())
	}
	if reason := decode(t, w)["reason"]; reason != "quota-exceeded" {
		t.Fatalf("reason = %v", reason)
	}
}

func TestCreateReviewAliasesToUpdate(t *testing.T) {
	r := setupServer(t)
	owner := newUser(t, "owner", false)
	rater := newUser(t, "rater", false)
	_, s := seedSet(t, owner, true)

	w := doJSON(r, http.MethodPost, "/api/reviews", token(t, rater),
		gin.H{"rating": 4, "flashcard_set": s.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("first review = %d: %s", w.Code, w.Body.String())
	}

	// Second submission for the same set updates in place, whatever set the
	// payload claims on the existing row.
	w = doJSON(r, http.MethodPost, "/api/reviews", token(t, rater),
		gin.H{"rating": 1, "comment": "meh", "flashcard_set": s.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("repeat review = %d, want 200: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["rating"] != float64(1) {
		t.Fatalf("rating = %v, want 1", body["rating"])
	}
	if body["flashcard_set"] != float64(s.ID) {
		t.Fatalf("flashcard_set = %v, want %d", body["flashcard_set"], s.ID)
	}

	var count int64
	db.DB.Model(&models.Review{}).Where("user_id = ?", rater.ID).Count(&count)
	if count != 1 {
		t.Fatalf("review rows = %d, want 1", count)
	}
}

func TestUpdateReviewIgnoresPayloadSet(t *testing.T) {
	r := setupServer(t)
	owner := newUser(t, "owner", false)
	_, home := seedSet(t, owner, true)
	_, elsewhere := seedSet(t, owner, true)

	review := &models.Review{Rating: 3, SetID: home.ID, UserID: owner.ID}
	db.DB.Create(review)

	w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/reviews/%d", review.ID), token(t, owner),
		gin.H{"rating": 5, "flashcard_set": elsewhere.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var stored models.Review
	db.DB.First(&stored, review.ID)
	if stored.SetID != home.ID {
		t.Fatalf("review moved to set %d, want %d", stored.SetID, home.ID)
	}
	if stored.Rating != 5 {
		t.Fatalf("rating = %d, want 5", stored.Rating)
	}
}

func TestBlankCommentRejected(t *testing.T) {
	r := setupServer(t)
	owner := newUser(t, "owner", false)
	_, s := seedSet(t, owner, true)

	w := doJSON(r, http.MethodPost, "/api/comments", token(t, owner),
		gin.H{"comment": "", "flashcard_set": s.ID})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestCardDifficultyValidated(t *testing.T) {
	r := setupServer(t)
	owner := newUser(t, "owner", false)
	_, s := seedSet(t, owner, true)

	w := doJSON(r, http.MethodPost, "/api/cards", token(t, owner),
		gin.H{"question": "q", "answer": "a", "difficulty": "impossible", "flashcard_set": s.ID})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/api/cards", token(t, owner),
		gin.H{"question": "q", "answer": "a", "difficulty": "hard", "flashcard_set": s.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
}

func TestUserAdministration(t *testing.T) {
	r := setupServer(t)
	regular := newUser(t, "regular", false)
	super := newUser(t, "super", true)
	otherSuper := newUser(t, "root", true)

	// Listing users is superuser-only.
	if w := doJSON(r, http.MethodGet, "/api/users", token(t, regular), nil); w.Code != http.StatusForbidden {
		t.Fatalf("regular list = %d, want 403", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/api/users", token(t, super), nil); w.Code != http.StatusOK {
		t.Fatalf("superuser list = %d, want 200", w.Code)
	}

	// A superuser may remove a regular account but never another superuser.
	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/users/%d", otherSuper.ID), token(t, super), nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("delete superuser = %d, want 403", w.Code)
	}
	if reason := decode(t, w)["reason"]; reason != "self-protect" {
		t.Fatalf("reason = %v", reason)
	}

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/users/%d", regular.ID), token(t, super), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete regular = %d, want 204", w.Code)
	}
}

func TestRegistrationIsOpen(t *testing.T) {
	r := setupServer(t)

	w := doJSON(r, http.MethodPost, "/api/users", "", gin.H{"username": "newcomer", "password": "password123"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	// Duplicate usernames are reported, not stored.
	w = doJSON(r, http.MethodPost, "/api/users", "", gin.H{"username": "newcomer", "password": "password123"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate = %d, want 400: %s", w.Code, w.Body.String())
	}
}
