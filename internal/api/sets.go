package api

import (
	"net/http"

	"flashdeck/internal/db"
	"flashdeck/internal/models"
	"flashdeck/internal/policy"
	"flashdeck/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

type setRequest struct {
	Title        string `json:"title" binding:"required,max=100"`
	Description  string `json:"description"`
	CollectionID uint   `json:"flashcard_collection" binding:"required"`
}

type setResponse struct {
	models.Set
	Owner string `json:"owner"`
}

func setJSON(s *models.Set) setResponse {
	owner := s.Collection.User.Username
	if owner == "" {
		var col models.Collection
		if err := db.DB.Preload("User").First(&col, s.CollectionID).Error; err == nil {
			owner = col.User.Username
		}
	}
	return setResponse{Set: *s, Owner: owner}
}

// fetchVisibleSet loads a set and its parent chain through the visibility
// filter; invisible sets read as missing.
func fetchVisibleSet(c *gin.Context, id uint) *models.Set {
	var s models.Set
	err := db.DB.Scopes(policy.SetScope(actor(c))).
		Preload("Collection").Preload("Collection.User").
		First(&s, "sets.id = ?", id).Error
	if err != nil {
		notFound(c)
		return nil
	}
	return &s
}

// ListSets returns the sets the actor may see. `?ordering=rating` orders by
// mean review rating, best first, unrated sets last.
func ListSets(c *gin.Context) {
	var sets []models.Set
	db.DB.Scopes(policy.SetScope(actor(c))).
		Preload("Collection").Preload("Collection.User").
		Order("sets.id ASC").Find(&sets)

	services.FillAverageRatings(sets)
	if c.Query("ordering") == "rating" {
		services.SortSetsByRating(sets)
	}

	out := make([]setResponse, len(sets))
	for i := range sets {
		out[i] = setJSON(&sets[i])
	}
	c.JSON(http.StatusOK, out)
}

func GetSet(c *gin.Context) {
	s := fetchVisibleSet(c, paramID(c))
	if s == nil {
		return
	}
	sets := []models.Set{*s}
	services.FillAverageRatings(sets)
	c.JSON(http.StatusOK, setJSON(&sets[0]))
}

func CreateSet(c *gin.Context) {
	var req setRequest
	if !bindJSON(c, &req) {
		return
	}

	col := fetchVisibleCollection(c, req.CollectionID)
	if col == nil {
		return
	}
	if d := policy.Authorize(actor(c), policy.EntitySet, policy.ActionCreate, policy.Target{Collection: col}); d.Denied() {
		forbidden(c, d)
		return
	}

	s := models.Set{
		Title:        req.Title,
		Description:  req.Description,
		CollectionID: col.ID,
	}
	if err := services.CreateSet(&s); err != nil {
		if err == services.ErrSetQuotaExceeded {
			forbidden(c, policy.Deny(policy.ReasonQuotaExceeded))
			return
		}
		serverError(c, err)
		return
	}
	s.Collection = *col
	c.JSON(http.StatusCreated, setJSON(&s))
}

func UpdateSet(c *gin.Context) {
	s := fetchVisibleSet(c, paramID(c))
	if s == nil {
		return
	}
	if d := policy.Authorize(actor(c), policy.EntitySet, policy.ActionUpdate, policy.Target{Set: s}); d.Denied() {
		forbidden(c, d)
		return
	}

	var req setRequest
	if !bindJSON(c, &req) {
		return
	}
	// A set can never move to another collection.
	if req.CollectionID != s.CollectionID {
		forbidden(c, policy.Deny(policy.ReasonImmutableField))
		return
	}

	s.Title = req.Title
	s.Description = req.Description
	if err := db.DB.Omit(clause.Associations).Save(s).Error; err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, setJSON(s))
}

func DeleteSet(c *gin.Context) {
	s := fetchVisibleSet(c, paramID(c))
	if s == nil {
		return
	}
	if d := policy.Authorize(actor(c), policy.EntitySet, policy.ActionDelete, policy.Target{Set: s}); d.Denied() {
		forbidden(c, d)
		return
	}

	if err := services.DeleteSet(s.ID); err != nil {
		serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
