package api

import (
	"net/http"

	"flashdeck/internal/db"
	"flashdeck/internal/models"
	"flashdeck/internal/policy"
	"flashdeck/internal/services"

	"github.com/gin-gonic/gin"
)

type collectionRequest struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type collectionResponse struct {
	models.Collection
	SetIDs []uint `json:"flashcard_set"`
}

func collectionJSON(col *models.Collection) collectionResponse {
	var setIDs []uint
	db.DB.Model(&models.Set{}).Where("collection_id = ?", col.ID).Pluck("id", &setIDs)
	if setIDs == nil {
		setIDs = []uint{}
	}
	return collectionResponse{Collection: *col, SetIDs: setIDs}
}

// fetchVisibleCollection loads a collection through the visibility filter.
// Missing and invisible rows are indistinguishable to the caller.
func fetchVisibleCollection(c *gin.Context, id uint) *models.Collection {
	var col models.Collection
	err := db.DB.Scopes(policy.CollectionScope(actor(c))).First(&col, id).Error
	if err != nil {
		notFound(c)
		return nil
	}
	return &col
}

func ListCollections(c *gin.Context) {
	var cols []models.Collection
	db.DB.Scopes(policy.CollectionScope(actor(c))).Order("id ASC").Find(&cols)

	out := make([]collectionResponse, len(cols))
	for i := range cols {
		out[i] = collectionJSON(&cols[i])
	}
	c.JSON(http.StatusOK, out)
}

func GetCollection(c *gin.Context) {
	col := fetchVisibleCollection(c, paramID(c))
	if col == nil {
		return
	}
	c.JSON(http.StatusOK, collectionJSON(col))
}

func CreateCollection(c *gin.Context) {
	user := actor(c)
	if d := policy.Authorize(user, policy.EntityCollection, policy.ActionCreate, policy.Target{}); d.Denied() {
		forbidden(c, d)
		return
	}

	var req collectionRequest
	if !bindJSON(c, &req) {
		return
	}

	col := models.Collection{
		Title:       req.Title,
		Description: req.Description,
		Public:      req.Public,
		UserID:      user.ID, // owner is always the caller
	}
	if err := db.DB.Create(&col).Error; err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, collectionJSON(&col))
}

func UpdateCollection(c *gin.Context) {
	col := fetchVisibleCollection(c, paramID(c))
	if col == nil {
		return
	}
	if d := policy.Authorize(actor(c), policy.EntityCollection, policy.ActionUpdate, policy.Target{Collection: col}); d.Denied() {
		forbidden(c, d)
		return
	}

	var req collectionRequest
	if !bindJSON(c, &req) {
		return
	}

	// Owner is immutable; the payload carries no say in it.
	col.Title = req.Title
	col.Description = req.Description
	col.Public = req.Public
	if err := db.DB.Save(col).Error; err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, collectionJSON(col))
}

func DeleteCollection(c *gin.Context) {
	col := fetchVisibleCollection(c, paramID(c))
	if col == nil {
		return
	}
	if d := policy.Authorize(actor(c), policy.EntityCollection, policy.ActionDelete, policy.Target{Collection: col}); d.Denied() {
		forbidden(c, d)
		return
	}

	if err := services.DeleteCollection(col.ID); err != nil {
		serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
