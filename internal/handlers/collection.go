package handlers

import (
	"net/http"

	"flashdeck/internal/db"
	"flashdeck/internal/middleware"
	"flashdeck/internal/models"
	"flashdeck/internal/policy"
	"flashdeck/internal/services"
	"flashdeck/internal/utils"

	"github.com/gin-gonic/gin"
)

type CollectionHandler struct{}

func NewCollectionHandler() *CollectionHandler {
	return &CollectionHandler{}
}

// loadVisible fetches a collection through the visibility filter. Private
// collections of other users read as missing, not as forbidden.
func (h *CollectionHandler) loadVisible(c *gin.Context) *models.Collection {
	user := middleware.CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	var col models.Collection
	err := db.DB.Scopes(policy.CollectionScope(user)).Preload("User").First(&col, id).Error
	if err != nil {
		RenderError(c, http.StatusNotFound, "Collection not found")
		return nil
	}
	return &col
}

func (h *CollectionHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var cols []models.Collection
	db.DB.Scopes(policy.CollectionScope(user)).
		Preload("User").
		Order("updated_at DESC").
		Find(&cols)

	Render(c, http.StatusOK, "collection/list.html", gin.H{
		"Title":       "Collections",
		"Collections": cols,
	})
}

func (h *CollectionHandler) Detail(c *gin.Context) {
	col := h.loadVisible(c)
	if col == nil {
		return
	}

	var sets []models.Set
	db.DB.Where("collection_id = ?", col.ID).Order("updated_at DESC").Find(&sets)
	services.FillAverageRatings(sets)

	Render(c, http.StatusOK, "collection/detail.html", gin.H{
		"Title":       col.Title,
		"Collection":  col,
		"Description": utils.RenderMarkdown(col.Description),
		"Sets":        sets,
		"IsOwner":     middleware.CurrentUser(c) != nil && middleware.CurrentUser(c).ID == col.UserID,
	})
}

func (h *CollectionHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "collection/create.html", gin.H{"Title": "New collection"})
}

func (h *CollectionHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	title := c.PostForm("title")
	if title == "" || len(title) > 100 {
		Render(c, http.StatusBadRequest, "collection/create.html", gin.H{"Error": "Title is required and at most 100 characters"})
		return
	}

	col := models.Collection{
		Title:       title,
		Description: c.PostForm("description"),
		Public:      c.PostForm("public") == "on",
		UserID:      user.ID,
	}
	if err := db.DB.Create(&col).Error; err != nil {
		Render(c, http.StatusInternalServerError, "collection/create.html", gin.H{"Error": "Could not create collection"})
		return
	}

	c.Redirect(http.StatusFound, "/collections/"+utils.UintToString(col.ID))
}

func (h *CollectionHandler) ShowEdit(c *gin.Context) {
	col := h.loadVisible(c)
	if col == nil {
		return
	}
	user := middleware.CurrentUser(c)
	if d := policy.Authorize(user, policy.EntityCollection, policy.ActionUpdate, policy.Target{Collection: col}); d.Denied() {
		RenderError(c, http.StatusForbidden, "You may not edit this collection")
		return
	}

	Render(c, http.StatusOK, "collection/edit.html", gin.H{
		"Title":      "Edit collection",
		"Collection": col,
	})
}

func (h *CollectionHandler) Update(c *gin.Context) {
	col := h.loadVisible(c)
	if col == nil {
		return
	}
	user := middleware.CurrentUser(c)
	if d := policy.Authorize(user, policy.EntityCollection, policy.ActionUpdate, policy.Target{Collection: col}); d.Denied() {
		RenderError(c, http.StatusForbidden, "You may not edit this collection")
		return
	}

	title := c.PostForm("title")
	if title == "" || len(title) > 100 {
		Render(c, http.StatusBadRequest, "collection/edit.html", gin.H{"Error": "Title is required and at most 100 characters", "Collection": col})
		return
	}

	col.Title = title
	col.Description = c.PostForm("description")
	col.Public = c.PostForm("public") == "on"
	if err := db.DB.Omit("User", "Sets").Save(col).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not save collection")
		return
	}

	c.Redirect(http.StatusFound, "/collections/"+utils.UintToString(col.ID))
}

func (h *CollectionHandler) Delete(c *gin.Context) {
	col := h.loadVisible(c)
	if col == nil {
		return
	}
	user := middleware.CurrentUser(c)
	if d := policy.Authorize(user, policy.EntityCollection, policy.ActionDelete, policy.Target{Collection: col}); d.Denied() {
		RenderError(c, http.StatusForbidden, "You may not delete this collection")
		return
	}

	if err := services.DeleteCollection(col.ID); err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not delete collection")
		return
	}
	c.Redirect(http.StatusFound, "/collections")
}
