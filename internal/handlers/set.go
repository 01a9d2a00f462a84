package handlers

import (
	"html/template"
	"net/http"

	"flashdeck/internal/db"
	"flashdeck/internal/middleware"
	"flashdeck/internal/models"
	"flashdeck/internal/policy"
	"flashdeck/internal/services"
	"flashdeck/internal/utils"

	"github.com/gin-gonic/gin"
)

type SetHandler struct{}

func NewSetHandler() *SetHandler {
	return &SetHandler{}
}

func (h *SetHandler) loadVisible(c *gin.Context) *models.Set {
	user := middleware.CurrentUser(c)
	id := utils.StringToUint(c.Param("id"))

	var s models.Set
	err := db.DB.Scopes(policy.SetScope(user)).
		Preload("Collection").Preload("Collection.User").
		First(&s, "sets.id = ?", id).Error
	if err != nil {
		RenderError(c, http.StatusNotFound, "Set not found")
		return nil
	}
	return &s
}

func (h *SetHandler) Detail(c *gin.Context) {
	s := h.loadVisible(c)
	if s == nil {
		return
	}
	user := middleware.CurrentUser(c)

	var cards []models.Card
	db.DB.Where("set_id = ?", s.ID).Order("id ASC").Find(&cards)

	var comments []models.Comment
	db.DB.Preload("User").Where("set_id = ?", s.ID).Order("created_at ASC").Find(&comments)

	type renderedComment struct {
		models.Comment
		ContentHTML template.HTML
	}
	rendered := make([]renderedComment, len(comments))
	for i, com := range comments {
		rendered[i] = renderedComment{Comment: com, ContentHTML: utils.RenderMarkdown(com.Comment)}
	}

	var reviews []models.Review
	db.DB.Preload("User").Where("set_id = ?", s.ID).Order("created_at ASC").Find(&reviews)

	sets := []models.Set{*s}
	services.FillAverageRatings(sets)

	Render(c, http.StatusOK, "set/detail.html", gin.H{
		"Title":         s.Title,
		"Set":           sets[0],
		"Collection":    s.Collection,
		"Description":   utils.RenderMarkdown(s.Description),
		"Cards":         cards,
		"Comments":      rendered,
		"Reviews":       reviews,
		"AverageRating": sets[0].AverageRating,
		"IsOwner":       user != nil && user.ID == s.Collection.UserID,
	})
}

func (h *SetHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	collectionID := utils.StringToUint(c.PostForm("collection_id"))

	var col models.Collection
	if err := db.DB.Scopes(policy.CollectionScope(user)).First(&col, collectionID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Collection not found")
		return
	}
	if d := policy.Authorize(user, policy.EntitySet, policy.ActionCreate, policy.Target{Collection: &col}); d.Denied() {
		RenderError(c, http.StatusForbidden, "You may not add sets to this collection")
		return
	}

	title := c.PostForm("title")
	if title == "" || len(title) > 100 {
		RenderError(c, http.StatusBadRequest, "Title is required and at most 100 characters")
		return
	}

	s := models.Set{
		Title:        title,
		Description:  c.PostForm("description"),
		CollectionID: col.ID,
	}
	if err := services.CreateSet(&s); err != nil {
		if err == services.ErrSetQuotaExceeded {
			RenderError(c, http.StatusForbidden, "The daily limit for new sets has been reached, try again tomorrow")
			return
		}
		RenderError(c, http.StatusInternalServerError, "Could not create set")
		return
	}

	c.Redirect(http.StatusFound, "/sets/"+utils.UintToString(s.ID))
}

func (h *SetHandler) Delete(c *gin.Context) {
	s := h.loadVisible(c)
	if s == nil {
		return
	}
	user := middleware.CurrentUser(c)
	if d := policy.Authorize(user, policy.EntitySet, policy.ActionDelete, policy.Target{Set: s}); d.Denied() {
		RenderError(c, http.StatusForbidden, "You may not delete this set")
		return
	}

	if err := services.DeleteSet(s.ID); err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not delete set")
		return
	}
	c.Redirect(http.StatusFound, "/collections/"+utils.UintToString(s.CollectionID))
}

// AddCard handles the inline card form on the set page.
func (h *SetHandler) AddCard(c *gin.Context) {
	s := h.loadVisible(c)
	if s == nil {
		return
	}
	user := middleware.CurrentUser(c)
	if d := policy.Authorize(user, policy.EntityCard, policy.ActionCreate, policy.Target{Set: s}); d.Denied() {
		RenderError(c, http.StatusForbidden, "You may not add cards to this set")
		return
	}

	question := c.PostForm("question")
	answer := c.PostForm("answer")
	difficulty := c.PostForm("difficulty")
	if question == "" || answer == "" || !models.ValidDifficulty(difficulty) {
		RenderError(c, http.StatusBadRequest, "Question, answer and a valid difficulty are required")
		return
	}

	card := models.Card{
		Question:   question,
		Answer:     answer,
		Difficulty: difficulty,
		SetID:      s.ID,
	}
	if err := db.DB.Create(&card).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not create card")
		return
	}
	c.Redirect(http.StatusFound, "/sets/"+utils.UintToString(s.ID))
}

// AddComment posts a comment on a set.
func (h *SetHandler) AddComment(c *gin.Context) {
	s := h.loadVisible(c)
	if s == nil {
		return
	}
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	if d := policy.Authorize(user, policy.EntityComment, policy.ActionCreate, policy.Target{Set: s}); d.Denied() {
		RenderError(c, http.StatusForbidden, "You may not comment on this set")
		return
	}

	content := c.PostForm("comment")
	if content == "" {
		RenderError(c, http.StatusBadRequest, "Comment must not be empty")
		return
	}

	comment := models.Comment{
		Comment: content,
		SetID:   s.ID,
		UserID:  user.ID,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not post comment")
		return
	}
	c.Redirect(http.StatusFound, "/sets/"+utils.UintToString(s.ID))
}

// AddReview posts or refreshes the caller's review of a set.
func (h *SetHandler) AddReview(c *gin.Context) {
	s := h.loadVisible(c)
	if s == nil {
		return
	}
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	if d := policy.Authorize(user, policy.EntityReview, policy.ActionCreate, policy.Target{Set: s}); d.Denied() {
		RenderError(c, http.StatusForbidden, "You may not review this set")
		return
	}

	rating := utils.StringToInt(c.PostForm("rating"))
	if rating < 1 || rating > 5 {
		RenderError(c, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	if _, _, err := services.UpsertReview(user.ID, s.ID, rating, c.PostForm("comment")); err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not save review")
		return
	}
	c.Redirect(http.StatusFound, "/sets/"+utils.UintToString(s.ID))
}
