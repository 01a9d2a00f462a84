package api

import (
	"net/http"

	"flashdeck/internal/db"
	"flashdeck/internal/models"
	"flashdeck/internal/policy"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

type commentRequest struct {
	Comment string `json:"comment" binding:"required"`
	SetID   uint   `json:"flashcard_set"`
}

func fetchVisibleComment(c *gin.Context, id uint) *models.Comment {
	var com models.Comment
	err := db.DB.Scopes(policy.CommentScope(actor(c))).
		Preload("Set").Preload("Set.Collection").
		First(&com, "comments.id = ?", id).Error
	if err != nil {
		notFound(c)
		return nil
	}
	return &com
}

func ListComments(c *gin.Context) {
	var comments []models.Comment
	db.DB.Scopes(policy.CommentScope(actor(c))).
		Order("comments.id ASC").Find(&comments)
	c.JSON(http.StatusOK, comments)
}

func GetComment(c *gin.Context) {
	com := fetchVisibleComment(c, paramID(c))
	if com == nil {
		return
	}
	c.JSON(http.StatusOK, com)
}

func CreateComment(c *gin.Context) {
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.SetID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": "Invalid payload.",
			"errors": gin.H{"flashcard_set": "This field is required."},
		})
		return
	}

	s := fetchVisibleSet(c, req.SetID)
	if s == nil {
		return
	}
	if d := policy.Authorize(actor(c), policy.EntityComment, policy.ActionCreate, policy.Target{Set: s}); d.Denied() {
		forbidden(c, d)
		return
	}

	com := models.Comment{
		Comment: req.Comment,
		SetID:   s.ID,
		UserID:  actor(c).ID, // author is always the caller
	}
	if err := db.DB.Create(&com).Error; err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, com)
}

func UpdateComment(c *gin.Context) {
	com := fetchVisibleComment(c, paramID(c))
	if com == nil {
		return
	}
	if d := policy.Authorize(actor(c), policy.EntityComment, policy.ActionUpdate, policy.Target{Comment: com}); d.Denied() {
		forbidden(c, d)
		return
	}

	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}

	// The parent set is fixed at creation; a differing payload value is
	// ignored rather than honored.
	com.Comment = req.Comment
	if err := db.DB.Omit(clause.Associations).Save(com).Error; err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, com)
}

func DeleteComment(c *gin.Context) {
	com := fetchVisibleComment(c, paramID(c))
	if com == nil {
		return
	}
	if d := policy.Authorize(actor(c), policy.EntityComment, policy.ActionDelete, policy.Target{Comment: com}); d.Denied() {
		forbidden(c, d)
		return
	}

	if err := db.DB.Delete(&models.Comment{}, com.ID).Error; err != nil {
		serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
