package api

import (
	"net/http"

	"flashdeck/internal/db"
	"flashdeck/internal/models"
	"flashdeck/internal/policy"
	"flashdeck/internal/services"

	"github.com/gin-gonic/gin"
)

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
	SetID   uint   `json:"flashcard_set"`
}

// Review reads are not filtered by collection privacy; only missing ids 404.
func fetchReview(c *gin.Context, id uint) *models.Review {
	var r models.Review
	if err := db.DB.First(&r, id).Error; err != nil {
		notFound(c)
		return nil
	}
	return &r
}

func ListReviews(c *gin.Context) {
	var reviews []models.Review
	db.DB.Scopes(policy.ReviewScope(actor(c))).Order("id ASC").Find(&reviews)
	c.JSON(http.StatusOK, reviews)
}

func GetReview(c *gin.Context) {
	r := fetchReview(c, paramID(c))
	if r == nil {
		return
	}
	c.JSON(http.StatusOK, r)
}

// CreateReview creates the caller's review of a set. When the caller already
// reviewed it, the request routes to the update path for the existing row
// instead of failing.
func CreateReview(c *gin.Context) {
	var req reviewRequest
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
	if d := policy.Authorize(actor(c), policy.EntityReview, policy.ActionCreate, policy.Target{Set: s}); d.Denied() {
		forbidden(c, d)
		return
	}

	review, created, err := services.UpsertReview(actor(c).ID, s.ID, req.Rating, req.Comment)
	if err != nil {
		serverError(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, review)
		return
	}
	c.JSON(http.StatusOK, review)
}

func UpdateReview(c *gin.Context) {
	r := fetchReview(c, paramID(c))
	if r == nil {
		return
	}
	if d := policy.Authorize(actor(c), policy.EntityReview, policy.ActionUpdate, policy.Target{Review: r}); d.Denied() {
		forbidden(c, d)
		return
	}

	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}

	// The payload may name a different set; the original association wins.
	if err := services.UpdateReview(r, req.Rating, req.Comment); err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func DeleteReview(c *gin.Context) {
	r := fetchReview(c, paramID(c))
	if r == nil {
		return
	}
	if d := policy.Authorize(actor(c), policy.EntityReview, policy.ActionDelete, policy.Target{Review: r}); d.Denied() {
		forbidden(c, d)
		return
	}

	if err := db.DB.Delete(&models.Review{}, r.ID).Error; err != nil {
		serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
