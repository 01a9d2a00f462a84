package handlers

import (
	"net/http"

	"flashdeck/internal/db"
	"flashdeck/internal/middleware"
	"flashdeck/internal/models"
	"flashdeck/internal/policy"
	"flashdeck/internal/services"

	"github.com/gin-gonic/gin"
)

type HomeHandler struct{}

func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Index shows recently updated sets the visitor may see, best rated first.
func (h *HomeHandler) Index(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var sets []models.Set
	db.DB.Scopes(policy.SetScope(user)).
		Preload("Collection").
		Order("sets.updated_at DESC").
		Limit(30).
		Find(&sets)

	services.FillAverageRatings(sets)
	services.SortSetsByRating(sets)

	Render(c, http.StatusOK, "home/index.html", gin.H{
		"Title": "flashdeck",
		"Sets":  sets,
	})
}
