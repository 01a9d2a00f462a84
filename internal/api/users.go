package api

import (
	"net/http"

	"flashdeck/internal/db"
	"flashdeck/internal/models"
	"flashdeck/internal/policy"
	"flashdeck/internal/services"

	"github.com/gin-gonic/gin"
)

type createUserRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Password string `json:"password" binding:"required"`
	IsStaff  bool   `json:"is_staff"`
}

type updateUserRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Password string `json:"password"` // empty keeps the current password
	IsStaff  bool   `json:"is_staff"`
}

func fetchUser(c *gin.Context, id uint) *models.User {
	var user models.User
	if err := db.DB.First(&user, id).Error; err != nil {
		notFound(c)
		return nil
	}
	return &user
}

// ListUsers and GetUser sit behind the superuser-only middleware.
func ListUsers(c *gin.Context) {
	var users []models.User
	db.DB.Order("id ASC").Find(&users)
	c.JSON(http.StatusOK, users)
}

func GetUser(c *gin.Context) {
	user := fetchUser(c, paramID(c))
	if user == nil {
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser is open self-registration; no authentication needed.
func CreateUser(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := services.CreateUser(req.Username, req.Password, req.IsStaff)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": "Invalid payload.",
			"errors": gin.H{"username": "A user with that username already exists."},
		})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func UpdateUser(c *gin.Context) {
	user := fetchUser(c, paramID(c))
	if user == nil {
		return
	}
	if d := policy.Authorize(actor(c), policy.EntityUser, policy.ActionUpdate, policy.Target{User: user}); d.Denied() {
		forbidden(c, d)
		return
	}

	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := services.UpdateUser(user, req.Username, req.Password, req.IsStaff); err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func DeleteUser(c *gin.Context) {
	user := fetchUser(c, paramID(c))
	if user == nil {
		return
	}
	if d := policy.Authorize(actor(c), policy.EntityUser, policy.ActionDelete, policy.Target{User: user}); d.Denied() {
		forbidden(c, d)
		return
	}

	if err := services.DeleteUser(user.ID); err != nil {
		serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
