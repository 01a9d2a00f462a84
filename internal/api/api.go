// Package api exposes the JSON REST surface under /api. Every handler goes
// through the same two gates: the visibility filter decides what can be
// fetched at all (missing and invisible objects are both 404), and the
// policy table decides whether the actor may mutate what it fetched (403).
package api

import (
	"fmt"
	"net/http"
	"strings"

	"flashdeck/internal/middleware"
	"flashdeck/internal/models"
	"flashdeck/internal/policy"
	"flashdeck/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Version reported by GET /api/version.
const Version = "1.0.0"

func actor(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

func paramID(c *gin.Context) uint {
	return utils.StringToUint(c.Param("id"))
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

func forbidden(c *gin.Context, d policy.Decision) {
	c.JSON(http.StatusForbidden, gin.H{
		"detail": "You do not have permission to perform this action.",
		"reason": string(d.Reason),
	})
}

func serverError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}

// bindJSON decodes the payload and turns binding/validator failures into a
// 400 with a field -> message map. Returns false when the request was
// already answered.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": "Invalid payload.",
			"errors": formatValidationErrors(err),
		})
		return false
	}
	return true
}

func formatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["non_field_errors"] = err.Error()
		return errors
	}

	for _, e := range validationErrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			errors[field] = "This field is required."
		case "max":
			errors[field] = fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param())
		case "min", "gte":
			errors[field] = fmt.Sprintf("Ensure this value is greater than or equal to %s.", e.Param())
		case "lte":
			errors[field] = fmt.Sprintf("Ensure this value is less than or equal to %s.", e.Param())
		case "oneof":
			errors[field] = fmt.Sprintf("Value must be one of: %s.", e.Param())
		default:
			errors[field] = "This value is invalid."
		}
	}
	return errors
}
