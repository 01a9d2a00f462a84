package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetVersion returns the static API version. No auth.
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": Version})
}
