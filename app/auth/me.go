package auth

import (
	"net/http"

	"userhub/admin-api/internal"
	"userhub/admin-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// Me returns the live record of the authenticated user
func Me(c *gin.Context, _ *internal.Deps) {
	requestID := c.GetString("requestID")

	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      user.Public(),
		"requestID": requestID,
	})
}
