package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Validate runs behind the auth gate; reaching it means the token and the
// live account both check out
func Validate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"userID":    c.GetString("userID"),
		"role":      c.GetString("role"),
		"requestID": c.GetString("requestID"),
	})
}
