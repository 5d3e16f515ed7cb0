package auth

import (
	"net/http"

	"userhub/admin-api/internal"

	"github.com/gin-gonic/gin"
)

// Logout exists so clients have one place to end a session. Session tokens
// are stateless, forgetting the token is the whole job; the endpoint still
// runs behind the auth gate so an already-dead token gets a 401 rather than
// a silent no-op
func Logout(c *gin.Context, _ *internal.Deps) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Logged out",
		"requestID": c.GetString("requestID"),
	})
}
