package auth

import (
	"errors"
	"net/http"

	"userhub/admin-api/internal"
	"userhub/admin-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type verifyBody struct {
	Token string `json:"token"`
}

// Verify redeems an email verification token
func Verify(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data verifyBody
	if err := c.ShouldBind(&data); err != nil || data.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No verification token provided",
			"requestID": requestID,
		})
		return
	}

	user, err := d.Tokens.ConsumeVerification(data.Token)
	if err != nil {
		status, code := tokenErrorResponse(err)

		c.JSON(status, gin.H{
			"error":     code,
			"requestID": requestID,
		})

		if status == http.StatusInternalServerError {
			zap.L().Error("Failed to consume verification token", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Email verified successfully",
		"user":      user.Public(),
		"requestID": requestID,
	})
}

// tokenErrorResponse maps token lifecycle errors onto the HTTP taxonomy.
// Shared by the verify and reset endpoints
func tokenErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrTokenNotFound):
		return http.StatusBadRequest, "token_invalid"
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusBadRequest, "token_expired"
	case errors.Is(err, service.ErrTokenUsed):
		return http.StatusBadRequest, "token_used"
	case errors.Is(err, service.ErrAccountInactive):
		return http.StatusForbidden, "account_inactive"
	case errors.Is(err, service.ErrAlreadyVerified):
		return http.StatusConflict, "already_verified"
	case errors.Is(err, service.ErrEmailNotVerified):
		return http.StatusForbidden, "email_not_verified"
	default:
		return http.StatusInternalServerError, "internal_server_error"
	}
}
