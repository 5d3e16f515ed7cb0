package auth

import (
	"net/http"

	"userhub/admin-api/internal"
	"userhub/admin-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type resetBody struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// Reset finishes the password reset flow by redeeming the token and storing
// the new password hash in one transaction
func Reset(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data resetBody
	if err := c.ShouldBind(&data); err != nil || data.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No reset token provided",
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordValidator(data.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	hash, err := d.Argon.GenerateFromPassword(data.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash new password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user, err := d.Tokens.ConsumeReset(data.Token, hash)
	if err != nil {
		status, code := tokenErrorResponse(err)

		c.JSON(status, gin.H{
			"error":     code,
			"requestID": requestID,
		})

		if status == http.StatusInternalServerError {
			zap.L().Error("Failed to consume reset token", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Password reset successfully",
		"user":      user.Public(),
		"requestID": requestID,
	})
}
