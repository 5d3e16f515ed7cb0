package auth

import (
	"net/http"
	"time"

	"userhub/admin-api/internal"
	"userhub/admin-api/internal/model"
	"userhub/admin-api/pkg/middleware"
	"userhub/admin-api/validators"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type changePasswordBody struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword lets an authenticated user rotate their own password. Every
// session token issued before the change goes stale at the auth gate, so a
// fresh token is returned for the current session
func ChangePassword(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})
		return
	}

	var data changePasswordBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	ok, err := d.Argon.VerifyPassword(data.CurrentPassword, user.PasswordHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify current password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Current password is incorrect",
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

	now := time.Now()

	err = d.DB.Model(model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"password_hash":       hash,
			"password_changed_at": now,
		}).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user.PasswordHash = hash
	user.PasswordChangedAt = &now

	ttl := time.Duration(viper.GetInt("jwt.ttl_hours")) * time.Hour

	token, err := d.Issuer.Generate(user, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to re-issue session token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Password changed successfully",
		"token":     token,
		"requestID": requestID,
	})
}
