package user

import (
	"errors"
	"net/http"
	"time"

	"userhub/admin-api/internal"
	"userhub/admin-api/internal/model"
	"userhub/admin-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResetPassword is the admin-initiated reset: no token flow, a temporary
// password is generated, stored and mailed in cleartext once. The temporary
// password is also returned so the admin can hand it over out of band
func ResetPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var user model.User
	if err := d.DB.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "user_not_found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch user for admin reset", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Can't reset the password of a deactivated account",
			"requestID": requestID,
		})
		return
	}

	tempPassword, err := security.GenerateSecurePassword(tempPasswordLength, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate temporary password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	hash, err := d.Argon.GenerateFromPassword(tempPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash temporary password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	now := time.Now()

	err = d.DB.Model(&user).
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

		zap.L().Error("Failed to store temporary password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := d.Mailer.SendTemporaryPassword(user.Email, tempPassword, user.FirstName); err != nil {
		zap.L().Error("Failed to send temporary password mail", zap.Error(err), zap.String("requestID", requestID))
	}

	c.JSON(http.StatusOK, gin.H{
		"temporaryPassword": tempPassword,
		"user":              user.Public(),
		"requestID":         requestID,
	})
}
