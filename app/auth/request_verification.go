package auth

import (
	"errors"
	"net/http"
	"time"

	"userhub/admin-api/internal"
	"userhub/admin-api/internal/model"
	"userhub/admin-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type requestVerificationBody struct {
	Email string `json:"email"`
}

// RequestVerification issues a fresh email verification token and mails the
// link. Any unused verification token the user still has is superseded
func RequestVerification(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data requestVerificationBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No email address provided",
			"requestID": requestID,
		})
		return
	}

	var user model.User
	if err := d.DB.Where("email = ?", data.Email).First(&user).Error; err != nil {
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

		zap.L().Error("Failed to look up user for verification request", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if user.EmailVerified {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "already_verified",
			"requestID": requestID,
		})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "account_inactive",
			"requestID": requestID,
		})
		return
	}

	ttl := time.Duration(viper.GetInt("tokens.verify_ttl_hours")) * time.Hour

	token, err := d.Tokens.Issue(user.ID, model.PurposeVerifyEmail, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue verification token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := d.Mailer.SendVerification(user.Email, token.Token, user.FirstName); err != nil {
		if errors.Is(err, service.ErrMailCooldown) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":     "A verification mail was sent recently, try again later",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to send verification mail",
			"requestID": requestID,
		})

		zap.L().Error("Failed to send verification mail", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Verification mail sent",
		"requestID": requestID,
	})
}
