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

// resetRequestedMsg deliberately reads the same whether or not the address
// exists, so the endpoint can't be used to enumerate accounts
const resetRequestedMsg = "If an account with that email exists, a password reset link has been sent"

type requestResetBody struct {
	Email string `json:"email"`
}

// RequestReset starts the password reset flow: issue a reset token and mail
// the link. Unknown addresses get the same success response as known ones
func RequestReset(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data requestResetBody
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
			c.JSON(http.StatusOK, gin.H{
				"message":   resetRequestedMsg,
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user for reset request", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "account_inactive",
			"requestID": requestID,
		})
		return
	}

	// Reset links only go to verified inboxes
	if !user.EmailVerified {
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "email_not_verified",
			"requestID": requestID,
		})
		return
	}

	ttl := time.Duration(viper.GetInt("tokens.reset_ttl_minutes")) * time.Minute

	token, err := d.Tokens.Issue(user.ID, model.PurposeResetPassword, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue reset token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// A failed or cooled-down mail doesn't invalidate the token, the user can
	// just request again later. The cooldown gets the same constant response
	// as an unknown address; a distinct status here would confirm the
	// account exists
	if err := d.Mailer.SendPasswordReset(user.Email, token.Token, user.FirstName); err != nil {
		if !errors.Is(err, service.ErrMailCooldown) {
			zap.L().Error("Failed to send reset mail", zap.Error(err), zap.String("requestID", requestID))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   resetRequestedMsg,
		"requestID": requestID,
	})
}
