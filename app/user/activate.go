package user

import (
	"errors"
	"net/http"

	"userhub/admin-api/internal"
	"userhub/admin-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deactivate soft-deletes an account. Deactivation is the terminal state,
// accounts are never removed from the database
func Deactivate(c *gin.Context, d *internal.Deps) {
	setActive(c, d, false)
}

// Reactivate re-enables a previously deactivated account
func Reactivate(c *gin.Context, d *internal.Deps) {
	setActive(c, d, true)
}

func setActive(c *gin.Context, d *internal.Deps, active bool) {
	requestID := c.GetString("requestID")
	targetID := c.Param("id")

	// Locking yourself out is never what an admin meant to do
	if !active && targetID == c.GetString("userID") {
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "You can't deactivate your own account",
			"requestID": requestID,
		})
		return
	}

	var user model.User
	if err := d.DB.Where("id = ?", targetID).First(&user).Error; err != nil {
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

		zap.L().Error("Failed to fetch user for activation toggle", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if user.IsActive == active {
		msg := "This account is already deactivated"
		if active {
			msg = "This account is already active"
		}

		c.JSON(http.StatusConflict, gin.H{
			"error":     msg,
			"requestID": requestID,
		})
		return
	}

	if err := d.DB.Model(&user).Update("is_active", active).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to toggle account activation", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      user.Public(),
		"requestID": requestID,
	})
}
