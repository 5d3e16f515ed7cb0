package user

import (
	"errors"
	"net/http"

	"userhub/admin-api/internal"
	"userhub/admin-api/internal/model"
	"userhub/admin-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type updateBody struct {
	FirstName *string     `json:"firstName"`
	LastName  *string     `json:"lastName"`
	Email     *string     `json:"email"`
	Role      *model.Role `json:"role"`
}

// Update applies a partial profile update. A new email address has to be free
// of collisions with any other account
func Update(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data updateBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

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

		zap.L().Error("Failed to fetch user for update", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	updates := map[string]any{}

	if data.FirstName != nil {
		if err := validators.NameValidator(*data.FirstName); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}
		updates["first_name"] = *data.FirstName
	}

	if data.LastName != nil {
		if err := validators.NameValidator(*data.LastName); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}
		updates["last_name"] = *data.LastName
	}

	if data.Role != nil {
		if !data.Role.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "invalid role provided",
				"requestID": requestID,
			})
			return
		}
		updates["role"] = *data.Role
	}

	if data.Email != nil && *data.Email != user.Email {
		if err := validators.EmailValidator(*data.Email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		var taken bool
		r := d.DB.Model(model.User{}).
			Select("count(*) > 0").
			Where("email = ? AND id <> ?", *data.Email, user.ID).
			Find(&taken)
		if r.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check email collision", zap.Error(r.Error), zap.String("requestID", requestID))
			return
		}

		if taken {
			c.JSON(http.StatusConflict, gin.H{
				"error":     "This email is already registered to another account",
				"requestID": requestID,
			})
			return
		}

		updates["email"] = *data.Email
		// A changed address has to be verified again
		updates["email_verified"] = false
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Nothing to update",
			"requestID": requestID,
		})
		return
	}

	if err := d.DB.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      user.Public(),
		"requestID": requestID,
	})
}
