// Package user contains the admin-facing account management endpoints
package user

import (
	"errors"
	"net/http"
	"strings"

	"userhub/admin-api/internal"
	"userhub/admin-api/internal/model"
	"userhub/admin-api/pkg/security"
	"userhub/admin-api/validators"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tempPasswordLength = 12

type createBody struct {
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
}

// Create registers a new account on behalf of an admin. A temporary password
// is generated and mailed to the new user, it never appears in the response
func Create(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	var data createBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if data.Role == "" {
		data.Role = model.RoleUser
	}

	if err := validateCreate(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	var found bool
	r := d.DB.Model(model.User{}).
		Select("count(*) > 0").
		Where("email = ?", data.Email).
		Find(&found)
	if r.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if email is registered", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if found {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "This email is already registered",
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

	userID, err := gonanoid.New(16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate user ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user := &model.User{
		ID:           userID,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Email:        data.Email,
		PasswordHash: hash,
		Role:         data.Role,
		IsActive:     true,
	}

	if err := d.DB.Create(user).Error; err != nil {
		// Two concurrent creates can both pass the exists check, the loser
		// hits the unique index on email
		if isDuplicateKey(err) {
			c.JSON(http.StatusConflict, gin.H{
				"error":     "This email is already registered",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// The account exists either way, a failed mail just means the admin has
	// to reset the password manually
	if err := d.Mailer.SendTemporaryPassword(user.Email, tempPassword, user.FirstName); err != nil {
		zap.L().Error("Failed to send temporary password mail", zap.Error(err), zap.String("requestID", requestID))
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":      user.Public(),
		"requestID": requestID,
	})
}

// isDuplicateKey recognizes a unique-constraint violation from either driver.
// Neither gorm driver translates these unless asked to, so the message check
// stays as a fallback
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func validateCreate(data *createBody) error {
	if err := validators.NameValidator(data.FirstName); err != nil {
		return err
	}

	if err := validators.NameValidator(data.LastName); err != nil {
		return err
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		return err
	}

	if !data.Role.Valid() {
		return errors.New("invalid role provided")
	}

	return nil
}
