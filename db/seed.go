package db

import (
	"errors"
	"time"

	"userhub/admin-api/internal/model"
	"userhub/admin-api/pkg/security"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedAdmin creates the bootstrap admin account from admin.email and
// admin.password if no user with that email exists yet. The seeded admin is
// active and verified so the instance is usable right away
func SeedAdmin(db *gorm.DB, argon *security.ArgonHash) error {
	email := viper.GetString("admin.email")
	password := viper.GetString("admin.password")

	if email == "" || password == "" {
		return errors.New("admin.email and admin.password must be set to seed an admin")
	}

	var count int64
	err := db.Model(model.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		zap.L().Info("Admin account already exists, skipping seed", zap.String("email", email))
		return nil
	}

	hash, err := argon.GenerateFromPassword(password)
	if err != nil {
		return err
	}

	id, err := gonanoid.New(16)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := &model.User{
		ID:                id,
		FirstName:         "System",
		LastName:          "Admin",
		Email:             email,
		PasswordHash:      hash,
		Role:              model.RoleAdmin,
		IsActive:          true,
		EmailVerified:     true,
		PasswordChangedAt: &now,
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	zap.L().Info("Seeded admin account", zap.String("email", email), zap.String("userID", id))
	return nil
}
