// Package db contains the database connection and schema setup
package db

import (
	"errors"
	"fmt"

	"userhub/admin-api/internal/model"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New opens the configured database and migrates the schema. SQLite is the
// default for single-box deployments, postgres for anything shared
func New() (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch viper.GetString("database.driver") {
	case "postgres":
		dialector = postgres.Open(viper.GetString("database.dsn"))
	case "sqlite":
		dialector = sqlite.Open(viper.GetString("database.dsn"))
	default:
		return nil, errors.New("unsupported database driver")
	}

	db, err := gorm.Open(dialector)
	if err != nil {
		return nil, fmt.Errorf("failed to open database, %w", err)
	}

	err = db.AutoMigrate(model.User{}, model.AccountToken{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
