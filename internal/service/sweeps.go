package service

import (
	"time"

	"userhub/admin-api/internal/model"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StartSweeps schedules the periodic maintenance jobs and returns the running
// scheduler so the caller can stop it on shutdown:
//
//   - expired account tokens are deleted on tokens.cleanup_schedule
//   - accounts that never verified their email within the grace window are
//     deactivated
func StartSweeps(db *gorm.DB, tokens *Tokens) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(viper.GetString("tokens.cleanup_schedule"), func() {
		if n := tokens.Cleanup(); n > 0 {
			zap.L().Debug("Cleaned up expired tokens", zap.Int64("deleted", n))
		}
	})
	if err != nil {
		return nil, err
	}

	_, err = c.AddFunc("@daily", func() {
		deactivateStaleAccounts(db)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	zap.L().Debug("Maintenance sweeps attached",
		zap.String("token_cleanup", viper.GetString("tokens.cleanup_schedule")))

	return c, nil
}

// deactivateStaleAccounts flags accounts that stayed unverified for the whole
// grace window. An email change resets email_verified mid-life, so the check
// also requires updated_at to be past the cutoff; an old account whose address
// was just changed keeps its full window to re-verify. Accounts are never
// hard-deleted, deactivation is the terminal state
func deactivateStaleAccounts(db *gorm.DB) {
	grace := time.Duration(viper.GetInt("accounts.verify_grace_days")) * 24 * time.Hour
	cutoff := time.Now().Add(-grace)

	r := db.Model(model.User{}).
		Where("email_verified = ? AND is_active = ? AND created_at < ? AND updated_at < ?",
			false, true, cutoff, cutoff).
		Update("is_active", false)
	if r.Error != nil {
		zap.L().Error("Failed to deactivate stale accounts", zap.Error(r.Error))
		return
	}

	if r.RowsAffected > 0 {
		zap.L().Info("Deactivated stale unverified accounts", zap.Int64("count", r.RowsAffected))
	}
}
