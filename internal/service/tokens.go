// Package service contains the business logic that sits between the HTTP
// handlers and the database
package service

import (
	"errors"
	"time"

	"userhub/admin-api/internal/model"
	"userhub/admin-api/pkg/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const rawTokenSize = 32

var (
	ErrTokenNotFound    = errors.New("token invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenUsed        = errors.New("token was used already")
	ErrAccountInactive  = errors.New("account is deactivated")
	ErrAlreadyVerified  = errors.New("email is already verified")
	ErrEmailNotVerified = errors.New("email is not verified")
)

// Tokens owns the lifecycle of single-use account tokens: issue, consume,
// cleanup. A token is valid iff it's unused and not past its expiry; every
// terminal state (used, expired, superseded) is permanent
type Tokens struct {
	db *gorm.DB
}

func NewTokens(db *gorm.DB) *Tokens {
	return &Tokens{db: db}
}

// Issue creates a fresh token for the user and purpose. Any unused token the
// user still has for the same purpose is deleted in the same transaction, so
// at most one consumable token per user and purpose exists at any time
func (s *Tokens) Issue(userID string, purpose model.TokenPurpose, ttl time.Duration) (*model.AccountToken, error) {
	raw, err := util.GenerateToken(rawTokenSize)
	if err != nil {
		return nil, err
	}

	token := &model.AccountToken{
		UserID:    userID,
		Token:     raw,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(ttl),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("user_id = ? AND purpose = ? AND used_at IS NULL", userID, purpose).
			Delete(model.AccountToken{}).
			Error; err != nil {
			return err
		}

		return tx.Create(token).Error
	})
	if err != nil {
		return nil, err
	}

	return token, nil
}

// ConsumeVerification redeems an email verification token and flips the
// owner's email_verified flag in the same transaction
func (s *Tokens) ConsumeVerification(raw string) (*model.User, error) {
	token, err := s.lookup(raw, model.PurposeVerifyEmail)
	if err != nil {
		return nil, err
	}

	if token.User.EmailVerified {
		return nil, ErrAlreadyVerified
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.markUsed(tx, token); err != nil {
			return err
		}

		return tx.Model(model.User{}).
			Where("id = ?", token.UserID).
			Update("email_verified", true).
			Error
	})
	if err != nil {
		return nil, err
	}

	token.User.EmailVerified = true
	return &token.User, nil
}

// ConsumeReset redeems a password reset token and swaps in the new password
// hash. Reset is gated behind a verified email so a stolen unverified inbox
// can't take over the account
func (s *Tokens) ConsumeReset(raw, newHash string) (*model.User, error) {
	token, err := s.lookup(raw, model.PurposeResetPassword)
	if err != nil {
		return nil, err
	}

	if !token.User.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	now := time.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.markUsed(tx, token); err != nil {
			return err
		}

		return tx.Model(model.User{}).
			Where("id = ?", token.UserID).
			Updates(map[string]any{
				"password_hash":       newHash,
				"password_changed_at": now,
			}).
			Error
	})
	if err != nil {
		return nil, err
	}

	token.User.PasswordHash = newHash
	token.User.PasswordChangedAt = &now
	return &token.User, nil
}

// Cleanup deletes every token past its expiry, used or not. Errors are logged
// and reported as zero so callers (the cron sweep) never have to care
func (s *Tokens) Cleanup() int64 {
	r := s.db.
		Where("expires_at < ?", time.Now()).
		Delete(model.AccountToken{})
	if r.Error != nil {
		zap.L().Error("Failed to clean up expired tokens", zap.Error(r.Error))
		return 0
	}

	return r.RowsAffected
}

// lookup fetches a token row together with its owner and walks the shared part
// of the consume branch ladder. Expired rows are deleted on the way out
func (s *Tokens) lookup(raw string, purpose model.TokenPurpose) (*model.AccountToken, error) {
	var token model.AccountToken

	err := s.db.
		Preload("User").
		Where("token = ? AND purpose = ?", raw, purpose).
		First(&token).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	if token.Expired() {
		if err := s.db.Delete(&token).Error; err != nil {
			zap.L().Error("Failed to delete expired token", zap.Error(err))
		}
		return nil, ErrTokenExpired
	}

	if token.Used() {
		return nil, ErrTokenUsed
	}

	if !token.User.IsActive {
		return nil, ErrAccountInactive
	}

	return &token, nil
}

// markUsed stamps used_at only if it is still unset, so two concurrent
// consume attempts can't both win
func (s *Tokens) markUsed(tx *gorm.DB, token *model.AccountToken) error {
	r := tx.Model(model.AccountToken{}).
		Where("id = ? AND used_at IS NULL", token.ID).
		Update("used_at", time.Now())
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return ErrTokenUsed
	}

	return nil
}
